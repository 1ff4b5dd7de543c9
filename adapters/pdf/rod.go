package proposalpdf

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/goliatone/go-proposal/proposal"
)

// RodEngine renders PDF output through go-rod. The browser is launched on
// first use; rod downloads Chromium when BrowserPath is empty and none is
// installed.
type RodEngine struct {
	BrowserPath string
	NoSandbox   bool
	Timeout     time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// Render loads the HTML into a new page and prints it.
func (e *RodEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, proposal.NewError(proposal.KindInternal, "rod engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	geo, err := resolveGeometry(mergeOptions(DefaultOptions(), req.Options))
	if err != nil {
		return nil, err
	}
	browser, err := e.ensureBrowser()
	if err != nil {
		return nil, proposal.NewError(proposal.KindInternal, "rod engine init failed", err)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, engineError(ctx, "rod page create failed", err)
	}
	defer page.Close()

	if req.Options.ExternalAssetsPolicy == ExternalAssetsBlock {
		if err := (proto.NetworkEnable{}).Call(page); err != nil {
			return nil, engineError(ctx, "rod network enable failed", err)
		}
		if err := (proto.NetworkSetBlockedURLs{Urls: []string{"http://*", "https://*"}}).Call(page); err != nil {
			return nil, engineError(ctx, "rod asset blocking failed", err)
		}
	}
	if err := page.SetDocumentContent(string(injectBaseURL(req.HTML, req.Options.BaseURL))); err != nil {
		return nil, engineError(ctx, "rod set content failed", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, engineError(ctx, "rod page load failed", err)
	}

	reader, err := page.PDF(rodPrintOptions(geo))
	if err != nil {
		return nil, engineError(ctx, "rod pdf render failed", err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, engineError(ctx, "rod pdf stream failed", err)
	}
	return pdf, nil
}

// Close shuts down the browser if it was launched.
func (e *RodEngine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	e.browser = nil
	return err
}

func (e *RodEngine) ensureBrowser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().Headless(true)
	if e.BrowserPath != "" {
		l = l.Bin(e.BrowserPath)
	}
	if e.NoSandbox {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	e.browser = browser
	return browser, nil
}

func rodPrintOptions(geo printGeometry) *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		Landscape:         geo.landscape,
		PrintBackground:   geo.background,
		PreferCSSPageSize: geo.preferCSS,
		Scale:             floatPtr(geo.scale),
		MarginTop:         geo.marginTop,
		MarginBottom:      geo.marginBottom,
		MarginLeft:        geo.marginLeft,
		MarginRight:       geo.marginRight,
	}
	if geo.paperWidth > 0 {
		opts.PaperWidth = floatPtr(geo.paperWidth)
		opts.PaperHeight = floatPtr(geo.paperHeight)
	}
	return opts
}

func floatPtr(v float64) *float64 {
	return &v
}
