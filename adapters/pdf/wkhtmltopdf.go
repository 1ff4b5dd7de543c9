package proposalpdf

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultWKHTMLTOPDFArgs print with screen-independent media rules and no
// margins, matching the proposal page geometry.
var DefaultWKHTMLTOPDFArgs = []string{
	"--quiet",
	"--print-media-type",
	"--page-size", "Letter",
	"--margin-top", "0",
	"--margin-bottom", "0",
	"--margin-left", "0",
	"--margin-right", "0",
}

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := e.Args
	if args == nil {
		args = DefaultWKHTMLTOPDFArgs
	}
	args = append(append([]string{}, args...), "-", "-")
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(injectBaseURL(req.HTML, req.Options.BaseURL))

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, engineError(cmdCtx, message, err)
	}
	return stdout.Bytes(), nil
}
