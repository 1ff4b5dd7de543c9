package command

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// IDLoader lists the proposals to warm when none are named.
type IDLoader func(ctx context.Context) ([]string, error)

// WarmLimits bounds warm throughput.
type WarmLimits struct {
	MaxProposals int
	MinInterval  time.Duration
}

// WarmCommand wires CLI/Cron execution for PDF cache warming.
type WarmCommand struct {
	service    proposal.Service
	loader     IDLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     WarmLimits
	logger     proposal.Logger
	sleep      func(time.Duration)
}

// WarmOption customizes warm commands.
type WarmOption func(*WarmCommand)

// WithWarmCLIConfig overrides CLI configuration.
func WithWarmCLIConfig(cfg gcmd.CLIConfig) WarmOption {
	return func(cmd *WarmCommand) {
		cmd.cliConfig = cfg
	}
}

// WithWarmCronConfig overrides cron configuration.
func WithWarmCronConfig(cfg gcmd.HandlerConfig) WarmOption {
	return func(cmd *WarmCommand) {
		cmd.cronConfig = cfg
	}
}

// WithWarmLimits overrides warm limits.
func WithWarmLimits(limits WarmLimits) WarmOption {
	return func(cmd *WarmCommand) {
		cmd.limits = limits
	}
}

// WithWarmLogger sets the logger used for per-proposal failures.
func WithWarmLogger(logger proposal.Logger) WarmOption {
	return func(cmd *WarmCommand) {
		if logger != nil {
			cmd.logger = logger
		}
	}
}

// NewWarmCommand creates the PDF warm CLI/Cron command.
func NewWarmCommand(svc proposal.Service, loader IDLoader, opts ...WarmOption) *WarmCommand {
	cmd := &WarmCommand{
		service: svc,
		loader:  loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"proposals-warm"},
			Description: "Pre-render proposal PDFs",
			Group:       "proposals",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 * * * *"},
		logger:     proposal.NopLogger{},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler warms every listed proposal.
func (c *WarmCommand) CronHandler() func() error {
	return func() error {
		_, err := c.warm(context.Background(), nil)
		return err
	}
}

// CronOptions returns cron configuration.
func (c *WarmCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *WarmCommand) CLIHandler() any {
	return &warmCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *WarmCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run warms ids, or every listed proposal when ids is empty. It returns the
// number of proposals rendered. A missing proposal is logged and skipped.
func (c *WarmCommand) Run(ctx context.Context, ids []string) (int, error) {
	return c.warm(ctx, ids)
}

func (c *WarmCommand) warm(ctx context.Context, ids []string) (int, error) {
	if c == nil {
		return 0, errors.New("warm command is nil", errors.CategoryInternal).
			WithTextCode("WARM_CMD_NIL")
	}
	if c.service == nil {
		return 0, errors.New("proposal service is required", errors.CategoryValidation).
			WithTextCode("SERVICE_REQUIRED")
	}
	if len(ids) == 0 {
		if c.loader == nil {
			return 0, errors.New("proposal loader not configured", errors.CategoryValidation).
				WithTextCode("LOADER_REQUIRED")
		}
		loaded, err := c.loader(ctx)
		if err != nil {
			return 0, err
		}
		ids = loaded
	}

	count := 0
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if c.limits.MaxProposals > 0 && count >= c.limits.MaxProposals {
			break
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if err := c.service.Render(ctx, id, proposal.FormatPDF, io.Discard); err != nil {
			if proposal.IsNotFound(err) {
				c.logger.Infof("proposal: warm skipped missing %s", id)
				continue
			}
			return count, err
		}
		count++
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return count, nil
}

type warmCLI struct {
	cmd  *WarmCommand
	From string `kong:"name='from',help='Path to a JSON array of proposal IDs'"`
}

func (c *warmCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("warm command is required", errors.CategoryInternal).
			WithTextCode("WARM_CMD_NIL")
	}
	var ids []string
	if strings.TrimSpace(c.From) != "" {
		loaded, err := loadIDsFromFile(c.From)
		if err != nil {
			return err
		}
		ids = loaded
	}
	_, err := c.cmd.warm(context.Background(), ids)
	return err
}

func loadIDsFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read id file failed").
			WithTextCode("ID_FILE_READ")
	}
	var ids []string
	if err := json.Unmarshal(content, &ids); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "id file invalid JSON").
			WithTextCode("ID_FILE_INVALID")
	}
	return ids, nil
}
