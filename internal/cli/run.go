package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prudhvi1709/smart-cli/internal/agent"
	"github.com/prudhvi1709/smart-cli/internal/dispatch"
	"github.com/prudhvi1709/smart-cli/internal/llm/configbuilder"
	"github.com/prudhvi1709/smart-cli/internal/logging"
	"github.com/prudhvi1709/smart-cli/internal/mcp"
	"github.com/prudhvi1709/smart-cli/internal/present"
	"github.com/prudhvi1709/smart-cli/internal/runner"
)

type runOptions struct {
	execute     bool
	noExecute   bool
	showCode    bool
	noShowCode  bool
	savePath    string
	model       string
	mcpServers  []string
	interactive bool
}

// runQuery wires everything together and drives the dispatch loop.
// hasQuery distinguishes "no args" (interactive) from an all-whitespace
// query (fatal).
func runQuery(cmd *cobra.Command, opts *Options, runOpts *runOptions, query string, hasQuery bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, modelID, err := configbuilder.BuildRegistry(cfg, runOpts.model)
	if err != nil {
		return err
	}

	presenter := present.New(cmd.OutOrStdout(), cfg.Output.Color, cfg.Output.SyntaxTheme)
	if modelID != "" {
		presenter.Info("Using model: " + modelID)
	}

	specs := parseServerSpecs(append(append([]string{}, cfg.MCP.Servers...), runOpts.mcpServers...), logger)
	manager := mcp.NewManager(ctx, specs, logger)
	defer manager.Close()

	client := agent.New(reg, cfg.Agent, modelID, manager.ToolSummary(), logger)

	codeRunner := &runner.Runner{
		PythonBin: cfg.Runner.PythonBin,
		Timeout:   runnerTimeout(cfg),
	}

	loop := &dispatch.Loop{
		Client:    client,
		Runner:    codeRunner,
		Presenter: presenter,
		Prompter:  dispatch.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		Logger:    logger,
		Opts: dispatch.Options{
			Execute:    runOpts.execute && !runOpts.noExecute,
			ShowCode:   runOpts.showCode && !runOpts.noShowCode,
			SavePath:   runOpts.savePath,
			MaxRetries: cfg.Agent.MaxRetries,
			SuggestSave: func(q string) string {
				return present.SuggestSavePath(q, time.Now())
			},
		},
	}

	if runOpts.interactive || !hasQuery {
		return loop.RunInteractive(ctx)
	}
	return loop.Run(ctx, query)
}

// parseServerSpecs drops malformed specs with a warning; they are never fatal.
func parseServerSpecs(raw []string, logger *zap.Logger) []mcp.ServerSpec {
	specs := make([]mcp.ServerSpec, 0, len(raw))
	for _, r := range raw {
		spec, err := mcp.ParseServerSpec(r)
		if err != nil {
			logger.Warn("ignoring mcp server", zap.String("spec", r), zap.Error(err))
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}
