// Package cli wires configuration, providers, and the dispatch loop into the
// smartcli command surface.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/version"
)

// Options holds global CLI options.
type Options struct {
	ConfigPath string
}

// NewRootCmd constructs the base CLI command. The root command itself answers
// the query given as positional arguments; with no query it drops into the
// interactive loop.
func NewRootCmd() *cobra.Command {
	opts := &Options{}
	runOpts := &runOptions{}

	cmd := &cobra.Command{
		Use:     "smartcli [query...]",
		Short:   "Answer natural-language queries, generating and running Python when needed",
		Version: version.Full(),
		Example: `  smartcli how many days until new year
  smartcli -s analysis.py plot sales by region from sales.csv
  smartcli --no-execute generate code to parse apache logs
  smartcli -i`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, runOpts, strings.Join(args, " "), len(args) > 0)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: config.yaml, configs/)")

	fl := cmd.Flags()
	fl.BoolVarP(&runOpts.execute, "execute", "e", true, "Execute the generated code")
	fl.BoolVarP(&runOpts.noExecute, "no-execute", "n", false, "Do not execute the generated code")
	fl.BoolVar(&runOpts.showCode, "show-code", true, "Show generated code before execution")
	fl.BoolVar(&runOpts.noShowCode, "no-show-code", false, "Do not show generated code")
	fl.StringVarP(&runOpts.savePath, "save", "s", "", "Save final output (answer or code) to this path")
	fl.StringVarP(&runOpts.model, "model", "m", "", "Model to use (e.g. openai:gpt-4.1-mini, anthropic:claude-sonnet-4-0)")
	fl.StringArrayVar(&runOpts.mcpServers, "mcp-server", nil, "Tool server spec, repeatable (stdio:command,arg1,arg2 or http:url)")
	fl.BoolVarP(&runOpts.interactive, "interactive", "i", false, "Interactive mode (default when no query is given)")

	cmd.AddCommand(NewDoctorCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig wraps config loading with shared options.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runnerTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Runner.TimeoutSeconds) * time.Second
}
