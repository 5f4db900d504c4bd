package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhvi1709/smart-cli/internal/llm/configbuilder"
	"github.com/prudhvi1709/smart-cli/internal/runner"
)

// NewDoctorCmd returns a health-check command validating config and environment.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Providers: %d, models: %d\n", len(cfg.Providers), len(cfg.Models))

			if len(cfg.Providers) == 0 {
				fmt.Fprintf(out, "No providers configured; environment default: %s\n", configbuilder.DefaultModelSpec(""))
			}

			r := &runner.Runner{PythonBin: cfg.Runner.PythonBin}
			if python, err := r.Interpreter(); err != nil {
				fmt.Fprintf(out, "Python interpreter: NOT FOUND (code execution will fail)\n")
			} else {
				fmt.Fprintf(out, "Python interpreter: %s\n", python)
			}

			fmt.Fprintf(out, "Execution timeout: %s\n", runnerTimeout(cfg))
			return nil
		},
	}
}
