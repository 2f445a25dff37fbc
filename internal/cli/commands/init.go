package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/workloadgen/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a workloadgen.yaml holding the defaults",
		Long: `Write a workloadgen.yaml configuration file holding every default setting,
ready to be edited.

An existing workloadgen.yaml or workloadgen.yml is kept unless --force is
given.`,
		Example: `  # Initialize in current directory
  workloadgen init

  # Initialize in another directory
  workloadgen init tests/bigquery

  # Overwrite an existing config
  workloadgen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Config is not loaded for init: the file being replaced may be broken.
			mode, _ := cmd.Flags().GetString("output")
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(mode))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	path, err := sharedcfg.WriteDefault(dir, force)
	if errors.Is(err, sharedcfg.ErrConfigExists) {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]string{"config": path})
	}
	r.StatusLine(path, "written", "")
	r.Println()
	r.Success("Project initialized. Run 'workloadgen generate' to create tests.")
	return nil
}
