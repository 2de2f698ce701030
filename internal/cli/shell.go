package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const shellPrompt = "parkinglot> "

func newShellCmd(a *app) *cobra.Command {
	var noPrompt bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Manage spaces interactively",
		Long: `Shell reads commands from standard input against a registry that lives
until the session ends. Failed commands are reported and the session
continues. Type help for the command list.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, reg, err := a.newInterpreter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer reg.Close()

			prompt := shellPrompt
			if noPrompt {
				prompt = ""
			}
			return in.Run(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt, true)
		},
	}
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "do not print a prompt")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>...",
		Short: "Execute command scripts",
		Long: `Run executes each script in order against a single registry, so later
scripts see the spaces earlier ones created. Use - to read standard input.
The first failing command stops the run.

Example:
  parkinglot run setup.txt day.txt`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, reg, err := a.newInterpreter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer reg.Close()

			for _, name := range args {
				if err := runScript(cmd, in, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runScript(cmd *cobra.Command, in *Interpreter, name string) error {
	if name == "-" {
		if err := in.Run(cmd.InOrStdin(), cmd.ErrOrStderr(), "", false); err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		return nil
	}

	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	if err := in.Run(f, cmd.ErrOrStderr(), "", false); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
