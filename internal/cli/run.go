package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitsnaps/open-creator/internal/interperr"
	"github.com/bitsnaps/open-creator/internal/interpreter"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var setupPath string

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a source file in the sandbox",
		Long: `Execute a source file and print its captured output.

Reads from stdin when the file argument is "-" or absent. Without
--setup the interpreter is unrestricted; with it, the seed file runs
first and the code executes under the call allow-list.`,
		Example: `  # Run a file
  creator run script.js

  # Pipe code in
  echo "1 + 1" | creator run

  # Seed the namespace, then run restricted
  creator run --setup seed.js script.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, setupPath)
		},
	}

	cmd.Flags().StringVar(&setupPath, "setup", "", "seed file executed unrestricted before the code runs")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, setupPath string) error {
	cliCtx := GetCLIContext(cmd)
	if cliCtx == nil {
		return fmt.Errorf("CLI context not initialized")
	}

	source, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(source) == "" {
		return interperr.ErrEmptySource
	}

	interp := interpreter.New(interpreterConfig(cliCtx.Config), cliCtx.Log().With().Str("component", "interpreter").Logger())
	defer interp.Close()

	ctx := cmd.Context()

	if setupPath != "" {
		seed, err := os.ReadFile(setupPath)
		if err != nil {
			return fmt.Errorf("read setup file: %w", err)
		}
		if err := interp.Setup(ctx, string(seed)); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
	}

	result, _ := interp.Execute(ctx, source)

	if result.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), result.Stderr)
	}
	if result.Status != interpreter.StatusSuccess {
		return errors.New("execution failed")
	}
	return nil
}

// readSource loads the program text from the file argument, or stdin
// when the argument is absent or "-".
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
