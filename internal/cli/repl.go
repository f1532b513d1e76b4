package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bitsnaps/open-creator/internal/interpreter"
)

// NewReplCmd creates the repl command.
func NewReplCmd() *cobra.Command {
	var setupPath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive interpreter session",
		Long: `Start a read-eval-print loop against one persistent namespace.

Each line executes as a submission; expression results echo back.
Directives:
  .setup [file]   run the file unrestricted (or nothing), then latch
                  the call allow-list for the rest of the session
  .quit           exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, setupPath)
		},
	}

	cmd.Flags().StringVar(&setupPath, "setup", "", "seed file executed unrestricted before the loop starts")

	return cmd
}

func runRepl(cmd *cobra.Command, setupPath string) error {
	cliCtx := GetCLIContext(cmd)
	if cliCtx == nil {
		return fmt.Errorf("CLI context not initialized")
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

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	// Piped input gets no banner or prompts, so output stays clean
	// for scripts.
	interactive := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	if interactive {
		fmt.Fprintf(out, "creator %s interactive interpreter\n", Version)
		fmt.Fprintln(out, `Type ".quit" to exit, ".setup [file]" to latch restriction.`)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		if interactive {
			fmt.Fprint(out, ">> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue

		case line == ".quit" || line == ".exit":
			return nil

		case line == ".setup" || strings.HasPrefix(line, ".setup "):
			seed := ""
			if path := strings.TrimSpace(strings.TrimPrefix(line, ".setup")); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintln(errOut, err)
					continue
				}
				seed = string(data)
			}
			if err := interp.Setup(ctx, seed); err != nil {
				fmt.Fprintln(errOut, err)
			} else if interactive {
				fmt.Fprintln(out, "restriction latched")
			}
			continue

		case strings.HasPrefix(line, "."):
			fmt.Fprintf(errOut, "unknown directive: %s\n", line)
			continue
		}

		result, _ := interp.Execute(ctx, line)
		if result.Stdout != "" {
			fmt.Fprint(out, result.Stdout)
			// Echoed expression values carry no newline of their own.
			if interactive && !strings.HasSuffix(result.Stdout, "\n") {
				fmt.Fprintln(out)
			}
		}
		if result.Stderr != "" {
			fmt.Fprintln(errOut, result.Stderr)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if interactive {
		fmt.Fprintln(out)
	}
	return nil
}
