package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go-chi-calculator/internal/calculator"
)

const replPrompt = "calc> "

func newREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive keypad",
		Long: `Start an interactive keypad. Every line is a key sequence applied to the
same calculation; the display is printed after each line.

Type .help for commands, .quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          replPrompt,
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "calc keypad (type .help for commands, .quit to exit)")

			session := newREPLSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				if quit := session.handleLine(line); quit {
					return nil
				}
			}
		},
	}
}

// replSession applies REPL lines to one calculator.
type replSession struct {
	calc   *calculator.Calculator
	out    io.Writer
	errOut io.Writer
	errFmt *color.Color
}

func newREPLSession(out, errOut io.Writer) *replSession {
	return &replSession{
		calc:   calculator.NewCalculator(),
		out:    out,
		errOut: errOut,
		errFmt: color.New(color.FgRed, color.Bold),
	}
}

// handleLine processes one input line and reports whether the REPL should
// exit.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	// ".5" is a key sequence, ".help" is a command.
	if len(line) > 1 && line[0] == '.' && unicode.IsLetter(rune(line[1])) {
		switch strings.ToLower(line) {
		case ".quit", ".exit":
			return true
		case ".help":
			printREPLHelp(s.out)
		case ".clear":
			s.print(s.calc.Clear())
		case ".display":
			s.print(s.calc.Display())
		default:
			_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", line)
		}
		return false
	}

	display, err := pressKeys(s.calc, line, nil)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	s.print(display)
	return false
}

func (s *replSession) print(display string) {
	if s.calc.Failed() {
		_, _ = s.errFmt.Fprintln(s.out, display)
		return
	}
	_, _ = fmt.Fprintln(s.out, display)
}

func printREPLHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Keys:
  0-9        digits
  + - * / x  operators
  .          decimal point
  =          evaluate
  c          clear

Commands:
  .display   show the current display
  .clear     clear the calculation
  .help      show this help
  .quit      exit`)
}
