package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"go-chi-calculator/internal/calculator"
)

func newKeysCommand() *cobra.Command {
	var steps bool

	cmd := &cobra.Command{
		Use:   "keys SEQUENCE",
		Short: "Feed a key sequence through the keypad",
		Long: `Apply a key sequence exactly as if it were typed on the keypad and print
the final display. Keys: 0-9 + - * / x . = and c (clear).

  calc keys "0005+.5="   # prints 5.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var trace io.Writer
			if steps {
				trace = cmd.OutOrStdout()
			}

			calc := calculator.NewCalculator()
			display, err := pressKeys(calc, args[0], trace)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), display)
			return nil
		},
	}

	cmd.Flags().BoolVar(&steps, "steps", false, "print the display after every key")

	return cmd
}

// pressKeys applies keys to calc. When trace is non-nil every key and the
// resulting display are written to it. Evaluation failures are part of the
// display; only unknown keys are returned as errors, before any key is
// applied.
func pressKeys(calc *calculator.Calculator, keys string, trace io.Writer) (string, error) {
	for i, k := range []rune(keys) {
		if !calculator.ValidKey(k) {
			return calc.Display(), fmt.Errorf("%w: %q at position %d", calculator.ErrUnknownKey, k, i)
		}
	}

	display := calc.Display()
	for _, k := range keys {
		display, _ = calc.Press(k)
		if trace != nil && k != ' ' {
			_, _ = fmt.Fprintf(trace, "%c  %s\n", k, strings.ReplaceAll(display, "\n", " "))
		}
	}
	return display, nil
}
