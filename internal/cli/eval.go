package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

func newEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate an expression",
		Long: `Evaluate an expression such as "3+4*2". Arguments are joined and spaces
are removed, so "calc eval 3 + 4 '*' 2" works too.

On failure the calculator's error text is printed and the command exits
non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(strings.Fields(strings.Join(args, " ")), "")

			result, err := calculator.Evaluate(expr)
			if err != nil {
				observability.Logger.Debug("evaluation failed", zap.String("expression", expr), zap.Error(err))
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), calculator.ErrorText)
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), calculator.FormatResult(result))
			return nil
		},
	}
}
