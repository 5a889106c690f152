package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept after a multiplication or
// division.
const Scale = 8

// Reduction describes one operator applied during evaluation.
type Reduction struct {
	Op     byte
	Left   decimal.Decimal
	Right  decimal.Decimal
	Result decimal.Decimal
}

// Evaluate parses expr and computes its value. Multiplication and division
// bind tighter than addition and subtraction; operators of equal
// precedence associate to the left.
func Evaluate(expr string) (decimal.Decimal, error) {
	return EvaluateFunc(expr, nil)
}

// EvaluateFunc is Evaluate with a callback invoked after every reduction.
// observe may be nil.
func EvaluateFunc(expr string, observe func(Reduction)) (decimal.Decimal, error) {
	if expr == "" {
		return decimal.Decimal{}, newEvalError(expr, fmt.Errorf("%w: empty expression", ErrMalformedExpression))
	}
	if isOperator(expr[len(expr)-1]) {
		return decimal.Decimal{}, newEvalError(expr, fmt.Errorf("%w: trailing operator", ErrMalformedExpression))
	}

	var (
		operands  []decimal.Decimal
		operators []byte
	)

	reduce := func() error {
		if len(operators) == 0 || len(operands) < 2 {
			return fmt.Errorf("%w: operand stack underflow", ErrMalformedExpression)
		}

		n := len(operands)
		a, b := operands[n-1], operands[n-2]
		operands = operands[:n-2]

		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]

		result, err := apply(op, a, b)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(Reduction{Op: op, Left: b, Right: a, Result: result})
		}

		operands = append(operands, result)
		return nil
	}

	for i := 0; i < len(expr); {
		c := expr[i]

		switch {
		case isDigit(c):
			start := i
			for i < len(expr) && !isOperator(expr[i]) {
				i++
			}
			literal := expr[start:i]
			d, err := decimal.NewFromString(literal)
			if err != nil {
				return decimal.Decimal{}, newEvalError(expr, fmt.Errorf("%w: operand %q", ErrMalformedExpression, literal))
			}
			operands = append(operands, d)

		case isOperator(c):
			for len(operators) > 0 && precedence(operators[len(operators)-1]) >= precedence(c) {
				if err := reduce(); err != nil {
					return decimal.Decimal{}, newEvalError(expr, err)
				}
			}
			operators = append(operators, c)
			i++

		default:
			return decimal.Decimal{}, newEvalError(expr, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedExpression, c, i))
		}
	}

	for len(operators) > 0 {
		if err := reduce(); err != nil {
			return decimal.Decimal{}, newEvalError(expr, err)
		}
	}

	if len(operands) != 1 {
		return decimal.Decimal{}, newEvalError(expr, fmt.Errorf("%w: %d operands left", ErrMalformedExpression, len(operands)))
	}

	return operands[0], nil
}

// FormatResult renders d in plain notation without trailing fractional
// zeros.
func FormatResult(d decimal.Decimal) string {
	return d.String()
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	}
	return -1
}

// apply computes b op a, where a is the most recently pushed operand.
func apply(op byte, a, b decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case '+':
		return a.Add(b), nil
	case '-':
		return b.Sub(a), nil
	case '*':
		return a.Mul(b).Round(Scale), nil
	case '/':
		if a.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("%w: %s / %s", ErrDivisionByZero, b, a)
		}
		return b.DivRound(a, Scale), nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: unknown operator %q", ErrMalformedExpression, op)
}
