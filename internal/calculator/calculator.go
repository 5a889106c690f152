package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Calculator is a single calculation session: an InputBuilder plus the
// text currently on display. After a failed evaluation only Clear is
// accepted.
type Calculator struct {
	input   InputBuilder
	display string
	failed  bool
	last    *decimal.Decimal
}

// NewCalculator returns a session in its initial state.
func NewCalculator() *Calculator {
	return &Calculator{display: "0"}
}

func (c *Calculator) Digit(d byte) string {
	if c.failed {
		return c.display
	}
	c.display = c.input.Digit(d)
	return c.display
}

func (c *Calculator) Operator(op byte) string {
	if c.failed {
		return c.display
	}
	c.display = c.input.Operator(op)
	return c.display
}

func (c *Calculator) Dot() string {
	if c.failed {
		return c.display
	}
	c.display = c.input.Dot()
	return c.display
}

func (c *Calculator) Clear() string {
	c.failed = false
	c.last = nil
	c.display = c.input.Clear()
	return c.display
}

// Equal evaluates the expression and returns the text to display. The
// error is non-nil only when the display switched to ErrorText.
//
// An expression ending in an operator is left alone.
func (c *Calculator) Equal() (string, error) {
	return c.EqualFunc(nil)
}

// EqualFunc is Equal with a callback invoked after every reduction.
func (c *Calculator) EqualFunc(observe func(Reduction)) (string, error) {
	if c.failed || c.input.AfterOperator() {
		return c.display, nil
	}

	expr := c.input.Expression()
	if expr == "" {
		c.display = "0"
		return c.display, nil
	}

	result, err := EvaluateFunc(expr, observe)
	if err != nil {
		c.failed = true
		c.display = ErrorText
		return c.display, err
	}

	c.last = &result
	c.display = FormatResult(result)
	return c.display, nil
}

// Press applies one keypad character. Spaces are ignored.
func (c *Calculator) Press(key rune) (string, error) {
	k, ok := normalizeKey(key)
	if !ok {
		return c.display, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	switch {
	case k == ' ':
		return c.display, nil
	case isDigit(k):
		return c.Digit(k), nil
	case isOperator(k):
		return c.Operator(k), nil
	case k == '.':
		return c.Dot(), nil
	case k == 'C':
		return c.Clear(), nil
	default:
		return c.Equal()
	}
}

// ValidKey reports whether Press accepts key.
func ValidKey(key rune) bool {
	_, ok := normalizeKey(key)
	return ok
}

// Display returns the text currently shown.
func (c *Calculator) Display() string {
	return c.display
}

// Expression returns the expression typed so far.
func (c *Calculator) Expression() string {
	return c.input.Expression()
}

// Failed reports whether the session is waiting for Clear.
func (c *Calculator) Failed() bool {
	return c.failed
}

// Result returns the value of the last successful evaluation since the
// last Clear.
func (c *Calculator) Result() (decimal.Decimal, bool) {
	if c.last == nil {
		return decimal.Decimal{}, false
	}
	return *c.last, true
}

func normalizeKey(key rune) (byte, bool) {
	switch key {
	case 'x', 'X', '×':
		return '*', true
	case '÷':
		return '/', true
	case 'c', 'C':
		return 'C', true
	case '=', '.', ' ':
		return byte(key), true
	}
	if key < 0x80 && (isDigit(byte(key)) || isOperator(byte(key))) {
		return byte(key), true
	}
	return 0, false
}
