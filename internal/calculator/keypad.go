package calculator

// InputBuilder accumulates keypad events into a well-formed expression.
// Malformed key sequences are absorbed as no-ops, so the expression never
// starts with an operator, never holds two adjacent operators and never
// holds more than one dot per operand.
//
// The zero value is an empty builder ready for use. An InputBuilder is not
// safe for concurrent use.
type InputBuilder struct {
	expr []byte

	afterOperator bool
	// zeroPending is set while the operand being typed is exactly "0".
	zeroPending bool
	hasDot      bool
}

// Digit appends d to the current operand and returns the display text.
// Leading zeros are suppressed and a digit typed after a lone zero
// replaces it.
func (b *InputBuilder) Digit(d byte) string {
	if !isDigit(d) {
		return b.Display()
	}

	if b.afterOperator {
		b.zeroPending = false
		b.hasDot = false
		b.afterOperator = false
	}

	switch {
	case d == '0' && (len(b.expr) == 0 || b.zeroPending):
	case d == '0':
		b.zeroPending = b.operandEmpty()
		b.expr = append(b.expr, d)
	case b.zeroPending && !b.hasDot:
		b.expr[len(b.expr)-1] = d
		b.zeroPending = false
	default:
		b.expr = append(b.expr, d)
	}

	return b.Display()
}

// Operator appends op and returns the display text. Only the first
// operator after an operand is honoured; an operator on empty input
// operates on an implicit 0.
func (b *InputBuilder) Operator(op byte) string {
	if !isOperator(op) || b.afterOperator {
		return b.Display()
	}

	if len(b.expr) == 0 {
		b.expr = append(b.expr, '0')
	}
	b.expr = append(b.expr, op)

	b.afterOperator = true
	b.hasDot = false

	return b.Display()
}

// Dot starts the fractional part of the current operand, synthesizing a
// leading 0 when the operand has no digits yet.
func (b *InputBuilder) Dot() string {
	if b.hasDot {
		return b.Display()
	}

	b.hasDot = true
	b.afterOperator = false
	b.zeroPending = false

	if len(b.expr) == 0 || !isDigit(b.expr[len(b.expr)-1]) {
		b.expr = append(b.expr, '0')
	}
	b.expr = append(b.expr, '.')

	return b.Display()
}

// Clear resets the builder to its initial state.
func (b *InputBuilder) Clear() string {
	b.expr = b.expr[:0]
	b.afterOperator = false
	b.zeroPending = false
	b.hasDot = false

	return b.Display()
}

// Expression returns the accumulated expression.
func (b *InputBuilder) Expression() string {
	return string(b.expr)
}

// Display returns the text shown for the current expression.
func (b *InputBuilder) Display() string {
	if len(b.expr) == 0 {
		return "0"
	}
	return string(b.expr)
}

// AfterOperator reports whether the expression ends in an operator.
func (b *InputBuilder) AfterOperator() bool {
	return b.afterOperator
}

func (b *InputBuilder) operandEmpty() bool {
	return len(b.expr) == 0 || isOperator(b.expr[len(b.expr)-1])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/':
		return true
	}
	return false
}
