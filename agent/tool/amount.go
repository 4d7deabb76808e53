package tool

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Accepts digits, whitespace, decimal points, operators, and parentheses.
var amountExpressionPattern = regexp.MustCompile(`^[\d\s\+\-\*/\(\)\.]+$`)

// ParseAmount reads a transfer amount. Currency symbols and thousands
// separators are ignored, and simple arithmetic such as "2 * 50" is evaluated.
func ParseAmount(raw string) (float64, error) {
	expression := strings.TrimSpace(raw)
	expression = strings.TrimPrefix(expression, "$")
	expression = strings.ReplaceAll(expression, ",", "")
	expression = strings.TrimSpace(expression)

	if err := validateAmountExpression(expression); err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	value, err := evaluateAmountExpression(expression)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid amount %q: not a finite number", raw)
	}
	value = math.Round(value*100) / 100
	if value <= 0 {
		return 0, fmt.Errorf("invalid amount %q: must be at least 0.01", raw)
	}
	return value, nil
}

// FormatAmount renders an amount without trailing zeros, e.g. 10 or 10.5.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validateAmountExpression(expression string) error {
	if expression == "" {
		return fmt.Errorf("amount is empty")
	}
	if !amountExpressionPattern.MatchString(expression) {
		return fmt.Errorf("amount contains invalid characters")
	}

	depth := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("amount has unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("amount has unbalanced parentheses")
	}
	return nil
}

func evaluateAmountExpression(expression string) (float64, error) {
	p := &amountParser{input: expression}
	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.hasNext() {
		return 0, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	return value, nil
}

type amountParser struct {
	input string
	pos   int
}

func (p *amountParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('+'):
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case p.match('-'):
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *amountParser) parseProduct() (float64, error) {
	left, err := p.parseSigned()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('*'):
			right, err := p.parseSigned()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.match('/'):
			right, err := p.parseSigned()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *amountParser) parseSigned() (float64, error) {
	p.skipSpaces()
	if p.match('+') {
		return p.parseSigned()
	}
	if p.match('-') {
		value, err := p.parseSigned()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parseOperand()
}

func (p *amountParser) parseOperand() (float64, error) {
	p.skipSpaces()
	if p.match('(') {
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return value, nil
	}
	return p.parseNumber()
}

func (p *amountParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	digits := false
	dot := false

	for p.hasNext() {
		ch := p.peek()
		if ch >= '0' && ch <= '9' {
			digits = true
			p.pos++
			continue
		}
		if ch == '.' && !dot {
			dot = true
			p.pos++
			continue
		}
		break
	}

	if !digits {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func (p *amountParser) skipSpaces() {
	for p.hasNext() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *amountParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *amountParser) peek() byte {
	return p.input[p.pos]
}

func (p *amountParser) match(expected byte) bool {
	if p.hasNext() && p.peek() == expected {
		p.pos++
		return true
	}
	return false
}
