package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// Parse parses formula text into an expression tree.
//
// The whole input must form a single expression; leftover text is reported
// as a [*SyntaxError] with Remainder set. Nesting deeper than the configured
// maximum fails with [*MaxDepthError].
func Parse(ctx context.Context, text string, opts ...Option) (Expr, error) {
	cfg := makeConfig(opts...)

	return cfg.parse(ctx, text)
}

// ParseReader parses formula text read from r.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (Expr, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, string(data), opts...)
}

// ReadAll reads r to EOF through an asynchronous read-ahead buffer.
func ReadAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return data, nil
}

func (c config) parse(ctx context.Context, text string) (Expr, error) {
	p := parser{
		input:    text,
		line:     1,
		col:      1,
		maxDepth: c.maxDepth,
	}

	e, err := p.parseFormula()
	if err != nil {
		c.logger.TraceContext(ctx, "parse failed",
			slog.String("source", text),
			slog.Any("error", err),
		)

		return nil, err
	}

	c.logger.TraceContext(ctx, "parse", formulaAttr(e))

	return e, nil
}

// parser holds the parser state.
type parser struct {
	input    string
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int
}

// expectOperand lists what may start an operand, for diagnostics.
var expectOperand = []string{"number", "identifier", `"("`}

// parseFormula parses the entire input as one expression.
func (p *parser) parseFormula() (Expr, error) {
	p.skipWhitespace()

	if p.eof() {
		return nil, p.errorf(p.position(), "empty formula", expectOperand...)
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.eof() {
		return nil, &SyntaxError{
			Pos:       p.position(),
			Msg:       "unexpected trailing input",
			Remainder: p.input[p.pos:],
			Source:    p.input,
		}
	}

	return e, nil
}

// parseExpr parses: term (("+" | "-") term)*.
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()

		op := Op(p.peek())
		if op != OpAdd && op != OpSub {
			return left, nil
		}

		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = Bin(op, left, right)
	}
}

// parseTerm parses: factor (("*" | "/") factor)*.
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()

		op := Op(p.peek())
		if op != OpMul && op != OpDiv {
			return left, nil
		}

		p.advance()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		left = Bin(op, left, right)
	}
}

// parseFactor parses: number | call | identifier | "(" expr ")".
func (p *parser) parseFactor() (Expr, error) {
	p.skipWhitespace()

	pos := p.position()
	r := p.peek()

	switch {
	case p.eof():
		return nil, p.errorf(pos, "unexpected end of input", expectOperand...)

	case isNumberStart(r, p.peekAt(1)):
		return p.parseNumber()

	case isIdentifierStart(r):
		name := p.parseIdentifier()

		p.skipWhitespace()

		if p.peek() == '(' {
			return p.parseCall(name)
		}

		return Ident(name), nil

	case r == '(':
		if err := p.enter(); err != nil {
			return nil, err
		}

		p.advance()

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()

		if !p.expect(')') {
			return nil, p.unexpected(`")"`, `"+"`, `"-"`, `"*"`, `"/"`)
		}

		p.leave()

		return e, nil
	}

	return nil, p.unexpected(expectOperand...)
}

// parseCall parses the argument list following a function name:
// "(" (expr ("," expr)*)? ")".
func (p *parser) parseCall(name string) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}

	p.advance() // '('
	p.skipWhitespace()

	args := []Expr{}

	if p.expect(')') {
		p.leave()

		return Fn(name, args...), nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipWhitespace()

		switch {
		case p.expect(','):
			continue

		case p.expect(')'):
			p.leave()

			return Fn(name, args...), nil
		}

		return nil, p.unexpected(`","`, `")"`)
	}
}

// parseNumber parses a decimal floating-point literal with an optional
// leading sign, fractional part, and exponent.
func (p *parser) parseNumber() (Expr, error) {
	pos := p.position()
	start := p.pos

	if r := p.peek(); r == '+' || r == '-' {
		p.advance()
	}

	digits := p.skipDigits()

	if p.peek() == '.' {
		p.advance()
		digits += p.skipDigits()
	}

	if digits == 0 {
		return nil, p.errorf(pos, "malformed number", "digit")
	}

	// The exponent is only part of the literal when digits follow it, so
	// that "2e" leaves "e" unconsumed.
	if r := p.peek(); r == 'e' || r == 'E' {
		n := 1
		if s := p.peekAt(n); s == '+' || s == '-' {
			n++
		}

		if isDigit(p.peekAt(n)) {
			for range n {
				p.advance()
			}

			p.skipDigits()
		}
	}

	text := p.input[start:p.pos]

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		msg := "malformed number " + strconv.Quote(text)
		if errors.Is(err, strconv.ErrRange) {
			msg = "number out of range " + strconv.Quote(text)
		}

		return nil, p.errorf(pos, msg)
	}

	return Num(v), nil
}

// parseIdentifier consumes an identifier; the caller has checked that one
// starts at the current position.
func (p *parser) parseIdentifier() string {
	start := p.pos

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return p.input[start:p.pos]
}

func (p *parser) enter() error {
	p.depth++

	if p.depth > p.maxDepth {
		pos := p.position()

		return &MaxDepthError{Depth: p.depth, Max: p.maxDepth, Pos: &pos}
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) errorf(pos Position, msg string, expected ...string) error {
	return &SyntaxError{
		Pos:      pos,
		Msg:      msg,
		Expected: expected,
		Source:   p.input,
	}
}

// unexpected reports the rune at the current position.
func (p *parser) unexpected(expected ...string) error {
	if p.eof() {
		return p.errorf(p.position(), "unexpected end of input", expected...)
	}

	return p.errorf(p.position(),
		"unexpected "+strconv.QuoteRune(p.peek()), expected...)
}

func (p *parser) skipDigits() int {
	n := 0

	for isDigit(p.peek()) {
		p.advance()
		n++
	}

	return n
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

// peekAt returns the byte n bytes ahead of the current position, or 0.
// Only used to look past ASCII characters.
func (p *parser) peekAt(n int) rune {
	if p.pos+n >= len(p.input) {
		return 0
	}

	return rune(p.input[p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skipWhitespace skips ASCII spaces, tabs, and line breaks. Other Unicode
// spaces are not separators.
func (p *parser) skipWhitespace() {
	for !p.eof() && isSpace(p.peek()) {
		p.advance()
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' }

// isNumberStart reports whether r (followed by next) begins a numeric
// literal. A sign only starts a literal when a digit or '.' follows it.
func isNumberStart(r, next rune) bool {
	switch {
	case isDigit(r), r == '.':
		return true
	case r == '+', r == '-':
		return isDigit(next) || next == '.'
	}

	return false
}

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}

// IsIdentifier reports whether s is a valid identifier or function name.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentifierStart(rune(s[0])) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentifierContinue(rune(s[i])) {
			return false
		}
	}

	return true
}
