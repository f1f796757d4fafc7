package lang

import (
	"math"
	"strconv"
)

// Expr is a node of a formula's abstract syntax tree.
//
// The set of node types is closed: every Expr is exactly one of [*Literal],
// [*Identifier], [*Call], or [*BinaryOp]. Trees are never mutated after
// construction and nodes are not shared between trees.
type Expr interface {
	// String returns the canonical formula text of the tree.
	String() string

	node()
}

// Literal is a numeric constant.
type Literal struct {
	Value float64
}

// Identifier is a reference to a named value in the evaluation context.
type Identifier struct {
	Name string
}

// Call applies a built-in function to its argument expressions.
type Call struct {
	Name string
	Args []Expr
}

// BinaryOp applies an arithmetic operator to two operands.
type BinaryOp struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (*Literal) node()    {}
func (*Identifier) node() {}
func (*Call) node()       {}
func (*BinaryOp) node()   {}

func (e *Literal) String() string    { return String(e) }
func (e *Identifier) String() string { return String(e) }
func (e *Call) String() string       { return String(e) }
func (e *BinaryOp) String() string   { return String(e) }

// Op is an arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

// ParseOp returns the operator spelled by s.
func ParseOp(s string) (Op, bool) {
	if len(s) != 1 {
		return 0, false
	}

	switch op := Op(s[0]); op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return op, true
	}

	return 0, false
}

func (op Op) String() string {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return string(rune(op))
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// Valid reports whether op is one of the four arithmetic operators.
func (op Op) Valid() bool {
	_, ok := ParseOp(string(rune(op)))

	return ok
}

// Binding strength of operators and operands, used for printing and for
// measuring nesting depth. Leaves and calls bind tightest.
const (
	precSum  = 1
	precProd = 2
	precAtom = 3
)

func (op Op) precedence() int {
	switch op {
	case OpMul, OpDiv:
		return precProd
	default:
		return precSum
	}
}

func precedence(e Expr) int {
	if b, ok := e.(*BinaryOp); ok && b != nil {
		return b.Op.precedence()
	}

	return precAtom
}

// needsParens reports whether the operand child of parent must be
// parenthesized to preserve the tree structure in formula text.
// All operators are left-associative, so a right operand of equal
// precedence needs them too.
func needsParens(parent *BinaryOp, child Expr, right bool) bool {
	p, c := parent.Op.precedence(), precedence(child)
	if right {
		return c <= p
	}

	return c < p
}

// Num returns a literal node.
func Num(v float64) *Literal { return &Literal{Value: v} }

// Ident returns an identifier node.
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Fn returns a function call node.
func Fn(name string, args ...Expr) *Call {
	if args == nil {
		args = []Expr{}
	}

	return &Call{Name: name, Args: args}
}

// Bin returns a binary operator node.
func Bin(op Op, left, right Expr) *BinaryOp {
	return &BinaryOp{Op: op, Left: left, Right: right}
}

// Equal reports whether a and b are structurally identical trees.
// Literals compare by their bit pattern, so -0 and 0 differ and NaN equals
// itself.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)

		return ok && math.Float64bits(x.Value) == math.Float64bits(y.Value)

	case *Identifier:
		y, ok := b.(*Identifier)

		return ok && x.Name == y.Name

	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}

		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}

		return true

	case *BinaryOp:
		y, ok := b.(*BinaryOp)

		return ok && x.Op == y.Op &&
			Equal(x.Left, y.Left) && Equal(x.Right, y.Right)

	case nil:
		return b == nil
	}

	return false
}

// Depth returns the syntactic nesting depth of e: the largest number of
// enclosing parenthesis pairs around any node when e is printed in canonical
// form, where each call's argument list counts as one pair.
// Redundant parentheses in the source text do not contribute.
//
//	Depth(1 + 2 * 3)      == 0
//	Depth((1 + 2) * 3)    == 1
//	Depth(max(1, sqrt(x))) == 2
func Depth(e Expr) int {
	var deepest int

	walkDepth(e, 0, func(_ Expr, depth int) bool {
		deepest = max(deepest, depth)

		return true
	})

	return deepest
}

// Walk calls fn for each node of e in pre-order (parent, then operands or
// arguments from left to right). Returning false from fn skips the node's
// children.
func Walk(e Expr, fn func(Expr) bool) {
	walkDepth(e, 0, func(n Expr, _ int) bool { return fn(n) })
}

// walkDepth visits e in pre-order, passing each node's nesting depth.
// Left operand chains are followed iteratively so that long sums and products
// do not consume stack; the right operands along a chain are visited on the
// way back out, innermost first.
func walkDepth(e Expr, depth int, fn func(Expr, int) bool) {
	for e != nil {
		if !fn(e, depth) {
			return
		}

		switch n := e.(type) {
		case *Call:
			if n == nil {
				return
			}

			for _, arg := range n.Args {
				walkDepth(arg, depth+1, fn)
			}

			return

		case *BinaryOp:
			if n == nil {
				return
			}

			defer walkDepth(n.Right, rightDepth(n, depth), fn)

			if needsParens(n, n.Left, false) {
				depth++
			}

			e = n.Left

		default:
			return
		}
	}
}

func rightDepth(n *BinaryOp, depth int) int {
	if needsParens(n, n.Right, true) {
		return depth + 1
	}

	return depth
}

// Identifiers returns the distinct identifier names referenced by e, in order
// of first appearance.
func Identifiers(e Expr) []string {
	var names []string

	seen := make(map[string]struct{})

	Walk(e, func(n Expr) bool {
		if id, ok := n.(*Identifier); ok && id != nil {
			if _, dup := seen[id.Name]; !dup {
				seen[id.Name] = struct{}{}
				names = append(names, id.Name)
			}
		}

		return true
	})

	return names
}

// Calls returns the distinct function names called by e, in order of first
// appearance.
func Calls(e Expr) []string {
	var names []string

	seen := make(map[string]struct{})

	Walk(e, func(n Expr) bool {
		if c, ok := n.(*Call); ok && c != nil {
			if _, dup := seen[c.Name]; !dup {
				seen[c.Name] = struct{}{}
				names = append(names, c.Name)
			}
		}

		return true
	})

	return names
}
