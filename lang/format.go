package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns the canonical formula text of e.
//
// Operators are surrounded by single spaces, arguments are separated by
// ", ", and parentheses appear only where the tree structure requires them.
// Literals use the shortest representation that parses back to the same
// value, so Parse(String(e)) is [Equal] to any tree produced by [Parse].
func String(e Expr) string {
	var b strings.Builder

	writeExpr(&b, e)

	return b.String()
}

// Format writes the canonical formula text of e followed by a newline.
func Format(w io.Writer, e Expr) error {
	_, err := io.WriteString(w, String(e)+"\n")

	return err
}

// FormatJSON writes the transport encoding of e as JSON.
// A positive indent pretty-prints with that many spaces per level.
func FormatJSON(_ context.Context, w io.Writer, e Expr, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToNative(e), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToNative(e))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the transport encoding of e as YAML.
// A positive indent uses block style; otherwise flow style.
func FormatYAML(ctx context.Context, w io.Writer, e Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, yamlNative(e), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// FormatTree writes an indented outline of e, one node per line:
//
//	binaryOp +
//	├── literal 2
//	└── call max
//	    ├── identifier a
//	    └── identifier b
func FormatTree(w io.Writer, e Expr) error {
	var b strings.Builder

	writeTree(&b, e, "", "")

	_, err := io.WriteString(w, b.String())

	return err
}

// FormatResult formats an evaluated value for display.
func FormatResult(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatLiteral(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Literal:
		b.WriteString(formatLiteral(n.Value))

	case *Identifier:
		b.WriteString(n.Name)

	case *Call:
		b.WriteString(n.Name)
		b.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			writeExpr(b, arg)
		}

		b.WriteByte(')')

	case *BinaryOp:
		writeOperand(b, n.Left, needsParens(n, n.Left, false))
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeOperand(b, n.Right, needsParens(n, n.Right, true))
	}
}

func writeOperand(b *strings.Builder, e Expr, parens bool) {
	if parens {
		b.WriteByte('(')
	}

	writeExpr(b, e)

	if parens {
		b.WriteByte(')')
	}
}

func writeTree(b *strings.Builder, e Expr, prefix, childPrefix string) {
	b.WriteString(prefix)

	var children []Expr

	switch n := e.(type) {
	case *Literal:
		b.WriteString("literal " + formatLiteral(n.Value))

	case *Identifier:
		b.WriteString("identifier " + n.Name)

	case *Call:
		b.WriteString("call " + n.Name)

		children = n.Args

	case *BinaryOp:
		b.WriteString("binaryOp " + n.Op.String())

		children = []Expr{n.Left, n.Right}

	default:
		b.WriteString("<nil>")
	}

	b.WriteByte('\n')

	for i, child := range children {
		if i == len(children)-1 {
			writeTree(b, child, childPrefix+"└── ", childPrefix+"    ")
		} else {
			writeTree(b, child, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}
