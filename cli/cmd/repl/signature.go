package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/formula/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose argument list contains the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based
	inCall   bool
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// counts the top-level commas between its '(' and the cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := -1
	depth := 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	end := open
	for end > 0 && (input[end-1] == ' ' || input[end-1] == '\t') {
		end--
	}

	start := end
	for start > 0 && isNameByte(input[start-1]) {
		start--
	}

	name := input[start:end]
	if !lang.IsIdentifier(name) {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// renderSignatureHint renders the signature of fn with the parameter at
// argIdx highlighted, followed by its description. A variadic parameter is
// highlighted for every index at or after its position.
func renderSignatureHint(fn lang.Builtin, argIdx int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(fn.Name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if argIdx == i || (variadic && argIdx > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if fn.Doc != "" {
		b.WriteString(hintStyle.Render("  " + fn.Doc))
	}

	return b.String()
}
