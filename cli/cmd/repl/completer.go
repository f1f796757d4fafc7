package repl

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

// isWordBoundary reports whether b delimits a completion word: whitespace,
// parentheses, operators, and argument separators.
func isWordBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '(', ')', '+', '-', '*', '/', ',':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 && !isWordBoundary(input[start-1]) {
		start--
	}

	end = cursor
	for end < len(input) && !isWordBoundary(input[end]) {
		end++
	}

	return input[start:end], start, end
}

// firstWord reports whether the word starting at start is the first word on
// the line, ignoring leading blanks.
func firstWord(input string, start int) bool {
	return strings.TrimSpace(input[:start]) == ""
}

// candidates returns the completion names for the word at start.
//
// In eval mode these are the builtin function names followed by the
// variable names. In control mode the first word completes to a command;
// the arguments of "unset" complete to variable names, and the formula of
// "set" completes like eval mode.
func candidates(input string, start int, mode inputMode, env *lang.Env) []string {
	if mode == modeCtrl {
		if firstWord(input, start) {
			return ctrlCommands
		}

		cmd, _, _ := strings.Cut(strings.TrimSpace(input), " ")

		switch cmd {
		case "unset":
			return env.Names()
		case "set":
			// The first argument is a new name.
			if len(strings.Fields(input[:start])) < 2 {
				return nil
			}
		default:
			return nil
		}
	}

	return slices.Concat(lang.BuiltinNames(), env.Names())
}

// computeMatches ranks the candidates for the word at cursor, best first.
// An empty word yields no matches so the hint line stays visible.
func computeMatches(input string, cursor int, mode inputMode, env *lang.Env) (
	matches fuzzy.Matches,
	names []string,
	wordStart, wordEnd int,
) {
	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	names = candidates(input, wordStart, mode, env)
	if len(names) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, names), names, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		reserve := ellipsisWidth
		if i == len(matches)-1 {
			reserve = 0
		}

		if i > 0 && used+entryWidth+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters in
// bold. Builtin functions get a "()" suffix that is not inserted on
// completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	highlight := base.Bold(true)

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

func isFunction(name string) bool {
	_, ok := lang.LookupBuiltin(name)

	return ok
}
