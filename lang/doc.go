// Package lang implements a small arithmetic formula language: a parser for
// formula text, an expression tree, an evaluator over named numeric values,
// and a batch orchestrator that computes several named formulas against one
// shared context.
//
// # Grammar
//
// Informal EBNF:
//
//	Formula    → Expr EOF
//	Expr       → Term (('+' | '-') Term)*
//	Term       → Factor (('*' | '/') Factor)*
//	Factor     → Number | Call | Identifier | '(' Expr ')'
//	Call       → Identifier '(' (Expr (',' Expr)*)? ')'
//	Identifier → [A-Za-z_][A-Za-z0-9_]*
//	Number     → [+-]? (Digits ('.' Digits?)? | '.' Digits) ([eE] [+-]? Digits)?
//
// Whitespace may appear between any two tokens. Operators of equal
// precedence associate to the left. There is no unary operator: a sign is
// part of a numeric literal, so "a - -2" is valid but "-x" is not.
//
// # Evaluation
//
// All values are IEEE-754 float64. Identifiers resolve through an [Env]; an
// unknown name fails with [*UndefinedIdentifierError]. Division by zero
// yields zero instead of an infinity or NaN. Calls dispatch on name and
// argument count against a fixed table of built-in functions (see
// [Builtins]); a miss fails with [*UnknownFunctionError].
//
//	v, err := lang.EvaluateString(ctx, "max(a, b) / 2", env)
//
// # Batch computation
//
// [Compute] evaluates several named formulas against the same base context.
// Formulas cannot see each other's results. The returned [Env] holds the
// computed values followed by the context values, where a context value
// overwrites a computed value of the same name. [ComputeRows] applies the
// same rules to each row of a table.
//
// # Transport
//
// Trees convert to and from a JSON/YAML payload with [EncodeJSON],
// [DecodeJSON], [EncodeYAML], and [DecodeYAML]. Decoding validates the
// payload and reports the location of the first problem as a JSONPath-like
// string in [*MalformedASTError].
//
// # Limits
//
// Parsing, evaluation, and decoding all reject trees nested deeper than
// [DefaultMaxDepth] (see [WithMaxDepth]), so input from untrusted sources
// cannot exhaust the stack.
package lang
