package condition

import (
	"strings"

	"github.com/acrellin/filebutler/pkg/errors"
)

// Grammar:
//
//	expr     = or_expr
//	or_expr  = and_expr ("OR" and_expr)*
//	and_expr = not_expr ("AND" not_expr)*
//	not_expr = "NOT" not_expr | primary
//	primary  = "(" or_expr ")" | glob | "/" regex "/"

type tokenKind int

const (
	tokAnd tokenKind = iota
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokGlob
	tokRegex
)

type token struct {
	kind tokenKind
	text string
}

func (t token) String() string {
	switch t.kind {
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokRegex:
		return "/" + t.text + "/"
	default:
		return t.text
	}
}

// Parse parses a text-syntax string into a condition tree. Empty input
// and the bare token `*` both parse to Always. Returns a
// CONDITION_SYNTAX error with a descriptive message on failure.
func Parse(input string) (*Condition, error) {
	input = strings.TrimSpace(input)
	if input == "" || input == "*" {
		return Always(), nil
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	cond, rest, err := parseOr(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, errors.Newf(errors.ErrConditionSyntax, "unexpected token: %s", rest[0])
	}
	return cond, nil
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	chars := []rune(input)
	i := 0

	for i < len(chars) {
		switch {
		case isSpace(chars[i]):
			i++

		case chars[i] == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i++

		case chars[i] == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i++

		case chars[i] == '/':
			// Regex literal: body runs to the next unescaped '/'.
			i++
			var body strings.Builder
			for i < len(chars) && chars[i] != '/' {
				if chars[i] == '\\' && i+1 < len(chars) {
					body.WriteRune(chars[i])
					i++
				}
				body.WriteRune(chars[i])
				i++
			}
			if i >= len(chars) {
				return nil, errors.New(errors.ErrConditionSyntax, "unterminated regex: missing closing /")
			}
			i++ // closing /
			tokens = append(tokens, token{kind: tokRegex, text: body.String()})

		default:
			// Keywords are recognized only at a word boundary so that a
			// filename like Android.apk is not misparsed.
			if kw, n, ok := keywordAt(chars, i); ok {
				tokens = append(tokens, token{kind: kw})
				i += n
				continue
			}
			start := i
			for i < len(chars) && !isSpace(chars[i]) && chars[i] != '(' && chars[i] != ')' {
				i++
			}
			tokens = append(tokens, token{kind: tokGlob, text: string(chars[start:i])})
		}
	}

	return tokens, nil
}

func keywordAt(chars []rune, i int) (tokenKind, int, bool) {
	if hasKeyword(chars, i, "AND") {
		return tokAnd, 3, true
	}
	if hasKeyword(chars, i, "NOT") {
		return tokNot, 3, true
	}
	if hasKeyword(chars, i, "OR") {
		return tokOr, 2, true
	}
	return 0, 0, false
}

func hasKeyword(chars []rune, i int, word string) bool {
	if i+len(word) > len(chars) {
		return false
	}
	if !strings.EqualFold(string(chars[i:i+len(word)]), word) {
		return false
	}
	return isWordBoundary(chars, i+len(word))
}

func isWordBoundary(chars []rune, pos int) bool {
	return pos >= len(chars) || isSpace(chars[pos]) || chars[pos] == '(' || chars[pos] == ')'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func parseOr(tokens []token) (*Condition, []token, error) {
	first, rest, err := parseAnd(tokens)
	if err != nil {
		return nil, nil, err
	}
	parts := []*Condition{first}

	// Chains of the same operator flatten into one N-ary node.
	for len(rest) > 0 && rest[0].kind == tokOr {
		var next *Condition
		next, rest, err = parseAnd(rest[1:])
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, next)
	}

	if len(parts) == 1 {
		return parts[0], rest, nil
	}
	return Or(parts...), rest, nil
}

func parseAnd(tokens []token) (*Condition, []token, error) {
	first, rest, err := parseNot(tokens)
	if err != nil {
		return nil, nil, err
	}
	parts := []*Condition{first}

	for len(rest) > 0 && rest[0].kind == tokAnd {
		var next *Condition
		next, rest, err = parseNot(rest[1:])
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, next)
	}

	if len(parts) == 1 {
		return parts[0], rest, nil
	}
	return And(parts...), rest, nil
}

func parseNot(tokens []token) (*Condition, []token, error) {
	if len(tokens) == 0 {
		return nil, nil, errors.New(errors.ErrConditionSyntax, "unexpected end of expression")
	}

	if tokens[0].kind == tokNot {
		inner, rest, err := parseNot(tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		return Not(inner), rest, nil
	}
	return parsePrimary(tokens)
}

func parsePrimary(tokens []token) (*Condition, []token, error) {
	if len(tokens) == 0 {
		return nil, nil, errors.New(errors.ErrConditionSyntax, "unexpected end of expression")
	}

	switch tok := tokens[0]; tok.kind {
	case tokLParen:
		cond, rest, err := parseOr(tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 || rest[0].kind != tokRParen {
			return nil, nil, errors.New(errors.ErrConditionSyntax, "missing closing parenthesis")
		}
		return cond, rest[1:], nil

	case tokGlob:
		if tok.text == "*" {
			return Always(), tokens[1:], nil
		}
		return Glob(tok.text), tokens[1:], nil

	case tokRegex:
		return Regex(tok.text), tokens[1:], nil

	default:
		return nil, nil, errors.Newf(errors.ErrConditionSyntax, "unexpected token: %s", tok)
	}
}
