// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"errors"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/lipgloss"
)

// Compile-time interface verification.
var _ stagehand.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps a chroma token type to a visual style.
type StyleFunc func(chroma.TokenType) stagehand.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	style StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer that styles tokens
// with the given mapping.
func NewTokenizer(style StyleFunc) (*Tokenizer, error) {
	if style == nil {
		return nil, errors.New("chroma: style function is required")
	}
	return &Tokenizer{style: style}, nil
}

// Tokenize splits source code into syntax-highlighted tokens for the given language.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source (valid input, no tokens).
func (t *Tokenizer) Tokenize(language, source string) []stagehand.Token {
	if source == "" {
		return []stagehand.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var tokens []stagehand.Token
	for token := iterator(); token != chroma.EOF; token = iterator() {
		tokens = append(tokens, stagehand.Token{
			Text:  token.Value,
			Style: t.style(token.Type),
		})
	}

	return tokens
}

// TokenizeLines tokenizes source as a whole and splits the result per line,
// so constructs spanning lines, multi-line comments for instance, keep
// their styling on every line. Returns nil if the language is not supported.
func (t *Tokenizer) TokenizeLines(language, source string) [][]stagehand.Token {
	tokens := t.Tokenize(language, source)
	if tokens == nil {
		return nil
	}
	if len(tokens) == 0 {
		return [][]stagehand.Token{}
	}

	lines := [][]stagehand.Token{}
	current := []stagehand.Token{}
	for _, tok := range tokens {
		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, current)
				current = []stagehand.Token{}
			}
			if part != "" {
				current = append(current, stagehand.Token{Text: part, Style: tok.Style})
			}
		}
	}
	lines = append(lines, current)
	return lines
}

// StyleFromPalette builds a StyleFunc from a theme palette. The category
// grouping loosely follows the One Dark theme.
func StyleFromPalette(p lipgloss.Palette) StyleFunc {
	return func(tt chroma.TokenType) stagehand.Style {
		// Use direct type comparison for specific types,
		// then fall through to category checks for broader matches.
		switch tt {
		// Keywords
		case chroma.Keyword, chroma.KeywordConstant, chroma.KeywordDeclaration,
			chroma.KeywordNamespace, chroma.KeywordPseudo, chroma.KeywordReserved,
			chroma.KeywordType:
			return stagehand.Style{Foreground: string(p.Keyword), Bold: true}

		// Comments
		case chroma.Comment, chroma.CommentHashbang, chroma.CommentMultiline,
			chroma.CommentPreproc, chroma.CommentPreprocFile, chroma.CommentSingle,
			chroma.CommentSpecial:
			return stagehand.Style{Foreground: string(p.Comment)}

		// Strings (String* and LiteralString* are aliases, so only use one set)
		case chroma.String, chroma.StringAffix, chroma.StringBacktick, chroma.StringChar,
			chroma.StringDelimiter, chroma.StringDoc, chroma.StringDouble,
			chroma.StringEscape, chroma.StringHeredoc, chroma.StringInterpol,
			chroma.StringOther, chroma.StringRegex, chroma.StringSingle,
			chroma.StringSymbol:
			return stagehand.Style{Foreground: string(p.String)}

		// Numbers (Number* and LiteralNumber* are aliases, so only use one set)
		case chroma.Number, chroma.NumberBin, chroma.NumberFloat, chroma.NumberHex,
			chroma.NumberInteger, chroma.NumberIntegerLong, chroma.NumberOct:
			return stagehand.Style{Foreground: string(p.Number)}

		// Operators
		case chroma.Operator, chroma.OperatorWord:
			return stagehand.Style{Foreground: string(p.Operator)}

		// Builtin names (e.g., println, len, make)
		case chroma.NameBuiltin, chroma.NameBuiltinPseudo:
			return stagehand.Style{Foreground: string(p.Builtin)}

		// Function names
		case chroma.NameFunction, chroma.NameFunctionMagic:
			return stagehand.Style{Foreground: string(p.Function)}

		// Other names (general identifiers)
		case chroma.Name, chroma.NameAttribute, chroma.NameClass, chroma.NameConstant,
			chroma.NameDecorator, chroma.NameEntity, chroma.NameException,
			chroma.NameLabel, chroma.NameNamespace, chroma.NameOther,
			chroma.NameProperty, chroma.NameTag, chroma.NameVariable,
			chroma.NameVariableAnonymous, chroma.NameVariableClass,
			chroma.NameVariableGlobal, chroma.NameVariableInstance,
			chroma.NameVariableMagic:
			return stagehand.Style{Foreground: string(p.Name)}

		default:
			return stagehand.Style{}
		}
	}
}
