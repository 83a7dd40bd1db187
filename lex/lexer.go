// Package lex implements the Lexer: given a grammar module's root token
// definitions, it scans an input module's text and emits a Token stream.
//
// The matching engine walks grammar.Term trees directly rather than
// compiling to regexp, since Suhuf's token definitions live in a mutable
// runtime grammar graph rather than a fixed set of regex source strings
// supplied once at lexer-construction time.
package lex

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/ids"
	"github.com/dekarrin/suhuf/notice"
)

// UnrecognizedChar is the notice code emitted when no root token matches at
// the current position.
const UnrecognizedChar = "UnrecognizedChar"

// Lexer scans text against a grammar.Module's root token definitions.
type Lexer struct {
	mod   *grammar.Module
	store *notice.Store
}

// NewLexer creates a Lexer that scans against mod's root tokens (local and
// inherited) and reports failures to store.
func NewLexer(mod *grammar.Module, store *notice.Store) *Lexer {
	return &Lexer{mod: mod, store: store}
}

// Lex scans the entirety of input (attributed to file in diagnostics) and
// returns the resulting TokenStream. Lexer errors never unwind: an
// unrecognized character is reported via the Notice Store and skipped, and
// scanning continues.
func (lx *Lexer) Lex(input string, file string) *TokenStream {
	// NFC-normalize before matching so Arabic presentation-form variants and
	// decomposed Latin combining sequences that denote the same identifier
	// text compare equal to char-group/const-term matching.
	normalized := norm.NFC.String(input)
	runes := []rune(normalized)

	defs := lx.mod.RootTokenDefs()

	var tokens []Token
	pos := 0
	line, col := 1, 1

	advance := func(n int) {
		for i := 0; i < n; i++ {
			if runes[pos+i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos += n
	}

	for pos < len(runes) {
		loc := notice.SourceLocation{File: file, Line: line, Col: col}

		bestLen := 0
		bestLiteral := false
		var bestDef *grammar.SymbolDefinition
		for _, def := range defs {
			if def.Term == nil {
				continue
			}
			n, ok := matchTerm(def.Term, runes, pos, lx.mod, def.Flags.Has(grammar.PreferShorter))
			if !ok || n == 0 {
				continue
			}
			literal := termIsLiteral(def.Term)
			// longest match wins; at equal length a pure-literal keyword
			// definition beats a character-class one, and otherwise the
			// first-declared definition keeps the match.
			if n > bestLen || (n == bestLen && literal && !bestLiteral) {
				bestLen = n
				bestLiteral = literal
				bestDef = def
			}
		}

		if bestDef == nil {
			lx.store.Add(notice.Notice{
				Code:     UnrecognizedChar,
				Severity: notice.Error,
				Message:  "unrecognized character " + quoteRune(runes[pos]),
				Location: []notice.SourceLocation{loc},
			})
			advance(1)
			continue
		}

		text := string(runes[pos : pos+bestLen])
		advance(bestLen)

		if bestDef.Flags.Has(grammar.IgnoredToken) {
			continue
		}

		tokens = append(tokens, Token{
			ID:   ids.Global.Lookup(bestDef.Name),
			Name: bestDef.Name,
			Text: text,
			Loc:  loc,
		})
	}

	return NewTokenStream(tokens)
}

func quoteRune(r rune) string {
	var b strings.Builder
	b.WriteByte('\'')
	b.WriteRune(r)
	b.WriteByte('\'')
	return b.String()
}
