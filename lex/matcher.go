package lex

import "github.com/dekarrin/suhuf/grammar"

// matchTerm attempts to match term against runes starting at pos, returning
// the number of runes consumed and whether any match succeeded. Of all the
// viable lengths term can consume, the longest is chosen unless the
// enclosing token definition carries grammar.PreferShorter, which picks the
// shortest instead (the block-comment case: the body stops at the first
// closing delimiter rather than the last one in the input).
func matchTerm(term *grammar.Term, runes []rune, pos int, mod *grammar.Module, preferShort bool) (int, bool) {
	lengths := matchSet(term, runes, pos, mod)
	if len(lengths) == 0 {
		return 0, false
	}
	first := true
	best := 0
	for n := range lengths {
		if first {
			best = n
			first = false
			continue
		}
		if preferShort {
			if n < best {
				best = n
			}
		} else if n > best {
			best = n
		}
	}
	return best, true
}

// matchSet returns every length term can consume at pos. Enumerating the
// full set lets a Concat backtrack through its children's choices: a
// repetition that would otherwise swallow a closing delimiter still leaves
// the shorter lengths available for the siblings after it.
func matchSet(term *grammar.Term, runes []rune, pos int, mod *grammar.Module) map[int]bool {
	switch term.Kind() {
	case grammar.KindConcat:
		cur := map[int]bool{0: true}
		for _, child := range term.ConcatChildren() {
			next := make(map[int]bool)
			for l := range cur {
				for m := range matchSet(child, runes, pos+l, mod) {
					next[l+m] = true
				}
			}
			if len(next) == 0 {
				return nil
			}
			cur = next
		}
		return cur

	case grammar.KindAlternate:
		out := make(map[int]bool)
		for i, alt := range term.Alternatives() {
			if f := term.Filter(); f != nil && !f(i) {
				continue
			}
			for n := range matchSet(alt, runes, pos, mod) {
				out[n] = true
			}
		}
		return out

	case grammar.KindMultiply:
		child := term.MultiplyChild()
		min := term.MultiplyMin()
		max := term.MultiplyMax()

		out := make(map[int]bool)
		cur := map[int]bool{0: true}
		for reps := 0; ; reps++ {
			if reps >= min {
				for l := range cur {
					out[l] = true
				}
			}
			if max != grammar.Endless && reps >= max {
				break
			}
			next := make(map[int]bool)
			for l := range cur {
				for m := range matchSet(child, runes, pos+l, mod) {
					if m > 0 {
						next[l+m] = true
					}
				}
			}
			if len(next) == 0 {
				break
			}
			cur = next
		}
		return out

	case grammar.KindReference:
		def, ok := resolveLocal(mod, term.RefOf())
		if !ok || def.Term == nil {
			return nil
		}
		return matchSet(def.Term, runes, pos, mod)

	case grammar.KindTokenTerm:
		if mt := term.MatchText(); mt != "" {
			return literalSet(mt, runes, pos)
		}
		def, ok := mod.Lookup(term.TokenID())
		if !ok || def.Term == nil {
			return nil
		}
		return matchSet(def.Term, runes, pos, mod)

	case grammar.KindConstTerm:
		return literalSet(term.ConstText(), runes, pos)

	case grammar.KindCharGroupTerm:
		path := term.CharGroupRef().Path
		if len(path) == 0 || pos >= len(runes) {
			return nil
		}
		cg, ok := mod.LookupCharGroup(path[len(path)-1])
		if !ok {
			return nil
		}
		if cg.Unit.Matches(runes[pos]) {
			return map[int]bool{1: true}
		}
		return nil

	default:
		return nil
	}
}

func literalSet(literal string, runes []rune, pos int) map[int]bool {
	litRunes := []rune(literal)
	if pos+len(litRunes) > len(runes) {
		return nil
	}
	for i, r := range litRunes {
		if runes[pos+i] != r {
			return nil
		}
	}
	return map[int]bool{len(litRunes): true}
}

// termIsLiteral reports whether term can only ever match fixed literal
// text: no character groups and no cross-definition references anywhere in
// its tree.
func termIsLiteral(term *grammar.Term) bool {
	switch term.Kind() {
	case grammar.KindConstTerm:
		return true
	case grammar.KindTokenTerm:
		return term.MatchText() != ""
	case grammar.KindConcat:
		for _, c := range term.ConcatChildren() {
			if !termIsLiteral(c) {
				return false
			}
		}
		return true
	case grammar.KindAlternate:
		for _, c := range term.Alternatives() {
			if !termIsLiteral(c) {
				return false
			}
		}
		return true
	case grammar.KindMultiply:
		return termIsLiteral(term.MultiplyChild())
	default:
		return false
	}
}

// resolveLocal resolves an unqualified or module-qualified Reference against
// mod directly; token term trees are assembled within a single module so
// they never need the full qualifier machinery productions go through.
func resolveLocal(mod *grammar.Module, ref grammar.Reference) (*grammar.SymbolDefinition, bool) {
	if len(ref.Path) == 0 {
		return nil, false
	}
	return mod.Lookup(ref.Path[len(ref.Path)-1])
}
