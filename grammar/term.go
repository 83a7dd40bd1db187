// Package grammar implements the Grammar Graph: a mutable,
// traversable object graph of modules, productions/tokens, and the term
// trees that define how each is structurally built out of its children.
// Unlike a precompiled parser-generator table, this graph can be read and
// mutated by a running Factory script and by parsing handlers.
package grammar

import "fmt"

// TermKind discriminates the Term sum type.
type TermKind int

const (
	KindConcat TermKind = iota
	KindAlternate
	KindMultiply
	KindReference
	KindTokenTerm
	KindConstTerm
	KindCharGroupTerm
)

func (k TermKind) String() string {
	switch k {
	case KindConcat:
		return "Concat"
	case KindAlternate:
		return "Alternate"
	case KindMultiply:
		return "Multiply"
	case KindReference:
		return "Reference"
	case KindTokenTerm:
		return "TokenTerm"
	case KindConstTerm:
		return "ConstTerm"
	case KindCharGroupTerm:
		return "CharGroupTerm"
	default:
		return fmt.Sprintf("TermKind(%d)", int(k))
	}
}

// Endless marks a Multiply term's Max as unbounded ("*", "+").
const Endless = -1

// AlternateFilter optionally narrows which alternatives of an Alternate
// term are viable in a given traversal, e.g. to implement grammar-level
// context restrictions. A nil filter means all alternatives are viable.
type AlternateFilter func(altIndex int) bool

// Term is a node in a SymbolDefinition's term tree. Exactly one of the
// Kind-specific accessor methods may be called without panicking, matching
// Kind().
//
// Term values are held by pointer (*Term) everywhere in this package and in
// parser so that a running parse can record its posId alongside a stable
// pointer identity for the term being visited.
type Term struct {
	kind TermKind

	// Concat / Alternate
	children []*Term
	filter   AlternateFilter // Alternate only

	// Multiply
	child *Term
	min   int
	max   int
	flags MultiplyFlags

	// Reference
	ref Reference

	// TokenTerm
	tokenID   string // token definition name, resolved at use time
	matchText string // optional; set only for synthetic const-tokens

	// ConstTerm
	constText string

	// CharGroupTerm
	charGroupRef Reference
}

// MultiplyFlags modifies how a Multiply term is scanned.
type MultiplyFlags int

const (
	// MultiplyGreedy prefers repeating over exiting when both are viable
	// at a given lookahead.
	MultiplyGreedy MultiplyFlags = 1 << iota
)

func (t *Term) Kind() TermKind { return t.kind }

func wrongKind(have, want TermKind) string {
	return fmt.Sprintf("grammar: Term.Kind() is %s, not %s", have, want)
}

// Concat builds a Concat term from the given children in order.
func Concat(children ...*Term) *Term {
	return &Term{kind: KindConcat, children: children}
}

// ConcatChildren returns the ordered children of a Concat term. Panics if
// Kind() != KindConcat.
func (t *Term) ConcatChildren() []*Term {
	if t.kind != KindConcat {
		panic(wrongKind(t.kind, KindConcat))
	}
	return t.children
}

// Alternate builds an Alternate term from the given alternatives. When a
// lookahead tie leaves more than one alternative viable, the first-listed
// one wins deterministically.
func Alternate(alternatives ...*Term) *Term {
	return &Term{kind: KindAlternate, children: alternatives}
}

// AlternateWithFilter is like Alternate but restricts which alternatives are
// considered viable via filter.
func AlternateWithFilter(filter AlternateFilter, alternatives ...*Term) *Term {
	return &Term{kind: KindAlternate, children: alternatives, filter: filter}
}

// Alternatives returns the ordered alternatives of an Alternate term. Panics
// if Kind() != KindAlternate.
func (t *Term) Alternatives() []*Term {
	if t.kind != KindAlternate {
		panic(wrongKind(t.kind, KindAlternate))
	}
	return t.children
}

// Filter returns the viability filter of an Alternate term, or nil if every
// alternative is always viable. Panics if Kind() != KindAlternate.
func (t *Term) Filter() AlternateFilter {
	if t.kind != KindAlternate {
		panic(wrongKind(t.kind, KindAlternate))
	}
	return t.filter
}

// Multiply builds a Multiply term. min==max==1 matches exactly the input
// child alone matches; callers may still construct it that way. The parser
// delivers its one repetition wrapped in an ast.ListNode, as it does for
// every Multiply.
func Multiply(child *Term, min, max int, flags MultiplyFlags) *Term {
	return &Term{kind: KindMultiply, child: child, min: min, max: max, flags: flags}
}

// MultiplyChild, MultiplyMin, MultiplyMax, MultiplyFlagsOf return the parts
// of a Multiply term. Panic if Kind() != KindMultiply.
func (t *Term) MultiplyChild() *Term {
	if t.kind != KindMultiply {
		panic(wrongKind(t.kind, KindMultiply))
	}
	return t.child
}
func (t *Term) MultiplyMin() int {
	if t.kind != KindMultiply {
		panic(wrongKind(t.kind, KindMultiply))
	}
	return t.min
}
func (t *Term) MultiplyMax() int {
	if t.kind != KindMultiply {
		panic(wrongKind(t.kind, KindMultiply))
	}
	return t.max
}
func (t *Term) MultiplyFlagsOf() MultiplyFlags {
	if t.kind != KindMultiply {
		panic(wrongKind(t.kind, KindMultiply))
	}
	return t.flags
}

// RefTerm builds a Reference term.
func RefTerm(ref Reference) *Term {
	return &Term{kind: KindReference, ref: ref}
}

// RefOf returns the Reference of a Reference term. Panics if
// Kind() != KindReference.
func (t *Term) RefOf() Reference {
	if t.kind != KindReference {
		panic(wrongKind(t.kind, KindReference))
	}
	return t.ref
}

// TokenTerm builds a token-matching term for the token definition named
// tokenID. matchText, if non-empty, further restricts the match to that
// exact lexeme (used for synthetic const-tokens).
func TokenTerm(tokenID string, matchText string) *Term {
	return &Term{kind: KindTokenTerm, tokenID: tokenID, matchText: matchText}
}

// TokenID and MatchText return the parts of a TokenTerm. Panic if
// Kind() != KindTokenTerm.
func (t *Term) TokenID() string {
	if t.kind != KindTokenTerm {
		panic(wrongKind(t.kind, KindTokenTerm))
	}
	return t.tokenID
}
func (t *Term) MatchText() string {
	if t.kind != KindTokenTerm {
		panic(wrongKind(t.kind, KindTokenTerm))
	}
	return t.matchText
}

// ConstTerm builds a literal-keyword term. A Factory promotes every
// ConstTerm reachable from a production's term tree into a synthetic token
// definition sharing one const-token id during Build().
func ConstTerm(text string) *Term {
	return &Term{kind: KindConstTerm, constText: text}
}

// ConstText returns the literal text of a ConstTerm. Panics if
// Kind() != KindConstTerm.
func (t *Term) ConstText() string {
	if t.kind != KindConstTerm {
		panic(wrongKind(t.kind, KindConstTerm))
	}
	return t.constText
}

// CharGroupTerm builds a term that matches one character of the
// CharGroupUnit referenced by ref.
func CharGroupTerm(ref Reference) *Term {
	return &Term{kind: KindCharGroupTerm, charGroupRef: ref}
}

// CharGroupRef returns the reference of a CharGroupTerm. Panics if
// Kind() != KindCharGroupTerm.
func (t *Term) CharGroupRef() Reference {
	if t.kind != KindCharGroupTerm {
		panic(wrongKind(t.kind, KindCharGroupTerm))
	}
	return t.charGroupRef
}
