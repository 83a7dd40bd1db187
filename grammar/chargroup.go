package grammar

import "fmt"

// CharGroupKind discriminates the CharGroupUnit sum type.
type CharGroupKind int

const (
	CGSequence CharGroupKind = iota
	CGRandom
	CGUnion
	CGInvert
)

func (k CharGroupKind) String() string {
	switch k {
	case CGSequence:
		return "Sequence"
	case CGRandom:
		return "Random"
	case CGUnion:
		return "Union"
	case CGInvert:
		return "Invert"
	default:
		return fmt.Sprintf("CharGroupKind(%d)", int(k))
	}
}

// CharGroupUnit is a node in a character-group definition's tree. Exactly
// one Kind-specific accessor may be called without panicking.
type CharGroupUnit struct {
	kind CharGroupKind

	lo, hi rune     // Sequence
	set    []rune   // Random
	union  []CharGroupUnit // Union
	invert *CharGroupUnit  // Invert
}

func (u CharGroupUnit) Kind() CharGroupKind { return u.kind }

func wrongCGKind(have, want CharGroupKind) string {
	return fmt.Sprintf("grammar: CharGroupUnit.Kind() is %s, not %s", have, want)
}

// Sequence matches any rune in [lo, hi] inclusive.
func Sequence(lo, hi rune) CharGroupUnit {
	return CharGroupUnit{kind: CGSequence, lo: lo, hi: hi}
}

func (u CharGroupUnit) SequenceBounds() (lo, hi rune) {
	if u.kind != CGSequence {
		panic(wrongCGKind(u.kind, CGSequence))
	}
	return u.lo, u.hi
}

// Random matches any rune in the given set.
func Random(set ...rune) CharGroupUnit {
	return CharGroupUnit{kind: CGRandom, set: set}
}

func (u CharGroupUnit) RandomSet() []rune {
	if u.kind != CGRandom {
		panic(wrongCGKind(u.kind, CGRandom))
	}
	return u.set
}

// Union matches any rune matched by one of children.
func Union(children ...CharGroupUnit) CharGroupUnit {
	return CharGroupUnit{kind: CGUnion, union: children}
}

func (u CharGroupUnit) UnionChildren() []CharGroupUnit {
	if u.kind != CGUnion {
		panic(wrongCGKind(u.kind, CGUnion))
	}
	return u.union
}

// Invert matches any rune NOT matched by child.
func Invert(child CharGroupUnit) CharGroupUnit {
	return CharGroupUnit{kind: CGInvert, invert: &child}
}

func (u CharGroupUnit) InvertChild() CharGroupUnit {
	if u.kind != CGInvert {
		panic(wrongCGKind(u.kind, CGInvert))
	}
	return *u.invert
}

// Matches returns whether r is matched by this CharGroupUnit.
func (u CharGroupUnit) Matches(r rune) bool {
	switch u.kind {
	case CGSequence:
		return r >= u.lo && r <= u.hi
	case CGRandom:
		for _, c := range u.set {
			if c == r {
				return true
			}
		}
		return false
	case CGUnion:
		for _, c := range u.union {
			if c.Matches(r) {
				return true
			}
		}
		return false
	case CGInvert:
		return !u.invert.Matches(r)
	default:
		return false
	}
}

// CharGroup is a named, Factory-installed character group definition.
type CharGroup struct {
	Name string
	Unit CharGroupUnit
}
