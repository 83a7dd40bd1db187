// Package resolve finds the best matching callee or type for a named call
// site: it enumerates candidates through the seeker, rates each against the
// call's argument types, and arbitrates ties and ambiguities.
package resolve

import "fmt"

// MatchStatus is the ordered measure of how well a value or type satisfies
// a target: each tier strictly beats every tier below it.
type MatchStatus int

const (
	None MatchStatus = iota
	CustomCaster
	ExplicitCast
	ImplicitCast
	RefAggregation
	Aggregation
	Exact
)

func (s MatchStatus) String() string {
	switch s {
	case None:
		return "NONE"
	case CustomCaster:
		return "CUSTOM_CASTER"
	case ExplicitCast:
		return "EXPLICIT_CAST"
	case ImplicitCast:
		return "IMPLICIT_CAST"
	case RefAggregation:
		return "REF_AGGREGATION"
	case Aggregation:
		return "AGGREGATION"
	case Exact:
		return "EXACT"
	default:
		return fmt.Sprintf("MatchStatus(%d)", int(s))
	}
}

// Callable reports whether s is good enough to invoke a candidate at all.
func (s MatchStatus) Callable() bool { return s >= CustomCaster }

// InitKind records how a constructor lookup was satisfied.
type InitKind int

const (
	// NoInit: the lookup did not take the constructor path.
	NoInit InitKind = iota
	// DeclaredInit: the type's body declares its own init operation.
	DeclaredInit
	// SynthesizedCopyInit: no declared init, but the single argument is
	// implicitly castable to the type itself.
	SynthesizedCopyInit
	// TrivialInit: no declared init and no arguments.
	TrivialInit
)
