// Package notice implements the Notice Store: the channel through which
// lexical, syntactic, and semantic problems are reported without unwinding
// the call stack. Lexer and parser errors are added here and
// never propagate as Go errors; only truly invalid programmer usage (nil
// grammar, wrong sum-type variant) panics.
package notice

import (
	"fmt"
	"io"

	"github.com/dekarrin/rosed"
)

// Severity is the ordered severity of a Notice, 0 (most severe) to 4 (least).
type Severity int

const (
	// Blocker is a notice severe enough that no further meaningful
	// processing of the affected construct is possible.
	Blocker Severity = iota
	// Error is a notice describing a definite defect in the input.
	Error
	// Warning is a notice describing a likely, but not certain, defect.
	Warning
	// Caution is a second, softer warning tier.
	Caution
	// Attn is an informational notice drawing attention to something that
	// is not itself a defect.
	Attn
)

// String returns the English severity word. Use a Localizer for translated
// output.
func (s Severity) String() string {
	switch s {
	case Blocker:
		return "BLOCKER"
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Caution:
		return "CAUTION"
	case Attn:
		return "ATTN"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// SourceLocation is a single {file, line, col} record. A Notice's Location
// is a stack of these, deepest frame first.
type SourceLocation struct {
	File string
	Line int
	Col  int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s (%d,%d)", l.File, l.Line, l.Col)
}

// Notice is a single diagnostic entry. Location is ordered deepest-first; a
// Notice produced for a single point in the source has exactly one entry.
type Notice struct {
	Code     string
	Severity Severity
	Message  string
	Location []SourceLocation
}

// dedupKey is (code, deepest source location) — the key the Store dedupes
// on.
type dedupKey struct {
	code string
	loc  SourceLocation
}

func (n Notice) key() dedupKey {
	var loc SourceLocation
	if len(n.Location) > 0 {
		loc = n.Location[0]
	}
	return dedupKey{code: n.Code, loc: loc}
}

// Print writes the notice to w in the format:
//
//	«SEVERITY» «code» @ «file» («line»,«col»): «message»
//
// with each deeper stack frame on its own line, prefixed by the localized
// "from " word.
func (n Notice) Print(w io.Writer, loc *Localizer) {
	if loc == nil {
		loc = DefaultLocalizer()
	}
	sevWord := loc.SeverityWord(n.Severity)

	msg := n.Message
	if len(msg) > 72 {
		msg = rosed.Edit(msg).Wrap(72).String()
	}

	if len(n.Location) == 0 {
		fmt.Fprintf(w, "%s %s: %s\n", sevWord, n.Code, msg)
		return
	}

	head := n.Location[0]
	fmt.Fprintf(w, "%s %s @ %s: %s\n", sevWord, n.Code, head.String(), msg)
	for i := 1; i < len(n.Location); i++ {
		fmt.Fprintf(w, "    %s %s\n", loc.FromWord(), n.Location[i].String())
	}
}
