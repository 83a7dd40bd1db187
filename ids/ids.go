// Package ids provides the process-wide identifier table used across Suhuf.
//
// Every declared grammar symbol, AST node class, and built-in name gets a
// stable integer id the first time it is looked up by name. Ids are stable
// for the lifetime of a single process run only; they are never persisted
// and are not required to be stable across runs or goroutine-safe (Suhuf is
// single-threaded cooperative per its concurrency model).
package ids

import "fmt"

// ID is an opaque, process-run-stable identifier for a name.
type ID int

// None is the zero value of ID and is never assigned to a real name.
const None ID = 0

// Generator is a string->ID table with a reverse lookup. The zero value is
// not ready for use; call New to construct one.
type Generator struct {
	byName map[string]ID
	byID   []string // byID[id-1] == name for id, since None==0 is reserved
}

// New creates an empty Generator.
func New() *Generator {
	return &Generator{
		byName: make(map[string]ID),
	}
}

// Global is the process-wide Generator used by default when callers don't
// need an isolated id space (tests typically create their own via New so ids
// don't leak across test cases).
var Global = New()

// Lookup returns the ID for name, assigning a new one if name has not been
// seen before by this Generator.
func (g *Generator) Lookup(name string) ID {
	if id, ok := g.byName[name]; ok {
		return id
	}
	g.byID = append(g.byID, name)
	id := ID(len(g.byID))
	g.byName[name] = id
	return id
}

// Peek returns the ID already assigned to name without assigning a new one.
// The second return is false if name has never been looked up.
func (g *Generator) Peek(name string) (ID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the name originally registered for id. The second return is
// false if id was never assigned by this Generator.
func (g *Generator) Name(id ID) (string, bool) {
	if id <= 0 || int(id) > len(g.byID) {
		return "", false
	}
	return g.byID[id-1], true
}

// MustName is like Name but panics if id is not known to g. Intended for
// debug/trace output where an unknown id indicates a programmer error, not a
// user-input condition.
func (g *Generator) MustName(id ID) string {
	name, ok := g.Name(id)
	if !ok {
		panic(fmt.Sprintf("ids: no name registered for id %d", id))
	}
	return name
}

// Len returns the number of distinct names registered so far.
func (g *Generator) Len() int {
	return len(g.byID)
}
