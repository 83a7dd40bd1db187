package parser

import (
	"github.com/google/uuid"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/notice"
)

// ParserState is a cursor through a parse in progress: a stack of levels
// plus the bookkeeping a branch of the multi-branch protocol needs to carry
// independently of its siblings.
type ParserState struct {
	// id is this state's notice.BranchID; every clone gets a fresh one
	// (not used for equality or duplicate-fate comparison — that is
	// levelSig's job).
	id uuid.UUID

	stack []*Level

	// pendingModifiers holds leading modifier nodes not yet attached to a
	// production; the next production to start claims them.
	pendingModifiers []ast.Node

	// lastProduced is the most recently completed production-level AST
	// node at the current nesting depth, the attachment point for a
	// trailing ("@<") modifier.
	lastProduced ast.Node

	dead bool // set once this branch has been superseded or failed
}

func newParserState() *ParserState {
	return &ParserState{id: uuid.New()}
}

// BranchID is this state's identity in the Notice Store's pending/approved
// protocol: EndParsing promotes notices pending under the winning state's
// BranchID and discards those pending under the other finished states. The
// parser itself files no pending notices; its own notices (and those of its
// handlers) go straight to the approved window through Store.Add.
func (s *ParserState) BranchID() notice.BranchID {
	return notice.BranchID(s.id.String())
}

func (s *ParserState) top() *Level {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *ParserState) push(lvl *Level) {
	s.stack = append(s.stack, lvl)
}

func (s *ParserState) pop() *Level {
	n := len(s.stack)
	if n == 0 {
		return nil
	}
	lvl := s.stack[n-1]
	s.stack = s.stack[:n-1]
	return lvl
}

func (s *ParserState) empty() bool {
	return len(s.stack) == 0
}

// clone produces an independent branch candidate: a new branch id (it is a
// distinct speculative line from this point forward) and a deep-enough copy
// of the level stack so mutating the clone never affects s.
func (s *ParserState) clone() *ParserState {
	cp := &ParserState{
		id:           uuid.New(),
		pendingModifiers: append([]ast.Node(nil), s.pendingModifiers...),
		lastProduced: s.lastProduced,
	}
	cp.stack = make([]*Level, len(s.stack))
	for i, lvl := range s.stack {
		cp.stack[i] = lvl.clone()
	}
	return cp
}

// signature summarizes the entire stack for duplicate-fate elimination
//.
func (s *ParserState) signature() []levelSig {
	sigs := make([]levelSig, len(s.stack))
	for i, lvl := range s.stack {
		sigs[i] = lvl.signature()
	}
	return sigs
}

func sigsEqual(a, b []levelSig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
