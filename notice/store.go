package notice

import "io"

// BranchID tags a notice as having been raised while a particular
// speculative parser branch was active. The parser's multi-branch protocol
// moves a branch's notices from pending to approved only when
// that branch is adopted as the winner of a multi-branch decision, and
// discards pending notices belonging to branches that lose.
//
// Notices added through Add are approved immediately, without a branch.
// The lexer, parser, seeker and resolve packages all report through Add;
// only AddPending files a notice under a BranchID.
type BranchID string

// Store is an ordered buffer of Notices with dedup-on-add and a
// pending/approved promotion protocol for speculative parser branches.
type Store struct {
	approved  []Notice
	approvedK map[dedupKey]bool
	pending   map[BranchID][]Notice

	localizer *Localizer
}

// NewStore creates an empty Store using the English-only Localizer. Use
// SetLocalizer to install a loaded translation table.
func NewStore() *Store {
	return &Store{
		approvedK: make(map[dedupKey]bool),
		pending:   make(map[BranchID][]Notice),
		localizer: DefaultLocalizer(),
	}
}

// SetLocalizer installs loc as the Localizer used by Print. A nil loc
// reverts to the English-only fallback.
func (s *Store) SetLocalizer(loc *Localizer) {
	if loc == nil {
		loc = DefaultLocalizer()
	}
	s.localizer = loc
}

// Add adds n directly to the approved window, deduplicating against
// notices already approved with the same (code, deepest location).
func (s *Store) Add(n Notice) {
	s.addApproved(n)
}

func (s *Store) addApproved(n Notice) {
	k := n.key()
	if s.approvedK[k] {
		return
	}
	s.approvedK[k] = true
	s.approved = append(s.approved, n)
}

// AddPending adds n under the given speculative branch. It is not visible
// in Approved() or Print() until Promote(branch) is called, and is dropped
// entirely if Discard(branch) is called instead.
func (s *Store) AddPending(branch BranchID, n Notice) {
	if branch == "" {
		s.addApproved(n)
		return
	}
	s.pending[branch] = append(s.pending[branch], n)
}

// Promote moves every notice pending under branch into the approved window
// (applying the same dedup rule as Add), then forgets branch.
func (s *Store) Promote(branch BranchID) {
	for _, n := range s.pending[branch] {
		s.addApproved(n)
	}
	delete(s.pending, branch)
}

// Discard forgets every notice pending under branch without approving any
// of them. Used when a speculative branch loses the multi-branch decision
// that created it.
func (s *Store) Discard(branch BranchID) {
	delete(s.pending, branch)
}

// Approved returns every approved notice, in the order added.
func (s *Store) Approved() []Notice {
	out := make([]Notice, len(s.approved))
	copy(out, s.approved)
	return out
}

// HasBlocker returns whether any approved notice is at Blocker severity.
func (s *Store) HasBlocker() bool {
	for _, n := range s.approved {
		if n.Severity == Blocker {
			return true
		}
	}
	return false
}

// Print writes every approved notice, in order, to w.
func (s *Store) Print(w io.Writer) {
	for _, n := range s.approved {
		n.Print(w, s.localizer)
	}
}
