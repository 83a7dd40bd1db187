package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeNode_Append_setsOwnerAndIndexes(t *testing.T) {
	scope := &ScopeNode{}
	def := &DefinitionNode{Name: "x", Target: &IntegerLiteralNode{Text: "1", Value: 1}}
	br := &BridgeNode{Target: &IdentifierNode{Name: "mod"}}

	scope.Append(def)
	scope.Append(br)

	assert.Same(t, scope, def.Owner())
	assert.Same(t, scope, br.Owner())
	assert.Equal(t, def, scope.Definitions()["x"])
	assert.Equal(t, []*BridgeNode{br}, scope.Bridges())
}

func TestListNode_Append_setsOwner(t *testing.T) {
	list := &ListNode{}
	item := &IdentifierNode{Name: "a"}
	list.Append(item)

	assert.Same(t, list, item.Owner())
	assert.Len(t, list.Items, 1)
}

func TestMapNode_Append_setsOwnerOnKeyAndValue(t *testing.T) {
	m := &MapNode{}
	k := &StringLiteralNode{Value: "k"}
	v := &IntegerLiteralNode{Value: 1}
	m.Append(k, v)

	assert.Same(t, m, k.Owner())
	assert.Same(t, m, v.Owner())
	assert.Equal(t, MapEntry{Key: k, Value: v}, m.Entries[0])
}

func TestInfixOperands_matchesAllInfixKinds(t *testing.T) {
	first := &IdentifierNode{Name: "a"}
	second := &IdentifierNode{Name: "b"}

	cases := []Node{
		&AssignmentNode{Type: "=", First: first, Second: second},
		&ComparisonNode{Type: "==", First: first, Second: second},
		&AdditionNode{Type: "+", First: first, Second: second},
		&MultiplicationNode{Type: "*", First: first, Second: second},
		&BitwiseNode{Type: "&", First: first, Second: second},
		&LogNode{Type: "and", First: first, Second: second},
		&LinkNode{Type: ".", First: first, Second: second},
		&ConditionalNode{Type: "?:", First: first, Second: second},
	}
	for _, n := range cases {
		f, s, ok := InfixOperands(n)
		assert.True(t, ok, "%T", n)
		assert.Same(t, first, f)
		assert.Same(t, second, s)
	}

	_, _, ok := InfixOperands(&IdentifierNode{})
	assert.False(t, ok)
}

func TestBase_SetOwner(t *testing.T) {
	parent := &ScopeNode{}
	child := &IdentifierNode{Name: "x"}
	SetOwner(child, parent)
	assert.Same(t, parent, child.Owner())

	// nil child is a no-op, not a panic
	SetOwner(nil, parent)
}

func TestSharedList_localOnlyBeforeAnyBase(t *testing.T) {
	l := NewSharedList[string](nil)
	assert.Equal(t, 0, l.Len())

	l.Append("a")
	l.Append("b")
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "a", l.Get(0))
	assert.Equal(t, "b", l.Get(1))
	assert.False(t, l.IsInherited(0))
}

func TestSharedList_derivedMirrorsBaseUntilOverridden(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	base.Append("base1")

	derived := NewSharedList[string](base)
	assert.Equal(t, 2, derived.Len())
	assert.Equal(t, "base0", derived.Get(0))
	assert.True(t, derived.IsInherited(0))

	derived.Set(0, "override0")
	assert.Equal(t, "override0", derived.Get(0))
	assert.False(t, derived.IsInherited(0))
	assert.Equal(t, "base1", derived.Get(1))
	assert.True(t, derived.IsInherited(1))
}

func TestSharedList_baseUpdatePropagatesToNonOverriddenDerived(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	derived := NewSharedList[string](base)

	var gotEvents []Event
	derived.Subscribe(func(ev Event) { gotEvents = append(gotEvents, ev) })

	base.Set(0, "base0-changed")
	assert.Equal(t, "base0-changed", derived.Get(0))
	if assert.Len(t, gotEvents, 2) {
		assert.Equal(t, WillUpdate, gotEvents[0].Type)
		assert.Equal(t, Updated, gotEvents[1].Type)
	}
}

func TestSharedList_baseUpdateDoesNotPropagateWhenOverridden(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	derived := NewSharedList[string](base)
	derived.Set(0, "override0")

	var gotEvents []Event
	derived.Subscribe(func(ev Event) { gotEvents = append(gotEvents, ev) })

	base.Set(0, "base0-changed")
	assert.Empty(t, gotEvents)
	assert.Equal(t, "override0", derived.Get(0))
}

func TestSharedList_removeOverriddenBaseRangeEntryReverts(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	derived := NewSharedList[string](base)
	derived.Set(0, "override0")

	derived.RemoveAt(0)

	assert.Equal(t, 1, derived.Len(), "slot is reverted in place, not deleted")
	assert.Equal(t, "base0", derived.Get(0))
	assert.True(t, derived.IsInherited(0))
}

func TestSharedList_removeLocalEntryShiftsIndices(t *testing.T) {
	l := NewSharedList[string](nil)
	l.Append("a")
	l.Append("b")
	l.Append("c")

	l.RemoveAt(0)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "b", l.Get(0))
	assert.Equal(t, "c", l.Get(1))
}

func TestSharedList_removeNonOverriddenBaseEntryIsNoop(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	derived := NewSharedList[string](base)

	derived.RemoveAt(0)

	assert.Equal(t, 1, derived.Len())
	assert.Equal(t, "base0", derived.Get(0))
}

func TestSharedList_destroyClearsWeakBasePointerInDerived(t *testing.T) {
	base := NewSharedList[string](nil)
	base.Append("base0")
	derived := NewSharedList[string](base)
	assert.Equal(t, 1, derived.Len())

	base.Destroy()

	assert.Equal(t, 0, derived.Len(), "derived degrades to local-only once base is gone")
}

func TestSharedList_subscribeReturnsWorkingUnsubscribe(t *testing.T) {
	l := NewSharedList[string](nil)
	calls := 0
	unsub := l.Subscribe(func(ev Event) { calls++ })

	l.Append("a")
	assert.Equal(t, 1, calls)

	unsub()
	l.Append("b")
	assert.Equal(t, 1, calls, "no further notifications after unsubscribe")
}
