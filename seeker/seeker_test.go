package seeker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/notice"
	"github.com/dekarrin/suhuf/seeker"
)

func firstMatch(t *testing.T, s *seeker.Seeker, ref, target ast.Node) *seeker.Match {
	t.Helper()
	var out *seeker.Match
	s.Foreach(ref, target, func(m *seeker.Match) seeker.Verb {
		out = m
		return seeker.Stop
	}, 0)
	return out
}

func TestForeach_identifierInDirectScope(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	scope := &ast.ScopeNode{}
	lit := &ast.IntegerLiteralNode{Text: "3", Value: 3}
	scope.Append(&ast.DefinitionNode{Name: "x", Target: lit})

	ref := &ast.IdentifierNode{Name: "x"}
	m := firstMatch(t, s, ref, scope)
	require.NotNil(t, m)
	assert.Same(t, lit, m.Node)
	assert.Equal(t, -1, m.ThisIndex)

	// repeated first-match resolution is stable
	again := firstMatch(t, s, ref, scope)
	require.NotNil(t, again)
	assert.Same(t, m.Node, again.Node)

	assert.Empty(t, store.Approved())
}

func TestForeach_ascendsToOwnerScope(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	outer := &ast.ScopeNode{}
	lit := &ast.IntegerLiteralNode{Text: "1", Value: 1}
	outer.Append(&ast.DefinitionNode{Name: "g", Target: lit})
	inner := &ast.ScopeNode{}
	outer.Append(inner)

	m := firstMatch(t, s, &ast.IdentifierNode{Name: "g"}, inner)
	require.NotNil(t, m)
	assert.Same(t, lit, m.Node)
}

func TestForeach_skipOwnersStaysLocal(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	outer := &ast.ScopeNode{}
	outer.Append(&ast.DefinitionNode{Name: "g", Target: &ast.IntegerLiteralNode{Value: 1}})
	inner := &ast.ScopeNode{}
	outer.Append(inner)

	found := s.Foreach(&ast.IdentifierNode{Name: "g"}, inner, func(m *seeker.Match) seeker.Verb {
		return seeker.Stop
	}, seeker.SkipOwners)
	assert.False(t, found)
}

func TestForeach_followsBridgeFromUseStatement(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	modBody := &ast.ScopeNode{}
	lit := &ast.IntegerLiteralNode{Text: "7", Value: 7}
	modBody.Append(&ast.DefinitionNode{Name: "x", Target: lit})

	root := &ast.ScopeNode{}
	root.Append(&ast.DefinitionNode{Name: "m", Target: modBody})
	root.Append(&ast.BridgeNode{Target: &ast.IdentifierNode{Name: "m"}})

	m := firstMatch(t, s, &ast.IdentifierNode{Name: "x"}, root)
	require.NotNil(t, m)
	assert.Same(t, lit, m.Node)
}

func TestForeach_linkOperatorResolvesMemberWithoutOwnerAscent(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	modBody := &ast.ScopeNode{}
	lit := &ast.IntegerLiteralNode{Text: "7", Value: 7}
	modBody.Append(&ast.DefinitionNode{Name: "x", Target: lit})

	root := &ast.ScopeNode{}
	root.Append(&ast.DefinitionNode{Name: "m", Target: modBody})
	// "leak" is visible from root but must NOT resolve as a member of m.
	root.Append(&ast.DefinitionNode{Name: "leak", Target: &ast.IntegerLiteralNode{Value: 9}})

	link := &ast.LinkNode{Type: ".", First: &ast.IdentifierNode{Name: "m"}, Second: &ast.IdentifierNode{Name: "x"}}
	m := firstMatch(t, s, link, root)
	require.NotNil(t, m)
	assert.Same(t, lit, m.Node)

	badLink := &ast.LinkNode{Type: ".", First: &ast.IdentifierNode{Name: "m"}, Second: &ast.IdentifierNode{Name: "leak"}}
	assert.Nil(t, firstMatch(t, s, badLink, root))
}

func TestForeach_privateEntryInvisibleThroughBridge(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	modBody := &ast.ScopeNode{}
	modBody.Append(&ast.DefinitionNode{Name: "hidden", Target: &ast.IntegerLiteralNode{Value: 1}, Flags: ast.Private})

	root := &ast.ScopeNode{}
	root.Append(&ast.DefinitionNode{Name: "m", Target: modBody})
	root.Append(&ast.BridgeNode{Target: &ast.IdentifierNode{Name: "m"}})

	assert.Nil(t, firstMatch(t, s, &ast.IdentifierNode{Name: "hidden"}, root))
}

func TestForeach_selfReferentialBridgeDoesNotLoop(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	root := &ast.ScopeNode{}
	root.Append(&ast.DefinitionNode{Name: "self_mod", Target: root})
	root.Append(&ast.BridgeNode{Target: &ast.IdentifierNode{Name: "self_mod"}})

	// must terminate and report not-found for an unknown name.
	assert.Nil(t, firstMatch(t, s, &ast.IdentifierNode{Name: "nope"}, root))
}

func TestForeach_injectionSearchedAsEnclosingMember(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	injBody := &ast.ScopeNode{}
	lit := &ast.IntegerLiteralNode{Text: "5", Value: 5}
	injBody.Append(&ast.DefinitionNode{Name: "y", Target: lit})

	typeBody := &ast.ScopeNode{}
	typeBody.Append(&ast.DefinitionNode{Name: "field", Target: injBody, Flags: ast.Injection})

	m := firstMatch(t, s, &ast.IdentifierNode{Name: "y"}, typeBody)
	require.NotNil(t, m)
	assert.Same(t, lit, m.Node)
	// the injected field became the new this target, recorded in the stack.
	require.GreaterOrEqual(t, m.ThisIndex, 0)
	assert.Same(t, ast.Node(injBody), m.Stack[m.ThisIndex])
}

func TestForeach_skipInjectionsLeavesInjectedEntriesOut(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	injBody := &ast.ScopeNode{}
	injBody.Append(&ast.DefinitionNode{Name: "y", Target: &ast.IntegerLiteralNode{Value: 5}})

	typeBody := &ast.ScopeNode{}
	typeBody.Append(&ast.DefinitionNode{Name: "field", Target: injBody, Flags: ast.Injection})

	found := s.Foreach(&ast.IdentifierNode{Name: "y"}, typeBody, func(m *seeker.Match) seeker.Verb {
		return seeker.Stop
	}, seeker.SkipInjections)
	assert.False(t, found)

	// without the flag the same search resolves through the injection.
	assert.NotNil(t, firstMatch(t, s, &ast.IdentifierNode{Name: "y"}, typeBody))
}

func TestForeach_noBindInjectionPreservesOuterThis(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	injBody := &ast.ScopeNode{}
	injBody.Append(&ast.DefinitionNode{Name: "y", Target: &ast.IntegerLiteralNode{Value: 5}})

	typeBody := &ast.ScopeNode{}
	typeBody.Append(&ast.DefinitionNode{Name: "field", Target: injBody, Flags: ast.Injection | ast.NoBindInjection})

	m := firstMatch(t, s, &ast.IdentifierNode{Name: "y"}, typeBody)
	require.NotNil(t, m)
	assert.Equal(t, -1, m.ThisIndex, "no-bind injection must not rebind this")
}

func TestSet_replacesDefinitionTarget(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	scope := &ast.ScopeNode{}
	scope.Append(&ast.DefinitionNode{Name: "x", Target: &ast.IntegerLiteralNode{Value: 1}})

	newVal := &ast.IntegerLiteralNode{Text: "2", Value: 2}
	found := s.Set(&ast.IdentifierNode{Name: "x"}, scope, newVal, func(m *seeker.Match) seeker.Verb {
		return seeker.PerformAndStop
	})
	require.True(t, found)

	m := firstMatch(t, s, &ast.IdentifierNode{Name: "x"}, scope)
	require.NotNil(t, m)
	assert.Same(t, ast.Node(newVal), m.Node)
}

func TestRemove_deletesDefinitionFromScope(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	scope := &ast.ScopeNode{}
	scope.Append(&ast.DefinitionNode{Name: "x", Target: &ast.IntegerLiteralNode{Value: 1}})
	scope.Append(&ast.DefinitionNode{Name: "keep", Target: &ast.IntegerLiteralNode{Value: 2}})

	found := s.Remove(&ast.IdentifierNode{Name: "x"}, scope, func(m *seeker.Match) seeker.Verb {
		return seeker.PerformAndStop
	})
	require.True(t, found)

	assert.Nil(t, firstMatch(t, s, &ast.IdentifierNode{Name: "x"}, scope))
	assert.NotNil(t, firstMatch(t, s, &ast.IdentifierNode{Name: "keep"}, scope))
	assert.Len(t, scope.Items, 1)
}

func TestForeach_templateInstanceCachedByArgShape(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	body := &ast.ScopeNode{}
	scope := &ast.ScopeNode{}
	scope.Append(&ast.DefinitionNode{Name: "box", Target: body, Mods: []string{seeker.TemplateModifier}})

	pass1 := &ast.ParamPassNode{
		Operand: &ast.IdentifierNode{Name: "box"},
		Bracket: ast.RoundBracket,
		Param:   &ast.IdentifierNode{Name: "Int"},
	}
	// structurally equal but a distinct AST
	pass2 := &ast.ParamPassNode{
		Operand: &ast.IdentifierNode{Name: "box"},
		Bracket: ast.RoundBracket,
		Param:   &ast.IdentifierNode{Name: "Int"},
	}
	pass3 := &ast.ParamPassNode{
		Operand: &ast.IdentifierNode{Name: "box"},
		Bracket: ast.RoundBracket,
		Param:   &ast.IdentifierNode{Name: "Word"},
	}

	m1 := firstMatch(t, s, pass1, scope)
	m2 := firstMatch(t, s, pass2, scope)
	m3 := firstMatch(t, s, pass3, scope)
	require.NotNil(t, m1)
	require.NotNil(t, m2)
	require.NotNil(t, m3)

	assert.Same(t, m1.Node, m2.Node, "structurally equal arg lists share one instance")
	assert.NotSame(t, m1.Node, m3.Node, "different args produce a different instance")
}

func TestForeach_continuationSatisfiedFromMemory(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	scope := &ast.ScopeNode{}
	ref := &ast.IdentifierNode{Name: "phantom"}
	stored := &seeker.Match{Node: &ast.IntegerLiteralNode{Value: 42}, ThisIndex: -1}

	s.PushContinuation(ref, scope, stored)
	defer s.PopContinuation()

	m := firstMatch(t, s, ref, scope)
	require.NotNil(t, m)
	assert.Same(t, stored, m, "continuation answers without searching")
}

func TestForeach_invalidUseReportedOnlyWhenAllCandidatesFail(t *testing.T) {
	store := notice.NewStore()
	s := seeker.New(store)

	root := &ast.ScopeNode{}
	root.Append(&ast.BridgeNode{Target: &ast.IdentifierNode{Name: "missing_mod"}})

	found := s.Foreach(&ast.IdentifierNode{Name: "x"}, root, func(m *seeker.Match) seeker.Verb {
		return seeker.Stop
	}, 0)
	assert.False(t, found)

	notices := store.Approved()
	require.Len(t, notices, 1)
	assert.Equal(t, seeker.InvalidUseStatement, notices[0].Code)

	// the same shape with a resolvable name suppresses the bridge failure.
	store2 := notice.NewStore()
	s2 := seeker.New(store2)
	root2 := &ast.ScopeNode{}
	root2.Append(&ast.DefinitionNode{Name: "x", Target: &ast.IntegerLiteralNode{Value: 1}})
	root2.Append(&ast.BridgeNode{Target: &ast.IdentifierNode{Name: "missing_mod"}})

	found2 := s2.Foreach(&ast.IdentifierNode{Name: "x"}, root2, func(m *seeker.Match) seeker.Verb {
		return seeker.Stop
	}, 0)
	assert.True(t, found2)
	assert.Empty(t, store2.Approved())
}
