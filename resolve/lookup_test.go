package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/notice"
	"github.com/dekarrin/suhuf/seeker"
)

// fakeTypes is a TypeModel stub keyed on node identity.
type fakeTypes struct {
	callStatus map[ast.Node]MatchStatus
	callDerefs map[ast.Node]int
	isType     map[ast.Node]bool
	isArray    map[ast.Node]bool
	intCast    map[ast.Node]bool
	fpTarget   map[ast.Node]ast.Node
	typeMatch  map[[2]ast.Node]MatchStatus
}

func newFakeTypes() *fakeTypes {
	return &fakeTypes{
		callStatus: make(map[ast.Node]MatchStatus),
		callDerefs: make(map[ast.Node]int),
		isType:     make(map[ast.Node]bool),
		isArray:    make(map[ast.Node]bool),
		intCast:    make(map[ast.Node]bool),
		fpTarget:   make(map[ast.Node]ast.Node),
		typeMatch:  make(map[[2]ast.Node]MatchStatus),
	}
}

func (f *fakeTypes) MatchCall(candidate ast.Node, argTypes []ast.Node) (MatchStatus, int) {
	return f.callStatus[candidate], f.callDerefs[candidate]
}
func (f *fakeTypes) MatchType(from, to ast.Node) MatchStatus {
	return f.typeMatch[[2]ast.Node{from, to}]
}
func (f *fakeTypes) IsType(n ast.Node) bool  { return f.isType[n] }
func (f *fakeTypes) IsArray(n ast.Node) bool { return f.isArray[n] }
func (f *fakeTypes) IsFunction(n ast.Node) bool {
	_, ok := f.callStatus[n]
	return ok
}
func (f *fakeTypes) FuncPointerTarget(n ast.Node) ast.Node { return f.fpTarget[n] }
func (f *fakeTypes) IsIntegerCastable(n ast.Node) bool     { return f.intCast[n] }

func setup() (*Lookup, *fakeTypes, *notice.Store, *ast.ScopeNode) {
	store := notice.NewStore()
	sk := seeker.New(store)
	types := newFakeTypes()
	return NewLookup(sk, types, store), types, store, &ast.ScopeNode{}
}

func TestCallee_exactBeatsImplicitCast(t *testing.T) {
	l, types, store, scope := setup()

	fExact := &ast.GenericCommandNode{Keyword: "func"}
	fCast := &ast.GenericCommandNode{Keyword: "func"}
	scope.Append(&ast.DefinitionNode{Name: "f", Target: fCast})
	scope.Append(&ast.DefinitionNode{Name: "f", Target: fExact})
	types.callStatus[fCast] = ImplicitCast
	types.callStatus[fExact] = Exact

	res := l.Callee("f", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	assert.Equal(t, Exact, res.Status)
	assert.Same(t, ast.Node(fExact), res.Callee)
	assert.Nil(t, res.Notice)
	assert.Empty(t, store.Approved())
}

func TestCallee_equalTierIsAmbiguous(t *testing.T) {
	l, types, store, scope := setup()

	f1 := &ast.GenericCommandNode{Keyword: "func"}
	f2 := &ast.GenericCommandNode{Keyword: "func"}
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f1})
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f2})
	types.callStatus[f1] = ImplicitCast
	types.callStatus[f2] = ImplicitCast

	res := l.Callee("f", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	require.NotNil(t, res.Notice)
	assert.Equal(t, MultipleCalleeMatch, res.Notice.Code)
	assert.Nil(t, res.Callee, "no callee resolves from an ambiguous lookup")

	notices := store.Approved()
	require.Len(t, notices, 1)
	assert.Equal(t, MultipleCalleeMatch, notices[0].Code)
}

func TestCallee_betterTierSupersedesAmbiguity(t *testing.T) {
	l, types, store, scope := setup()

	f1 := &ast.GenericCommandNode{Keyword: "func"}
	f2 := &ast.GenericCommandNode{Keyword: "func"}
	f3 := &ast.GenericCommandNode{Keyword: "func"}
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f1})
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f2})
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f3})
	types.callStatus[f1] = ImplicitCast
	types.callStatus[f2] = ImplicitCast
	types.callStatus[f3] = Aggregation

	res := l.Callee("f", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	assert.Nil(t, res.Notice)
	assert.Equal(t, Aggregation, res.Status)
	assert.Same(t, ast.Node(f3), res.Callee)
	assert.Empty(t, store.Approved())
}

func TestCallee_noCallableCandidateIsArgsMismatch(t *testing.T) {
	l, types, store, scope := setup()

	f := &ast.GenericCommandNode{Keyword: "func"}
	scope.Append(&ast.DefinitionNode{Name: "f", Target: f})
	types.callStatus[f] = None

	res := l.Callee("f", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Text"}})
	require.NotNil(t, res.Notice)
	assert.Equal(t, ArgsMismatch, res.Notice.Code)
	assert.Equal(t, None, res.Status)

	notices := store.Approved()
	require.Len(t, notices, 1)
	assert.Equal(t, ArgsMismatch, notices[0].Code)
}

func TestCallee_directExactWinsWithoutConsultingInjections(t *testing.T) {
	l, types, store, scope := setup()

	fDirect := &ast.GenericCommandNode{Keyword: "func"}
	fInjected := &ast.GenericCommandNode{Keyword: "func"}
	injBody := &ast.ScopeNode{}
	injBody.Append(&ast.DefinitionNode{Name: "m", Target: fInjected})

	scope.Append(&ast.DefinitionNode{Name: "field", Target: injBody, Flags: ast.Injection})
	scope.Append(&ast.DefinitionNode{Name: "m", Target: fDirect})

	types.callStatus[fDirect] = Exact
	types.callStatus[fInjected] = Exact

	// an equal-tier injected candidate must not tie against a direct
	// exact match; injections are a fallback, not a parallel overload set.
	res := l.Callee("m", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	assert.Nil(t, res.Notice)
	assert.Equal(t, Exact, res.Status)
	assert.Same(t, ast.Node(fDirect), res.Callee)
	assert.Empty(t, store.Approved())
}

func TestCallee_injectionsFoldedInWhenBestIsBelowExact(t *testing.T) {
	l, types, store, scope := setup()

	fDirect := &ast.GenericCommandNode{Keyword: "func"}
	fInjected := &ast.GenericCommandNode{Keyword: "func"}
	injBody := &ast.ScopeNode{}
	injBody.Append(&ast.DefinitionNode{Name: "m", Target: fInjected})

	scope.Append(&ast.DefinitionNode{Name: "field", Target: injBody, Flags: ast.Injection})
	scope.Append(&ast.DefinitionNode{Name: "m", Target: fDirect})

	types.callStatus[fDirect] = ImplicitCast
	types.callStatus[fInjected] = Exact

	res := l.Callee("m", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	assert.Nil(t, res.Notice)
	assert.Equal(t, Exact, res.Status)
	assert.Same(t, ast.Node(fInjected), res.Callee)
	assert.Empty(t, store.Approved())
}

func TestCallee_trivialInitOnBareType(t *testing.T) {
	l, types, store, scope := setup()

	body := &ast.ScopeNode{}
	scope.Append(&ast.DefinitionNode{Name: "Point", Target: body})
	types.isType[body] = true

	res := l.Callee("Point", scope, nil, nil)
	assert.Equal(t, Exact, res.Status)
	assert.Equal(t, TrivialInit, res.Init)
	assert.Same(t, ast.Node(body), res.Type)
	assert.Empty(t, store.Approved())
}

func TestCallee_declaredInitOnType(t *testing.T) {
	l, types, store, scope := setup()

	initFn := &ast.GenericCommandNode{Keyword: "func"}
	body := &ast.ScopeNode{}
	body.Append(&ast.DefinitionNode{Name: InitName, Target: initFn})
	scope.Append(&ast.DefinitionNode{Name: "Point", Target: body})
	types.isType[body] = true
	types.callStatus[initFn] = Exact

	res := l.Callee("Point", scope, nil, []ast.Node{&ast.IdentifierNode{Name: "Int"}})
	assert.Equal(t, Exact, res.Status)
	assert.Equal(t, DeclaredInit, res.Init)
	assert.Same(t, ast.Node(initFn), res.Callee)
	assert.Empty(t, store.Approved())
}

func TestCallee_synthesizedCopyInit(t *testing.T) {
	l, types, store, scope := setup()

	body := &ast.ScopeNode{}
	scope.Append(&ast.DefinitionNode{Name: "Point", Target: body})
	types.isType[body] = true

	argType := &ast.IdentifierNode{Name: "Point"}
	types.typeMatch[[2]ast.Node{argType, body}] = ImplicitCast

	res := l.Callee("Point", scope, nil, []ast.Node{argType})
	assert.Equal(t, ImplicitCast, res.Status)
	assert.Equal(t, SynthesizedCopyInit, res.Init)
	assert.Empty(t, store.Approved())
}

func TestCallee_functionPointerDereferencesOnce(t *testing.T) {
	l, types, store, scope := setup()

	pointee := &ast.GenericCommandNode{Keyword: "func"}
	fp := &ast.IdentifierNode{Name: "fp_value"}
	scope.Append(&ast.DefinitionNode{Name: "g", Target: fp})
	types.fpTarget[fp] = pointee
	types.callStatus[pointee] = Exact

	res := l.Callee("g", scope, nil, nil)
	assert.Equal(t, Exact, res.Status)
	assert.Same(t, ast.Node(pointee), res.Callee)
	assert.Equal(t, 1, res.Derefs)
	assert.Empty(t, store.Approved())
}

func TestCallee_rawArrayMatchesIntegerIndex(t *testing.T) {
	l, types, store, scope := setup()

	arr := &ast.IdentifierNode{Name: "arr_type"}
	scope.Append(&ast.DefinitionNode{Name: "a", Target: arr})
	types.isArray[arr] = true

	idx := &ast.IdentifierNode{Name: "Int"}
	types.intCast[idx] = true

	res := l.Callee("a", scope, nil, []ast.Node{idx})
	assert.Equal(t, Exact, res.Status)
	assert.Empty(t, store.Approved())

	bad := &ast.IdentifierNode{Name: "Text"}
	res2 := l.Callee("a", scope, nil, []ast.Node{bad})
	assert.Equal(t, None, res2.Status)
}
