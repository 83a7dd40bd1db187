package suhuf_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/suhuf"
	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
	"github.com/dekarrin/suhuf/parser"
)

func buildFrontend(t *testing.T) *suhuf.Frontend {
	t.Helper()
	f := grammar.NewFactory("root", "%const")

	require.NoError(t, f.CharGroup("alpha", grammar.Sequence('a', 'z')))
	require.NoError(t, f.CharGroup("digit", grammar.Sequence('0', '9')))
	require.NoError(t, f.CharGroup("ws", grammar.Random(' ', '\n')))
	require.NoError(t, f.Token("IDENT", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("alpha")), 1, grammar.Endless, 0,
	), 0))
	require.NoError(t, f.Token("NUMBER", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("digit")), 1, grammar.Endless, 0,
	), 0))
	require.NoError(t, f.Token("WS", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("ws")), 1, grammar.Endless, 0,
	), grammar.IgnoredToken))
	require.NoError(t, f.Production("primary", grammar.Alternate(
		grammar.TokenTerm("IDENT", ""),
		grammar.TokenTerm("NUMBER", ""),
	)))
	require.NoError(t, f.Production("defstmt", grammar.Concat(
		grammar.ConstTerm("def"),
		grammar.TokenTerm("IDENT", ""),
		grammar.ConstTerm(":"),
		grammar.RefTerm(grammar.ParseReference("primary")),
		grammar.ConstTerm(";"),
	), grammar.WithHandler("definition")))
	require.NoError(t, f.Production("program", grammar.Multiply(
		grammar.RefTerm(grammar.ParseReference("defstmt")), 0, grammar.Endless, grammar.MultiplyGreedy,
	), grammar.WithHandler("scope")))
	require.NoError(t, f.Start(grammar.ParseReference("program")))

	mod, err := f.Build()
	require.NoError(t, err)

	fe, err := suhuf.New(mod)
	require.NoError(t, err)
	fe.Parser.RegisterHandler("definition", parser.NewDefinitionHandler())
	fe.Parser.RegisterHandler("scope", parser.NewScopeHandler())
	fe.Parser.RegisterTokenBuilder("NUMBER", func(tok lex.Token) ast.Node {
		v, _ := strconv.ParseInt(tok.Text, 10, 64)
		return &ast.IntegerLiteralNode{Text: tok.Text, Value: v}
	})
	return fe
}

func TestFrontend_parseThenResolve(t *testing.T) {
	fe := buildFrontend(t)

	node, err := fe.AnalyzeString("def x : 3 ; def y : x ;", "mem.suhuf")
	require.NoError(t, err)
	assert.Empty(t, fe.Store.Approved())

	scope, ok := node.(*ast.ScopeNode)
	require.True(t, ok, "got %T", node)
	require.Len(t, scope.Items, 2)

	resolved, found := fe.Resolve(&ast.IdentifierNode{Name: "x"}, scope)
	require.True(t, found)
	lit, ok := resolved.(*ast.IntegerLiteralNode)
	require.True(t, ok, "got %T", resolved)
	assert.Equal(t, int64(3), lit.Value)

	_, found = fe.Resolve(&ast.IdentifierNode{Name: "nope"}, scope)
	assert.False(t, found)
}

func TestFrontend_newRejectsModuleWithoutStart(t *testing.T) {
	mod := grammar.NewModule("root")
	_, err := suhuf.New(mod)
	assert.Error(t, err)
}
