package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/notice"
)

// buildModule wires up a tiny grammar with an identifier token, whitespace
// (ignored), "==" and "=" keyword tokens (to exercise longest-match), and a
// "/* */" block comment whose body prefers the shorter match while its
// closer eats greedily.
func buildModule(t *testing.T) *grammar.Module {
	t.Helper()
	f := grammar.NewFactory("test", "$const")

	require.NoError(t, f.CharGroup("alpha", grammar.Union(
		grammar.Sequence('a', 'z'),
		grammar.Sequence('A', 'Z'),
	)))
	require.NoError(t, f.CharGroup("ws", grammar.Random(' ', '\t', '\n')))
	require.NoError(t, f.CharGroup("any", grammar.Invert(grammar.Sequence(0, 0))))

	require.NoError(t, f.Token("IDENT", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("alpha")), 1, grammar.Endless, 0,
	), 0))

	require.NoError(t, f.Token("WS", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("ws")), 1, grammar.Endless, 0,
	), grammar.IgnoredToken))

	require.NoError(t, f.Token("EQEQ", grammar.ConstTerm("=="), 0))
	require.NoError(t, f.Token("EQ", grammar.ConstTerm("="), 0))

	commentBody := grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("any")), 0, grammar.Endless, 0,
	)
	commentClose := grammar.Multiply(
		grammar.ConstTerm("*/"), 1, 1, grammar.MultiplyGreedy,
	)
	require.NoError(t, f.Token("COMMENT", grammar.Concat(
		grammar.ConstTerm("/*"), commentBody, commentClose,
	), grammar.IgnoredToken|grammar.PreferShorter))

	require.NoError(t, f.Start(grammar.ParseReference("IDENT")))
	mod, err := f.Build()
	require.NoError(t, err)
	return mod
}

func TestLexer_longestMatchBetweenKeywords(t *testing.T) {
	mod := buildModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("==", "f")
	tok := ts.Next()
	assert.Equal(t, "EQEQ", tok.Name)
	assert.Equal(t, "==", tok.Text)
	assert.True(t, ts.Peek().IsEOF())
}

func TestLexer_splitsOnNonGreedyBoundary(t *testing.T) {
	mod := buildModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("= =", "f")
	first := ts.Next()
	second := ts.Next()
	assert.Equal(t, "EQ", first.Name)
	assert.Equal(t, "EQ", second.Name)
}

func TestLexer_dropsIgnoredWhitespace(t *testing.T) {
	mod := buildModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("foo   bar", "f")
	first := ts.Next()
	second := ts.Next()
	assert.Equal(t, "foo", first.Text)
	assert.Equal(t, "bar", second.Text)
	assert.True(t, ts.Peek().IsEOF())
}

func TestLexer_unrecognizedCharRecoversBySkippingOneRune(t *testing.T) {
	mod := buildModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("foo#bar", "f")
	first := ts.Next()
	second := ts.Next()
	assert.Equal(t, "foo", first.Text)
	assert.Equal(t, "bar", second.Text)

	notices := store.Approved()
	require.Len(t, notices, 1)
	assert.Equal(t, UnrecognizedChar, notices[0].Code)
	assert.Equal(t, 1, notices[0].Location[0].Line)
	assert.Equal(t, 4, notices[0].Location[0].Col)
}

func TestLexer_preferShorterCommentBodyButGreedyCloser(t *testing.T) {
	mod := buildModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("foo /* a */ bar", "f")
	first := ts.Next()
	second := ts.Next()
	assert.Equal(t, "foo", first.Text)
	assert.Equal(t, "bar", second.Text)
	assert.Empty(t, store.Approved())
}

// buildMultilingualModule wires a grammar whose identifier characters span
// ASCII, accented Latin, and Arabic letters, so normalization behavior is
// observable rather than vacuously passing on ASCII input.
func buildMultilingualModule(t *testing.T) *grammar.Module {
	t.Helper()
	f := grammar.NewFactory("test", "$const")

	require.NoError(t, f.CharGroup("letter", grammar.Union(
		grammar.Sequence('a', 'z'),
		grammar.Sequence('A', 'Z'),
		grammar.Sequence('À', 'ÿ'), // accented Latin
		grammar.Sequence('ء', 'ي'), // Arabic letters
	)))
	require.NoError(t, f.CharGroup("ws", grammar.Random(' ', '\n')))

	require.NoError(t, f.Token("IDENT", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("letter")), 1, grammar.Endless, 0,
	), 0))
	require.NoError(t, f.Token("WS", grammar.Multiply(
		grammar.CharGroupTerm(grammar.ParseReference("ws")), 1, grammar.Endless, 0,
	), grammar.IgnoredToken))

	require.NoError(t, f.Start(grammar.ParseReference("IDENT")))
	mod, err := f.Build()
	require.NoError(t, err)
	return mod
}

func TestLexer_nfcNormalizesComposedAndDecomposedRunsEqually(t *testing.T) {
	mod := buildMultilingualModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	// "é" as a single precomposed rune vs "e"+combining-acute must lex to
	// the same IDENT text once NFC-normalized; without normalization the
	// combining mark is not a letter and would split the identifier.
	precomposed := "caf\u00e9"
	decomposed := "cafe\u0301"

	tok1 := lx.Lex(precomposed, "f").Next()
	tok2 := lx.Lex(decomposed, "f").Next()

	assert.Equal(t, "IDENT", tok1.Name)
	assert.Equal(t, "IDENT", tok2.Name)
	assert.Equal(t, tok1.Text, tok2.Text, "both encodings lex to one identifier text")
	assert.Equal(t, precomposed, tok2.Text, "decomposed input is folded to NFC")
	assert.Empty(t, store.Approved())
}

func TestLexer_arabicIdentifierLexesAsOneToken(t *testing.T) {
	mod := buildMultilingualModule(t)
	store := notice.NewStore()
	lx := NewLexer(mod, store)

	ts := lx.Lex("عرف foo", "f")
	first := ts.Next()
	second := ts.Next()

	assert.Equal(t, "IDENT", first.Name)
	assert.Equal(t, "عرف", first.Text)
	assert.Equal(t, "foo", second.Text)
	assert.Empty(t, store.Approved())
}
