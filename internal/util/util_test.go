package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	assert.Equal(t, "", MakeTextList(nil))
	assert.Equal(t, "a", MakeTextList([]string{"a"}))
	assert.Equal(t, "a and b", MakeTextList([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", MakeTextList([]string{"a", "b", "c"}))
}

func Test_MakeTextList_doesNotMutateInput(t *testing.T) {
	in := []string{"a", "b", "c"}
	MakeTextList(in)
	assert.Equal(t, []string{"a", "b", "c"}, in)
}

func Test_Set(t *testing.T) {
	s := NewSet("a", "b")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	s.Add("c")
	assert.True(t, s.Has("c"))
	assert.Equal(t, 3, s.Len())

	s.Remove("a")
	assert.False(t, s.Has("a"))

	cp := s.Copy()
	cp.Add("z")
	assert.False(t, s.Has("z"), "copy is independent")
}
