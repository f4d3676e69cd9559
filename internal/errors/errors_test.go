package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Defaults(t *testing.T) {
	t.Parallel()

	err := Newf("something failed").Build()

	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "something failed", err.Error())
}

func TestErrorBuilder_CategoryAndContext(t *testing.T) {
	t.Parallel()

	err := Newf("lookup failed for %s", "user1").
		Component("datastore").
		Category(CategoryNotFound).
		Context("user_id", "user1").
		Build()

	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.Equal(t, "user1", err.GetContext()["user_id"])
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	t.Parallel()

	a := Newf("first").Category(CategoryNetwork).Build()
	b := Newf("second").Category(CategoryNetwork).Build()
	c := Newf("third").Category(CategoryDatabase).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestEnhancedError_UnwrapsSentinel(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("record missing")
	wrapped := New(sentinel).Category(CategoryNotFound).Build()

	require.True(t, Is(wrapped, sentinel))

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryNotFound, ee.Category)
}
