package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinderPositions(t *testing.T) {
	b := &Binder{}

	assert.Equal(t, 1, b.Bind(Text("a")))
	assert.Equal(t, 2, b.Bind(Null()))
	assert.Equal(t, 3, b.Bind(Int(9)))

	args := b.Args()
	require.Len(t, args, 3)
	assert.Equal(t, "a", args[0])
	assert.Nil(t, args[1])
	assert.Equal(t, int64(9), args[2])
}

func TestBinderPlaceholder(t *testing.T) {
	b := &Binder{}

	assert.Equal(t, "$1", b.Placeholder(Int(1)))
	assert.Equal(t, "$2", b.Placeholder(Text("x")))
	assert.Equal(t, "$3", b.Placeholder(Null()))
	assert.Equal(t, 3, b.Len())
}

func TestBinderNullConsumesPosition(t *testing.T) {
	b := &Binder{}

	b.Placeholder(Null())
	assert.Equal(t, "$2", b.Placeholder(Bool(true)))

	args := b.Args()
	require.Len(t, args, 2)
	assert.Nil(t, args[0])
	assert.Equal(t, true, args[1])
}
