package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(ln.Addr().String())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInUse)
	assert.Contains(t, err.Error(), "--listen")
}

func TestListen_BadAddress(t *testing.T) {
	_, err := Listen("not-an-address")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInUse)
}
