package netx

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFreePort_ReturnsPortInRange(t *testing.T) {
	port, err := FindFreePort(42000, 42100, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 42000)
	assert.LessOrEqual(t, port, 42100)

	// The returned port must actually be bindable.
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	l.Close()
}

func TestFindFreePort_SkipsOccupiedPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	occupied := l.Addr().(*net.TCPAddr).Port

	port, err := FindFreePort(occupied, occupied+5, nil)
	require.NoError(t, err)
	assert.NotEqual(t, occupied, port)
}

func TestFindFreePort_ExhaustedRange(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	occupied := l.Addr().(*net.TCPAddr).Port

	_, err = FindFreePort(occupied, occupied, nil)
	assert.ErrorIs(t, err, ErrNoFreePort)
}

func TestFindFreePort_SkipSetExcludesReservedPorts(t *testing.T) {
	skip := map[int]struct{}{43000: {}, 43001: {}}
	port, err := FindFreePort(43000, 43010, skip)
	require.NoError(t, err)
	assert.NotContains(t, skip, port)
}

func TestFindFreePort_SkipSetCanExhaustRange(t *testing.T) {
	skip := map[int]struct{}{43100: {}}
	_, err := FindFreePort(43100, 43100, skip)
	assert.ErrorIs(t, err, ErrNoFreePort)
}
