package gpu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestSelect_Empty(t *testing.T) {
	assert.Nil(t, Select(nil, nil))
	assert.Nil(t, Select(nil, intPtr(2)))
}

func TestSelect_PreferredHonored(t *testing.T) {
	// Explicit preference wins over free-memory ranking.
	devices := []Device{
		{Index: 0, FreeMemory: 8 << 30},
		{Index: 2, FreeMemory: 2 << 30},
	}
	got := Select(devices, intPtr(2))
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)
}

func TestSelect_PreferredAbsentFallsBackToMostFree(t *testing.T) {
	devices := []Device{
		{Index: 0, FreeMemory: 8 << 30},
		{Index: 1, FreeMemory: 16 << 30},
	}
	got := Select(devices, intPtr(7))
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)
}

func TestSelect_MostFreeMemory(t *testing.T) {
	devices := []Device{
		{Index: 0, FreeMemory: 4 << 30},
		{Index: 1, FreeMemory: 12 << 30},
		{Index: 2, FreeMemory: 6 << 30},
	}
	got := Select(devices, nil)
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)
}

type staticProber struct {
	devices []Device
}

func (s staticProber) Probe(context.Context) []Device { return s.devices }

func TestChain_FirstNonEmptyWins(t *testing.T) {
	chain := Chain{
		staticProber{},
		staticProber{devices: []Device{{Index: 3, FreeMemory: 1}}},
		staticProber{devices: []Device{{Index: 9, FreeMemory: 2}}},
	}
	devices := chain.Probe(context.Background())
	require.Len(t, devices, 1)
	assert.Equal(t, 3, devices[0].Index)
}

func TestChain_AllEmpty(t *testing.T) {
	chain := Chain{staticProber{}, Noop{}}
	assert.Empty(t, chain.Probe(context.Background()))
}

func TestParseSMIOutput(t *testing.T) {
	output := "0, 8192\n1, 2048\n"
	devices, err := parseSMIOutput(output)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, 0, devices[0].Index)
	assert.Equal(t, uint64(8192)<<20, devices[0].FreeMemory)
	assert.Equal(t, 1, devices[1].Index)
	assert.Equal(t, uint64(2048)<<20, devices[1].FreeMemory)
}

func TestParseSMIOutput_Malformed(t *testing.T) {
	for _, output := range []string{"garbage", "x, 8192", "0, many"} {
		_, err := parseSMIOutput(output)
		assert.Error(t, err, "output=%q", output)
	}
}

func TestParseSMIOutput_BlankLines(t *testing.T) {
	devices, err := parseSMIOutput("\n0, 1024\n\n")
	require.NoError(t, err)
	require.Len(t, devices, 1)
}
