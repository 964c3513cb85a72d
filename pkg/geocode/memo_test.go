package geocode

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient records how many times each address reaches the backend.
type countingClient struct {
	calls   map[string]int
	results map[string]*Result
	err     error
}

func newCountingClient() *countingClient {
	return &countingClient{
		calls:   map[string]int{},
		results: map[string]*Result{},
	}
}

func (c *countingClient) Geocode(_ context.Context, address string) (*Result, error) {
	c.calls[address]++
	if c.err != nil {
		return nil, c.err
	}
	if r, ok := c.results[address]; ok {
		return r, nil
	}
	return &Result{Matched: false, Source: "fake"}, nil
}

func TestMemoized_SecondLookupSkipsBackend(t *testing.T) {
	backend := newCountingClient()
	backend.results["College Creek, Ames, Iowa"] = &Result{
		Latitude: 42.0219, Longitude: -93.6557, Matched: true, Source: "fake",
	}

	m := NewMemoized(backend)
	ctx := context.Background()

	first, err := m.Geocode(ctx, "College Creek, Ames, Iowa")
	require.NoError(t, err)
	second, err := m.Geocode(ctx, "College Creek, Ames, Iowa")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls["College Creek, Ames, Iowa"])
	assert.Same(t, first, second) // identical cached result, not a copy
	assert.Equal(t, 1, m.Len())
}

func TestMemoized_KeyIsCaseAndSpaceInsensitive(t *testing.T) {
	backend := newCountingClient()
	m := NewMemoized(backend)
	ctx := context.Background()

	_, err := m.Geocode(ctx, "CollgCr, Ames, Iowa")
	require.NoError(t, err)
	_, err = m.Geocode(ctx, "  collgcr, ames, iowa ")
	require.NoError(t, err)

	total := 0
	for _, n := range backend.calls {
		total += n
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, m.Len())
}

func TestMemoized_NegativeResultsAreCached(t *testing.T) {
	backend := newCountingClient()
	m := NewMemoized(backend)
	ctx := context.Background()

	r1, err := m.Geocode(ctx, "Northpark Villa, Ames, Iowa")
	require.NoError(t, err)
	assert.False(t, r1.Matched)

	r2, err := m.Geocode(ctx, "Northpark Villa, Ames, Iowa")
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, backend.calls["Northpark Villa, Ames, Iowa"])
}

func TestMemoized_ErrorsAreNotCached(t *testing.T) {
	backend := newCountingClient()
	backend.err = eris.New("network down")
	m := NewMemoized(backend)
	ctx := context.Background()

	_, err := m.Geocode(ctx, "Sawyer, Ames, Iowa")
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())

	// Backend recovers; the same input now succeeds and gets cached.
	backend.err = nil
	r, err := m.Geocode(ctx, "Sawyer, Ames, Iowa")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 2, backend.calls["Sawyer, Ames, Iowa"])
	assert.Equal(t, 1, m.Len())
}
