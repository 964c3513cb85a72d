package gbm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossValidate_OneRMSEPerFold(t *testing.T) {
	x, y := syntheticData(200, 5)
	p := DefaultParams()
	p.Rounds = 30

	for _, folds := range []int{2, 5, 10} {
		results, err := CrossValidate(context.Background(), x, y, p, folds)
		require.NoError(t, err)
		assert.Len(t, results, folds)
		for f, rmse := range results {
			assert.Greater(t, rmse, 0.0, "fold %d", f)
		}
	}
}

func TestCrossValidate_Deterministic(t *testing.T) {
	x, y := syntheticData(150, 5)
	p := DefaultParams()
	p.Rounds = 20

	a, err := CrossValidate(context.Background(), x, y, p, 5)
	require.NoError(t, err)
	b, err := CrossValidate(context.Background(), x, y, p, 5)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same seed and data produce identical folds and errors")
}

func TestCrossValidate_Errors(t *testing.T) {
	x, y := syntheticData(10, 1)
	p := DefaultParams()

	_, err := CrossValidate(context.Background(), x, y, p, 1)
	assert.Error(t, err, "too few folds")

	_, err = CrossValidate(context.Background(), x, y, p, 11)
	assert.Error(t, err, "more folds than rows")
}

func TestCrossValidate_Cancelled(t *testing.T) {
	x, y := syntheticData(200, 5)
	p := DefaultParams()
	p.Rounds = 50

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CrossValidate(ctx, x, y, p, 4)
	assert.Error(t, err)
}
