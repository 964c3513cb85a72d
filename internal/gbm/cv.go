package gbm

import (
	"context"
	"math/rand"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// CrossValidate runs k-fold cross-validation and returns one RMSE per fold.
// Fold assignment is a seeded shuffle striped across folds, so the same seed
// always yields the same folds. Folds train concurrently, each with its own
// derived seed, so the per-fold results are deterministic regardless of
// scheduling.
func CrossValidate(ctx context.Context, x *mat.Dense, y []float64, p Params, folds int) ([]float64, error) {
	if folds < 2 {
		return nil, eris.Errorf("gbm: cross-validation needs >= 2 folds, got %d", folds)
	}
	n, _ := x.Dims()
	if n < folds {
		return nil, eris.Errorf("gbm: %d rows is fewer than %d folds", n, folds)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	perm := rand.New(rand.NewSource(p.Seed)).Perm(n)
	assignment := make([][]int, folds)
	for i, row := range perm {
		f := i % folds
		assignment[f] = append(assignment[f], row)
	}

	results := make([]float64, folds)
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(folds)

	for f := 0; f < folds; f++ {
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			holdout := assignment[f]
			train := make([]int, 0, n-len(holdout))
			for g := 0; g < folds; g++ {
				if g != f {
					train = append(train, assignment[g]...)
				}
			}

			xt, yt := subsetRows(x, y, train)
			xh, yh := subsetRows(x, y, holdout)

			pf := p
			pf.Seed = p.Seed + int64(f) + 1
			model, err := Train(xt, yt, pf)
			if err != nil {
				return eris.Wrapf(err, "gbm: fold %d", f)
			}

			results[f] = RMSE(model.Predict(xh), yh)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// subsetRows copies the given rows of x and y into fresh storage.
func subsetRows(x *mat.Dense, y []float64, rows []int) (*mat.Dense, []float64) {
	_, c := x.Dims()
	xs := mat.NewDense(len(rows), c, nil)
	ys := make([]float64, len(rows))
	for i, r := range rows {
		for j := 0; j < c; j++ {
			xs.Set(i, j, x.At(r, j))
		}
		ys[i] = y[r]
	}
	return xs, ys
}
