// Package gbm trains gradient-boosted regression tree ensembles with
// least-squares boosting, row subsampling, and early stopping.
package gbm

import (
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Params are the fixed hyperparameters for one training run.
type Params struct {
	LearningRate float64
	MaxDepth     int
	MinLeaf      int
	Subsample    float64 // fraction of rows drawn per round, (0,1]
	Rounds       int     // maximum boosting rounds
	Patience     int     // early-stopping rounds without improvement; 0 disables
	Seed         int64
}

// DefaultParams returns the hyperparameters used by the report.
func DefaultParams() Params {
	return Params{
		LearningRate: 0.1,
		MaxDepth:     4,
		MinLeaf:      5,
		Subsample:    0.8,
		Rounds:       300,
		Patience:     25,
		Seed:         42,
	}
}

func (p Params) validate() error {
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return eris.Errorf("gbm: learning rate %v out of (0,1]", p.LearningRate)
	}
	if p.MaxDepth < 1 {
		return eris.Errorf("gbm: max depth %d < 1", p.MaxDepth)
	}
	if p.MinLeaf < 1 {
		return eris.Errorf("gbm: min leaf %d < 1", p.MinLeaf)
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return eris.Errorf("gbm: subsample %v out of (0,1]", p.Subsample)
	}
	if p.Rounds < 1 {
		return eris.Errorf("gbm: rounds %d < 1", p.Rounds)
	}
	return nil
}

// Model is a trained ensemble.
type Model struct {
	base         float64
	learningRate float64
	trees        []*node
}

// Rounds reports the number of boosting rounds the ensemble kept. With early
// stopping this is the best validation round, not the configured maximum.
func (m *Model) Rounds() int { return len(m.trees) }

// Predict scores every row of x.
func (m *Model) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.predictRow(x, i)
	}
	return out
}

func (m *Model) predictRow(x *mat.Dense, i int) float64 {
	pred := m.base
	for _, t := range m.trees {
		pred += m.learningRate * t.predictRow(x, i)
	}
	return pred
}

// Train fits an ensemble without a validation set; all configured rounds are
// used. Same inputs and seed always produce the same model.
func Train(x *mat.Dense, y []float64, p Params) (*Model, error) {
	model, _, err := train(x, y, nil, nil, p)
	return model, err
}

// TrainValidate fits an ensemble while tracking RMSE on a validation set
// after every round. Training stops once p.Patience rounds pass without the
// validation error improving, and the ensemble is truncated at the best
// round. The returned curve holds one validation RMSE per completed round.
func TrainValidate(x *mat.Dense, y []float64, xv *mat.Dense, yv []float64, p Params) (*Model, []float64, error) {
	if xv == nil || len(yv) == 0 {
		return nil, nil, eris.New("gbm: validation set required")
	}
	return train(x, y, xv, yv, p)
}

func train(x *mat.Dense, y []float64, xv *mat.Dense, yv []float64, p Params) (*Model, []float64, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	n, _ := x.Dims()
	if n == 0 || n != len(y) {
		return nil, nil, eris.Errorf("gbm: %d rows vs %d targets", n, len(y))
	}

	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	model := &Model{base: base, learningRate: p.LearningRate}
	rng := rand.New(rand.NewSource(p.Seed))

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}

	var valPred []float64
	var curve []float64
	if xv != nil {
		nv, _ := xv.Dims()
		valPred = make([]float64, nv)
		for i := range valPred {
			valPred[i] = base
		}
	}

	residuals := make([]float64, n)
	sampleSize := int(float64(n) * p.Subsample)
	if sampleSize < 1 {
		sampleSize = 1
	}

	bestRMSE := 0.0
	bestRound := -1

	for round := 0; round < p.Rounds; round++ {
		for i := range y {
			residuals[i] = y[i] - pred[i]
		}

		sample := rng.Perm(n)[:sampleSize]
		tree := buildTree(x, residuals, sample, 0, p.MaxDepth, p.MinLeaf)
		model.trees = append(model.trees, tree)

		for i := 0; i < n; i++ {
			pred[i] += p.LearningRate * tree.predictRow(x, i)
		}

		if xv == nil {
			continue
		}

		for i := range valPred {
			valPred[i] += p.LearningRate * tree.predictRow(xv, i)
		}
		rmse := RMSE(valPred, yv)
		curve = append(curve, rmse)

		if bestRound < 0 || rmse < bestRMSE {
			bestRMSE = rmse
			bestRound = round
		} else if p.Patience > 0 && round-bestRound >= p.Patience {
			zap.L().Debug("early stopping",
				zap.Int("round", round),
				zap.Int("best_round", bestRound),
				zap.Float64("best_rmse", bestRMSE),
			)
			break
		}
	}

	if xv != nil && bestRound >= 0 {
		model.trees = model.trees[:bestRound+1]
	}
	return model, curve, nil
}
