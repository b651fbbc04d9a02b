// Package particle represents beliefs as weighted particle sets and updates
// them after each (action, observation) pair, either by rejection sampling
// against the generative model or by likelihood reweighting.
//
// Package particle は信念を重み付き粒子集合として表現し、(行動, 観測)の
// 組が得られる度に、生成モデルに対する棄却サンプリングまたは尤度による
// 重み付けで更新します。
package particle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyBelief        = errors.New("Beliefエラー: 粒子数が0です")
	ErrWeightSizeMismatch = errors.New("Beliefエラー: 粒子と重みの要素数が一致しません")
	ErrBadWeight          = errors.New("Beliefエラー: 重みが不正です（負数/NaN/Inf）")
	ErrZeroWeightSum      = errors.New("Beliefエラー: 重みの合計が0です")
	ErrParticleDepletion  = errors.New("粒子枯渇エラー: 観測と整合する粒子が残っていません")
)

// Belief is an immutable weighted particle set. Weights are normalized at
// construction time and always sum to 1.
//
// Beliefは不変の重み付き粒子集合です。重みは生成時に正規化され、
// 常に合計1になります。
type Belief[S any] struct {
	states  []S
	weights []float64
}

func NewBelief[S any](states []S, weights []float64) (Belief[S], error) {
	n := len(states)
	if n == 0 {
		return Belief[S]{}, ErrEmptyBelief
	}
	if len(weights) != n {
		return Belief[S]{}, fmt.Errorf("%w: states=%d weights=%d", ErrWeightSizeMismatch, n, len(weights))
	}

	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return Belief[S]{}, fmt.Errorf("%w: idx=%d weight=%v", ErrBadWeight, i, w)
		}
		sum += w
	}
	if sum == 0 {
		return Belief[S]{}, ErrZeroWeightSum
	}

	normalized := make([]float64, n)
	for i, w := range weights {
		normalized[i] = w / sum
	}
	return Belief[S]{states: slices.Clone(states), weights: normalized}, nil
}

func NewUniformBelief[S any](states []S) (Belief[S], error) {
	n := len(states)
	if n == 0 {
		return Belief[S]{}, ErrEmptyBelief
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return NewBelief(states, weights)
}

// NewBeliefFromSampler materializes n particles from a sampling func,
// typically a model's SampleInitialState.
func NewBeliefFromSampler[S any](n int, sample func(*rand.Rand) (S, error), rng *rand.Rand) (Belief[S], error) {
	if n <= 0 {
		return Belief[S]{}, ErrEmptyBelief
	}
	states := make([]S, n)
	for i := range states {
		s, err := sample(rng)
		if err != nil {
			return Belief[S]{}, err
		}
		states[i] = s
	}
	return NewUniformBelief(states)
}

func (b Belief[S]) Len() int {
	return len(b.states)
}

func (b Belief[S]) States() []S {
	return slices.Clone(b.states)
}

func (b Belief[S]) Weights() []float64 {
	return slices.Clone(b.weights)
}

// Sample draws one particle proportionally to its weight.
func (b Belief[S]) Sample(rng *rand.Rand) (S, error) {
	if len(b.states) == 0 {
		var zero S
		return zero, ErrEmptyBelief
	}

	u := rng.Float64()
	acc := 0.0
	for i, w := range b.weights {
		acc += w
		if u < acc {
			return b.states[i], nil
		}
	}
	// 丸め誤差でaccが1に届かなかった場合
	return b.states[len(b.states)-1], nil
}

// Resample draws n particles by systematic (low-variance) resampling and
// returns them with uniform weights.
//
// Resampleは層化系統サンプリングでn個の粒子を引き直し、一様重みで
// 返します。
func (b Belief[S]) Resample(n int, rng *rand.Rand) (Belief[S], error) {
	if len(b.states) == 0 {
		return Belief[S]{}, ErrEmptyBelief
	}
	if n <= 0 {
		return Belief[S]{}, ErrEmptyBelief
	}

	states := make([]S, 0, n)
	step := 1.0 / float64(n)
	u := rng.Float64() * step
	acc := b.weights[0]
	idx := 0

	for i := 0; i < n; i++ {
		target := u + float64(i)*step
		for target > acc && idx < len(b.states)-1 {
			idx++
			acc += b.weights[idx]
		}
		states = append(states, b.states[idx])
	}
	return NewUniformBelief(states)
}

// Mean is the weighted mean of project over the particles.
func (b Belief[S]) Mean(project func(S) float64) float64 {
	xs := make([]float64, len(b.states))
	for i, s := range b.states {
		xs[i] = project(s)
	}
	return stat.Mean(xs, b.weights)
}

// StdDev is the weighted standard deviation of project over the particles.
// gonum's weighted variance divides by (sum of weights - 1), so the
// normalized weights are rescaled to sum to the particle count first.
func (b Belief[S]) StdDev(project func(S) float64) float64 {
	n := len(b.states)
	xs := make([]float64, n)
	ws := make([]float64, n)
	for i, s := range b.states {
		xs[i] = project(s)
		ws[i] = b.weights[i] * float64(n)
	}
	return stat.StdDev(xs, ws)
}
