// Package pomdp defines the generative interface between a partially
// observable decision problem and the solvers that consume it.
// A model is a stateless value: every sampling operation takes the current
// state and an explicit random source, and returns fresh values.
//
// Package pomdp は部分観測の意思決定問題とそれを利用するソルバーとの間の
// 生成的インターフェースを定義します。モデルは状態を持たない値であり、
// 全てのサンプリング操作は現在の状態と明示的な乱数源を受け取り、
// 新しい値を返します。
package pomdp

import (
	"math/rand/v2"
)

// Model is the generative contract a problem must satisfy.
// Implementations must not hold mutable internal state and must never
// touch ambient randomness; rng is the only source of entropy.
//
// Modelは問題が満たすべき生成的契約です。
// 実装は内部に可変状態を持ってはならず、グローバルな乱数を
// 使用してはなりません。エントロピー源はrngのみです。
type Model[S any, A, O comparable] interface {
	// SampleInitialState draws a state from the initial belief distribution.
	SampleInitialState(rng *rand.Rand) (S, error)

	// SampleNextState draws a successor state for (s, a).
	SampleNextState(s S, a A, rng *rand.Rand) (S, error)

	// SampleObservation draws an observation emitted on the (s, a, next) step.
	SampleObservation(s S, a A, next S, rng *rand.Rand) (O, error)

	// Reward returns the immediate reward of the (s, a, next) step.
	Reward(s S, a A, next S) (float32, error)

	// IsTerminal reports whether s ends the episode.
	IsTerminal(s S) bool

	// Discount is constant over the model's lifetime and lies in (0, 1).
	Discount() float32

	// Actions returns the fixed action set in a deterministic order.
	Actions() []A
}

// LikelihoodModel is the optional capability required by belief trackers
// that reweight particles instead of rejection sampling. The returned
// density must agree with SampleObservation's distribution: same support,
// same normalization. A mismatch biases beliefs without any error.
//
// LikelihoodModelは、棄却サンプリングではなく重み付けで粒子を更新する
// 信念トラッカーが必要とする追加の能力です。返される密度は
// SampleObservationの分布と一致していなければなりません。
type LikelihoodModel[S any, A, O comparable] interface {
	Model[S, A, O]
	ObservationLikelihood(a A, next S, o O) (float64, error)
}

// Belief is the only view a planner gets of the current state distribution.
type Belief[S any] interface {
	Sample(rng *rand.Rand) (S, error)
}

// Planner recommends an action for the current belief.
type Planner[S any, A, O comparable] interface {
	RecommendAction(b Belief[S], rng *rand.Rand) (A, error)
}

// Tracker maintains a belief across (action, observation) pairs.
//
// Trackerは(行動, 観測)の組に応じて信念を維持します。
type Tracker[S any, A, O comparable] interface {
	// Reset materializes the initial belief.
	Reset(rng *rand.Rand) error

	// Update advances the belief after a was taken and o was observed.
	Update(a A, o O, rng *rand.Rand) error

	// Belief returns the current belief.
	Belief() Belief[S]
}
