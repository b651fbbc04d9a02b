package pomdp

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/omw/slicesx"
)

var (
	ErrEmptyActions        = errors.New("actionsエラー: 要素数が0です")
	ErrNotUniqueActions    = errors.New("actionsエラー: 重複した要素があります")
	ErrPolicySizeMismatch  = errors.New("Policyエラー: actions と同じ要素数である必要があります")
	ErrPolicyMissingAction = errors.New("Policyエラー: 全ての行動を含む必要があります")
	ErrPolicyBadValue      = errors.New("Policyエラー: 値が不正です（負数/NaN/Inf）")
	ErrPolicyZeroSum       = errors.New("Policyエラー: 合計値が0です")
)

type Policy[A comparable] map[A]float32

func (p Policy[A]) ValidateForActions(actions []A, checkUnique bool) error {
	if checkUnique {
		if !slicesx.IsUnique(actions) {
			return ErrNotUniqueActions
		}
	}

	if len(actions) == 0 {
		return ErrEmptyActions
	}

	if len(p) != len(actions) {
		return fmt.Errorf("%w: policy=%d actions=%d", ErrPolicySizeMismatch, len(p), len(actions))
	}

	var sum float32
	for _, a := range actions {
		v, ok := p[a]
		if !ok {
			return fmt.Errorf("%w: action=%v", ErrPolicyMissingAction, a)
		}

		if v < 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: action=%v value=%v", ErrPolicyBadValue, a, v)
		}
		sum += v
	}

	if sum == 0 {
		return ErrPolicyZeroSum
	}
	return nil
}

type PolicyFunc[S any, A comparable] func(S, []A) Policy[A]

func UniformPolicyFunc[S any, A comparable](state S, actions []A) Policy[A] {
	n := len(actions)
	if n == 0 {
		panic("BUG: len(actions) == 0 である為、UniformPolicyFuncが実行出来ません")
	}

	p := 1.0 / float32(n)
	policy := Policy[A]{}
	for _, a := range actions {
		policy[a] = p
	}
	return policy
}

type SelectFunc[A comparable] func(Policy[A], *rand.Rand) (A, error)

func MaxSelectFunc[A comparable](policy Policy[A], rng *rand.Rand) (A, error) {
	var max float32
	actions := make([]A, 0, len(policy))
	first := true

	for a, v := range policy {
		switch {
		case first:
			max = v
			actions = append(actions, a)
			first = false
		case v > max:
			max = v
			actions = actions[:0]
			actions = append(actions, a)
		case v == max:
			actions = append(actions, a)
		}
	}

	return randx.Choice(actions, rng)
}

func WeightedRandomSelectFunc[A comparable](policy Policy[A], rng *rand.Rand) (A, error) {
	n := len(policy)
	actions := make([]A, 0, n)
	ws := make([]float32, 0, n)
	for a, p := range policy {
		actions = append(actions, a)
		ws = append(ws, p)
	}

	idx, err := randx.IndexByWeights(ws, rng)
	if err != nil {
		var zero A
		return zero, err
	}
	return actions[idx], nil
}

// RandomPlanner recommends actions uniformly at random, ignoring the belief.
// Useful as a baseline and as a rollout default.
//
// RandomPlannerは信念を無視して一様ランダムに行動を推薦します。
// ベースラインやロールアウトのデフォルトとして使います。
type RandomPlanner[S any, A, O comparable] struct {
	Model Model[S, A, O]
}

func (p RandomPlanner[S, A, O]) RecommendAction(b Belief[S], rng *rand.Rand) (A, error) {
	actions := p.Model.Actions()
	if len(actions) == 0 {
		var zero A
		return zero, ErrEmptyActions
	}
	return randx.Choice(actions, rng)
}
