// Package pomcp implements belief-space Monte Carlo tree search.
// Each planning call draws root states from the current belief, walks a tree
// indexed by (action, observation) histories with UCB1 selection, estimates
// frontier values with rollouts, and recommends the most tried root action.
//
// Package pomcp は信念空間のモンテカルロ木探索を実装します。
// プランニングの度に現在の信念から根の状態をサンプリングし、
// (行動, 観測)履歴で索引された木をUCB1で選択しながら降り、
// フロンティアの価値はロールアウトで見積もり、最終的に試行回数が
// 最大の根の行動を推薦します。
package pomcp

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/akshaykokane/pomcp/pomdp"
	"github.com/akshaykokane/pomcp/ucb"
	"github.com/sw965/omw/mathx/randx"
)

var (
	ErrNilModel               = errors.New("Plannerエラー: Modelがnilです")
	ErrNilUCBFunc             = errors.New("Plannerエラー: UCBFuncがnilです")
	ErrNonPositiveSimulations = errors.New("Plannerエラー: Simulationsは1以上である必要があります")
	ErrNonPositiveMaxDepth    = errors.New("Plannerエラー: MaxDepthは1以上である必要があります")
	ErrEmptyActions           = errors.New("Plannerエラー: Modelの行動集合が空です")
)

type node[A, O comparable] struct {
	ucbManager ucb.Manager[[]A, A]
	children   map[A]map[O]*node[A, O]
}

func newNode[A, O comparable](actions []A, f ucb.Func) *node[A, O] {
	m := ucb.Manager[[]A, A]{}
	children := map[A]map[O]*node[A, O]{}
	for _, a := range actions {
		m[a] = &ucb.Calculator{Func: f}
		children[a] = map[O]*node[A, O]{}
	}
	return &node[A, O]{ucbManager: m, children: children}
}

// Planner is a stateless planning configuration; the search tree lives only
// for the duration of one RecommendAction call. It consumes the model purely
// through the generative interface.
type Planner[S any, A, O comparable] struct {
	Model       pomdp.Model[S, A, O]
	UCBFunc     ucb.Func
	Simulations int
	MaxDepth    int
	// RolloutPolicyFunc estimates frontier values; nil means uniform random.
	RolloutPolicyFunc pomdp.PolicyFunc[S, A]
}

func (p *Planner[S, A, O]) Validate() error {
	if p.Model == nil {
		return ErrNilModel
	}
	if p.UCBFunc == nil {
		return ErrNilUCBFunc
	}
	if p.Simulations <= 0 {
		return fmt.Errorf("%w: Simulations=%d", ErrNonPositiveSimulations, p.Simulations)
	}
	if p.MaxDepth <= 0 {
		return fmt.Errorf("%w: MaxDepth=%d", ErrNonPositiveMaxDepth, p.MaxDepth)
	}
	if len(p.Model.Actions()) == 0 {
		return ErrEmptyActions
	}
	return nil
}

// RecommendAction builds a fresh search tree for the given belief and
// returns the most tried root action, breaking ties at random.
func (p *Planner[S, A, O]) RecommendAction(b pomdp.Belief[S], rng *rand.Rand) (A, error) {
	var zero A
	if err := p.Validate(); err != nil {
		return zero, err
	}

	root := newNode[A, O](p.Model.Actions(), p.UCBFunc)
	for i := 0; i < p.Simulations; i++ {
		s, err := b.Sample(rng)
		if err != nil {
			return zero, err
		}

		if p.Model.IsTerminal(s) {
			continue
		}

		if _, err := p.simulate(root, s, 0, rng); err != nil {
			return zero, err
		}
	}

	return randx.Choice(root.ucbManager.MaxTrialKeys(), rng)
}

func (p *Planner[S, A, O]) simulate(nd *node[A, O], s S, depth int, rng *rand.Rand) (float32, error) {
	if p.Model.IsTerminal(s) || depth >= p.MaxDepth {
		return 0.0, nil
	}

	action, err := randx.Choice(nd.ucbManager.MaxKeys(), rng)
	if err != nil {
		return 0.0, err
	}

	next, err := p.Model.SampleNextState(s, action, rng)
	if err != nil {
		return 0.0, err
	}

	obs, err := p.Model.SampleObservation(s, action, next, rng)
	if err != nil {
		return 0.0, err
	}

	reward, err := p.Model.Reward(s, action, next)
	if err != nil {
		return 0.0, err
	}

	var tail float32
	child, ok := nd.children[action][obs]
	if ok {
		tail, err = p.simulate(child, next, depth+1, rng)
	} else {
		// expansion: 未訪問の(行動, 観測)履歴はロールアウトで見積もる
		nd.children[action][obs] = newNode[A, O](p.Model.Actions(), p.UCBFunc)
		tail, err = p.rollout(next, depth+1, rng)
	}
	if err != nil {
		return 0.0, err
	}

	q := reward + p.Model.Discount()*tail

	calc := nd.ucbManager[action]
	calc.TotalValue += q
	calc.Trial += 1
	return q, nil
}

func (p *Planner[S, A, O]) rollout(s S, depth int, rng *rand.Rand) (float32, error) {
	if p.Model.IsTerminal(s) || depth >= p.MaxDepth {
		return 0.0, nil
	}

	action, err := p.selectRolloutAction(s, rng)
	if err != nil {
		return 0.0, err
	}

	next, err := p.Model.SampleNextState(s, action, rng)
	if err != nil {
		return 0.0, err
	}

	reward, err := p.Model.Reward(s, action, next)
	if err != nil {
		return 0.0, err
	}

	tail, err := p.rollout(next, depth+1, rng)
	if err != nil {
		return 0.0, err
	}
	return reward + p.Model.Discount()*tail, nil
}

func (p *Planner[S, A, O]) selectRolloutAction(s S, rng *rand.Rand) (A, error) {
	actions := p.Model.Actions()
	if p.RolloutPolicyFunc == nil {
		return randx.Choice(actions, rng)
	}

	policy := p.RolloutPolicyFunc(s, actions)
	if err := policy.ValidateForActions(actions, false); err != nil {
		var zero A
		return zero, err
	}
	return pomdp.WeightedRandomSelectFunc(policy, rng)
}

var _ pomdp.Planner[struct{}, int, int] = &Planner[struct{}, int, int]{}
