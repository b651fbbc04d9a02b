package particle

import (
	"errors"
	"math/rand/v2"

	"github.com/akshaykokane/pomcp/pomdp"
)

var (
	ErrNilInitFunc = errors.New("Trackerエラー: InitFuncがnilです")
	ErrNilUpdater  = errors.New("Trackerエラー: Updaterがnilです")
	ErrNotReset    = errors.New("Trackerエラー: Resetされていません")
)

// InitFunc materializes the initial belief, typically via
// NewBeliefFromSampler over a model's SampleInitialState.
type InitFunc[S any] func(*rand.Rand) (Belief[S], error)

// Tracker adapts an initial-belief func and an Updater to the pomdp.Tracker
// interface. It is the only stateful type in this package.
//
// TrackerはInitFuncとUpdaterをpomdp.Trackerインターフェースに適合させます。
// このパッケージで唯一、状態を持つ型です。
type Tracker[S any, A, O comparable] struct {
	initFunc InitFunc[S]
	updater  Updater[S, A, O]
	belief   Belief[S]
	ready    bool
}

func NewTracker[S any, A, O comparable](initFunc InitFunc[S], updater Updater[S, A, O]) (*Tracker[S, A, O], error) {
	if initFunc == nil {
		return nil, ErrNilInitFunc
	}
	if updater == nil {
		return nil, ErrNilUpdater
	}
	return &Tracker[S, A, O]{initFunc: initFunc, updater: updater}, nil
}

func (t *Tracker[S, A, O]) Reset(rng *rand.Rand) error {
	belief, err := t.initFunc(rng)
	if err != nil {
		return err
	}
	t.belief = belief
	t.ready = true
	return nil
}

func (t *Tracker[S, A, O]) Update(a A, o O, rng *rand.Rand) error {
	if !t.ready {
		return ErrNotReset
	}
	belief, err := t.updater.Update(t.belief, a, o, rng)
	if err != nil {
		return err
	}
	t.belief = belief
	return nil
}

func (t *Tracker[S, A, O]) Belief() pomdp.Belief[S] {
	return t.belief
}

// ParticleBelief exposes the concrete belief for stats inspection.
func (t *Tracker[S, A, O]) ParticleBelief() Belief[S] {
	return t.belief
}
