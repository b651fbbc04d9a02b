package pomdp

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/sw965/omw/parallel"
)

var (
	ErrNilModel            = errors.New("Engineエラー: Modelがnilです")
	ErrNilPlanner          = errors.New("Engineエラー: Plannerがnilです")
	ErrNilTracker          = errors.New("Engineエラー: Trackerがnilです")
	ErrNonPositiveMaxSteps = errors.New("Engineエラー: MaxStepsは1以上である必要があります")
)

// Step is one simulated time step of an episode.
//
// Stepはエピソードの1ステップ分の記録です。
type Step[S any, A, O comparable] struct {
	State       S
	Action      A
	Reward      float32
	NextState   S
	Observation O
}

type Record[S any, A, O comparable] struct {
	Steps      []Step[S, A, O]
	FinalState S
}

// DiscountedReturn folds the step rewards into a single discounted sum.
func (r Record[S, A, O]) DiscountedReturn(gamma float32) float32 {
	g := float32(0.0)
	for i := len(r.Steps) - 1; i >= 0; i-- {
		g = r.Steps[i].Reward + gamma*g
	}
	return g
}

// Engine drives simulate-and-update loops against one model.
// The model is sampled for ground truth; the planner only ever sees the
// tracker's belief.
//
// Engineは1つのモデルに対してシミュレーションと信念更新のループを
// 実行します。真の状態はモデルからサンプリングされ、プランナーには
// トラッカーの信念だけが渡されます。
type Engine[S any, A, O comparable] struct {
	Model    Model[S, A, O]
	MaxSteps int
}

func (e Engine[S, A, O]) Validate() error {
	if e.Model == nil {
		return ErrNilModel
	}
	if e.MaxSteps <= 0 {
		return fmt.Errorf("%w: MaxSteps=%d", ErrNonPositiveMaxSteps, e.MaxSteps)
	}
	return nil
}

// Episode lazily yields one Step per simulated time step, stopping when the
// successor state is terminal or the step cap is reached. A model, planner or
// tracker error is yielded once and ends the sequence. The episode never
// advances a terminal state.
//
// Episodeは1ステップずつ遅延評価でStepを生成します。後続状態が終端に
// なるか、ステップ上限に達した時点で終了します。
func (e Engine[S, A, O]) Episode(planner Planner[S, A, O], tracker Tracker[S, A, O], rng *rand.Rand) iter.Seq2[Step[S, A, O], error] {
	return func(yield func(Step[S, A, O], error) bool) {
		var zero Step[S, A, O]

		if err := e.Validate(); err != nil {
			yield(zero, err)
			return
		}
		if planner == nil {
			yield(zero, ErrNilPlanner)
			return
		}
		if tracker == nil {
			yield(zero, ErrNilTracker)
			return
		}

		state, err := e.Model.SampleInitialState(rng)
		if err != nil {
			yield(zero, err)
			return
		}

		if err := tracker.Reset(rng); err != nil {
			yield(zero, err)
			return
		}

		for i := 0; i < e.MaxSteps; i++ {
			if e.Model.IsTerminal(state) {
				return
			}

			action, err := planner.RecommendAction(tracker.Belief(), rng)
			if err != nil {
				yield(zero, err)
				return
			}

			next, err := e.Model.SampleNextState(state, action, rng)
			if err != nil {
				yield(zero, err)
				return
			}

			obs, err := e.Model.SampleObservation(state, action, next, rng)
			if err != nil {
				yield(zero, err)
				return
			}

			reward, err := e.Model.Reward(state, action, next)
			if err != nil {
				yield(zero, err)
				return
			}

			step := Step[S, A, O]{
				State:       state,
				Action:      action,
				Reward:      reward,
				NextState:   next,
				Observation: obs,
			}

			if !yield(step, nil) {
				return
			}

			if e.Model.IsTerminal(next) {
				return
			}

			if err := tracker.Update(action, obs, rng); err != nil {
				yield(zero, err)
				return
			}
			state = next
		}
	}
}

// RunEpisode collects a full episode into a Record.
func (e Engine[S, A, O]) RunEpisode(planner Planner[S, A, O], tracker Tracker[S, A, O], rng *rand.Rand) (Record[S, A, O], error) {
	steps := make([]Step[S, A, O], 0, e.MaxSteps)
	for step, err := range e.Episode(planner, tracker, rng) {
		if err != nil {
			return Record[S, A, O]{}, err
		}
		steps = append(steps, step)
	}

	record := Record[S, A, O]{Steps: steps}
	if n := len(steps); n > 0 {
		record.FinalState = steps[n-1].NextState
	}
	return record, nil
}

// RunEpisodes runs n episodes with one worker per RNG, constructing a fresh
// planner and tracker per episode. Trackers are stateful, so sharing one
// across episodes would leak belief between runs.
//
// RunEpisodesはRNG1つにつき1ワーカーでn回のエピソードを実行します。
// トラッカーは状態を持つ為、エピソード毎に新しく生成します。
func (e Engine[S, A, O]) RunEpisodes(n int, newPlanner func() Planner[S, A, O], newTracker func() Tracker[S, A, O], rngs []*rand.Rand) ([]Record[S, A, O], error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if newPlanner == nil {
		return nil, ErrNilPlanner
	}
	if newTracker == nil {
		return nil, ErrNilTracker
	}

	p := len(rngs)
	records := make([]Record[S, A, O], n)

	err := parallel.For(n, p, func(workerId, idx int) error {
		rng := rngs[workerId]
		record, err := e.RunEpisode(newPlanner(), newTracker(), rng)
		if err != nil {
			return err
		}
		records[idx] = record
		return nil
	})
	return records, err
}
