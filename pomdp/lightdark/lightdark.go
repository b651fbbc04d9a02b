// Package lightdark implements the 1-D Light-Dark localization problem.
// An agent moves along a line and must decide when to stop; stopping inside
// the goal region around the origin pays off, stopping anywhere else is
// penalized. Position readings are integers whose noise band widens with the
// distance from the light at +5, so the agent is rewarded for detouring
// toward the light before committing.
//
// Package lightdark は1次元のLight-Dark自己位置推定問題を実装します。
// エージェントは直線上を移動し、いつ停止するかを決めます。原点付近の
// ゴール領域内で停止すれば報酬、それ以外で停止すればペナルティです。
// 観測は整数の位置読み取りで、+5にある光源から離れるほどノイズ帯が
// 広がる為、停止する前に光源側へ回り道する事が有利になります。
package lightdark

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/akshaykokane/pomcp/pomdp"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInvalidAction = errors.New("行動エラー: {Left, Stop, Right} のいずれかである必要があります")
	ErrTerminated    = errors.New("状態エラー: 終端状態を進める事は出来ません")
	ErrInvalidParam  = errors.New("パラメータエラー: 値が不正です")
)

// Action is one of the three fixed moves. The numeric values are the
// movement directions, which keeps the transition arithmetic trivial.
type Action int

const (
	Left  Action = -1
	Stop  Action = 0
	Right Action = 1
)

// Observation is a noisy integer position reading.
// TerminalObservation is emitted once the episode has ended.
type Observation int

const TerminalObservation Observation = 0

// State is a tagged variant: either an active position on the line or the
// terminated marker. Terminated states carry no meaningful position.
//
// Stateはタグ付きの値です。直線上の位置か、終端マーカーのいずれかを
// 表します。終端状態のPosに意味はありません。
type State struct {
	Pos        float64
	Terminated bool
}

const (
	// LightPos is the position of best visibility.
	LightPos = 5.0

	// GoalRadius bounds the region where stopping is rewarded: |pos| < 1.
	GoalRadius = 1.0

	// radiusEps guards the ceil against floating point rounding when the
	// distance to the light is an exact multiple of sqrt(2).
	radiusEps = 0.01
)

// Params are the problem constants. Immutable once handed to NewModel.
type Params struct {
	Discount        float32
	CorrectReward   float32
	IncorrectReward float32
	StepSize        float64
	// MovementCost is a non-negative per-step cost; it enters the reward
	// as its negation.
	MovementCost float32
	InitMean     float64
	InitStd      float64
}

// NewParams returns the canonical problem constants.
//
// NewParamsは標準的な問題定数を返します。
func NewParams() Params {
	return Params{
		Discount:        0.9,
		CorrectReward:   10.0,
		IncorrectReward: -10.0,
		StepSize:        1.0,
		MovementCost:    0.0,
		InitMean:        2.0,
		InitStd:         3.0,
	}
}

func (p Params) Validate() error {
	if p.Discount <= 0.0 || p.Discount >= 1.0 {
		return fmt.Errorf("%w: Discountは(0, 1)の範囲である必要があります: %v", ErrInvalidParam, p.Discount)
	}
	if p.StepSize <= 0.0 {
		return fmt.Errorf("%w: StepSizeは正である必要があります: %v", ErrInvalidParam, p.StepSize)
	}
	if p.MovementCost < 0.0 {
		return fmt.Errorf("%w: MovementCostは0以上である必要があります: %v", ErrInvalidParam, p.MovementCost)
	}
	if p.InitStd <= 0.0 {
		return fmt.Errorf("%w: InitStdは正である必要があります: %v", ErrInvalidParam, p.InitStd)
	}
	return nil
}

// Model is the generative Light-Dark problem. It is a stateless value; all
// sampling methods take the state explicitly and draw from the supplied RNG.
type Model struct {
	params Params
}

func NewModel(params Params) (Model, error) {
	if err := params.Validate(); err != nil {
		return Model{}, err
	}
	return Model{params: params}, nil
}

// NewDefaultModel builds the model with NewParams. It cannot fail.
func NewDefaultModel() Model {
	model, err := NewModel(NewParams())
	if err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
	return model
}

func (m Model) Params() Params {
	return m.params
}

func (m Model) Actions() []Action {
	return []Action{Left, Stop, Right}
}

func (m Model) Discount() float32 {
	return m.params.Discount
}

func (m Model) IsTerminal(s State) bool {
	return s.Terminated
}

// InitialBelief is the distribution SampleInitialState draws from.
func (m Model) InitialBelief() distuv.Normal {
	return distuv.Normal{Mu: m.params.InitMean, Sigma: m.params.InitStd}
}

func (m Model) SampleInitialState(rng *rand.Rand) (State, error) {
	pos := m.params.InitMean + rng.NormFloat64()*m.params.InitStd
	return State{Pos: pos}, nil
}

func (m Model) SampleNextState(s State, a Action, rng *rand.Rand) (State, error) {
	if s.Terminated {
		return State{}, ErrTerminated
	}

	switch a {
	case Stop:
		return State{Terminated: true}, nil
	case Left, Right:
		return State{Pos: s.Pos + m.params.StepSize*float64(a)}, nil
	default:
		return State{}, fmt.Errorf("%w: %d", ErrInvalidAction, a)
	}
}

// noiseRadius is the half-width of the integer observation band around the
// successor position. It depends only on the distance to the light.
func noiseRadius(pos float64) int {
	return int(math.Ceil(math.Abs(pos-LightPos)/math.Sqrt2 + radiusEps))
}

func (m Model) SampleObservation(s State, a Action, next State, rng *rand.Rand) (Observation, error) {
	if next.Terminated {
		return TerminalObservation, nil
	}

	radius := noiseRadius(next.Pos)
	noise := rng.IntN(2*radius+1) - radius
	return Observation(int(math.Round(next.Pos)) + noise), nil
}

// ObservationLikelihood is uniform over the same band SampleObservation
// draws from, and a point mass at TerminalObservation for terminal
// successors. Both sides share noiseRadius, so support and normalization
// stay consistent.
//
// ObservationLikelihoodはSampleObservationと同じ帯上の一様分布です。
// 終端状態に対してはTerminalObservationへの点質量になります。
func (m Model) ObservationLikelihood(a Action, next State, o Observation) (float64, error) {
	if next.Terminated {
		if o == TerminalObservation {
			return 1.0, nil
		}
		return 0.0, nil
	}

	radius := noiseRadius(next.Pos)
	center := int(math.Round(next.Pos))
	if d := int(o) - center; d < -radius || d > radius {
		return 0.0, nil
	}
	return 1.0 / float64(2*radius+1), nil
}

func (m Model) Reward(s State, a Action, next State) (float32, error) {
	switch a {
	case Stop:
		if math.Abs(s.Pos) < GoalRadius {
			return m.params.CorrectReward, nil
		}
		return m.params.IncorrectReward, nil
	case Left, Right:
		return -m.params.MovementCost, nil
	default:
		return 0.0, fmt.Errorf("%w: %d", ErrInvalidAction, a)
	}
}

var _ pomdp.LikelihoodModel[State, Action, Observation] = Model{}
