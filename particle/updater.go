package particle

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/akshaykokane/pomcp/pomdp"
)

var (
	ErrNilModel                = errors.New("Updaterエラー: Modelがnilです")
	ErrNonPositiveNumParticles = errors.New("Updaterエラー: NumParticlesは1以上である必要があります")
	ErrNonPositiveTriesPerDraw = errors.New("Updaterエラー: TriesPerParticleは1以上である必要があります")
)

// Updater advances a belief after action a was taken and o was observed.
type Updater[S any, A, O comparable] interface {
	Update(b Belief[S], a A, o O, rng *rand.Rand) (Belief[S], error)
}

// RejectionUpdater propagates particles through the model and keeps the ones
// whose sampled observation matches the real one. It only needs the
// generative interface; no observation likelihood is required.
//
// RejectionUpdaterは粒子をモデルで遷移させ、サンプリングした観測が
// 実際の観測と一致した粒子だけを残します。生成的インターフェースのみを
// 必要とし、観測尤度は不要です。
type RejectionUpdater[S any, A, O comparable] struct {
	Model        pomdp.Model[S, A, O]
	NumParticles int
	// TriesPerParticle bounds the total sampling budget at
	// NumParticles*TriesPerParticle before the update is declared depleted.
	TriesPerParticle int
}

func (u RejectionUpdater[S, A, O]) Validate() error {
	if u.Model == nil {
		return ErrNilModel
	}
	if u.NumParticles <= 0 {
		return fmt.Errorf("%w: NumParticles=%d", ErrNonPositiveNumParticles, u.NumParticles)
	}
	if u.TriesPerParticle <= 0 {
		return fmt.Errorf("%w: TriesPerParticle=%d", ErrNonPositiveTriesPerDraw, u.TriesPerParticle)
	}
	return nil
}

func (u RejectionUpdater[S, A, O]) Update(b Belief[S], a A, o O, rng *rand.Rand) (Belief[S], error) {
	if err := u.Validate(); err != nil {
		return Belief[S]{}, err
	}

	accepted := make([]S, 0, u.NumParticles)
	budget := u.NumParticles * u.TriesPerParticle

	for try := 0; try < budget && len(accepted) < u.NumParticles; try++ {
		s, err := b.Sample(rng)
		if err != nil {
			return Belief[S]{}, err
		}

		next, err := u.Model.SampleNextState(s, a, rng)
		if err != nil {
			return Belief[S]{}, err
		}

		simulated, err := u.Model.SampleObservation(s, a, next, rng)
		if err != nil {
			return Belief[S]{}, err
		}

		if simulated == o {
			accepted = append(accepted, next)
		}
	}

	if len(accepted) == 0 {
		return Belief[S]{}, fmt.Errorf("%w: 観測=%v", ErrParticleDepletion, o)
	}
	return NewUniformBelief(accepted)
}

// ReweightUpdater is a bootstrap filter: resample, propagate, then weight
// each particle by the model's observation likelihood. The likelihood must
// agree with SampleObservation's distribution or the belief silently drifts;
// only a fully vanished weight sum is detectable, and surfaces as depletion.
//
// ReweightUpdaterはブートストラップフィルタです。リサンプリング、遷移、
// 観測尤度による重み付けの順に処理します。
type ReweightUpdater[S any, A, O comparable] struct {
	Model        pomdp.LikelihoodModel[S, A, O]
	NumParticles int
}

func (u ReweightUpdater[S, A, O]) Validate() error {
	if u.Model == nil {
		return ErrNilModel
	}
	if u.NumParticles <= 0 {
		return fmt.Errorf("%w: NumParticles=%d", ErrNonPositiveNumParticles, u.NumParticles)
	}
	return nil
}

func (u ReweightUpdater[S, A, O]) Update(b Belief[S], a A, o O, rng *rand.Rand) (Belief[S], error) {
	if err := u.Validate(); err != nil {
		return Belief[S]{}, err
	}

	resampled, err := b.Resample(u.NumParticles, rng)
	if err != nil {
		return Belief[S]{}, err
	}

	nexts := make([]S, u.NumParticles)
	weights := make([]float64, u.NumParticles)
	sum := 0.0

	for i, s := range resampled.states {
		next, err := u.Model.SampleNextState(s, a, rng)
		if err != nil {
			return Belief[S]{}, err
		}

		w, err := u.Model.ObservationLikelihood(a, next, o)
		if err != nil {
			return Belief[S]{}, err
		}

		nexts[i] = next
		weights[i] = w
		sum += w
	}

	if sum == 0 {
		return Belief[S]{}, fmt.Errorf("%w: 観測=%v", ErrParticleDepletion, o)
	}
	return NewBelief(nexts, weights)
}
