package main

import (
	"log"
	"math/rand/v2"

	"github.com/akshaykokane/pomcp/particle"
	"github.com/akshaykokane/pomcp/pomcp"
	"github.com/akshaykokane/pomcp/pomdp"
	"github.com/akshaykokane/pomcp/pomdp/lightdark"
	"github.com/akshaykokane/pomcp/ucb"
	"github.com/sw965/omw/mathx/randx"
)

const (
	simulations  = 4096
	maxDepth     = 32
	numParticles = 2048
	maxSteps     = 64
	explorationC = 10.0
)

func main() {
	rng := randx.NewPCG()
	model := lightdark.NewDefaultModel()

	planner := &pomcp.Planner[lightdark.State, lightdark.Action, lightdark.Observation]{
		Model:       model,
		UCBFunc:     ucb.NewUCB1Func(explorationC),
		Simulations: simulations,
		MaxDepth:    maxDepth,
	}

	updater := particle.ReweightUpdater[lightdark.State, lightdark.Action, lightdark.Observation]{
		Model:        model,
		NumParticles: numParticles,
	}

	initFunc := func(rng *rand.Rand) (particle.Belief[lightdark.State], error) {
		return particle.NewBeliefFromSampler(numParticles, model.SampleInitialState, rng)
	}

	tracker, err := particle.NewTracker[lightdark.State, lightdark.Action, lightdark.Observation](initFunc, updater)
	if err != nil {
		log.Fatalf("トラッカーの生成失敗: %v", err)
	}

	engine := pomdp.Engine[lightdark.State, lightdark.Action, lightdark.Observation]{
		Model:    model,
		MaxSteps: maxSteps,
	}

	log.Println("Light-Darkエピソードを開始します...")

	record := pomdp.Record[lightdark.State, lightdark.Action, lightdark.Observation]{}
	for step, err := range engine.Episode(planner, tracker, rng) {
		if err != nil {
			log.Fatalf("エピソード失敗: %v", err)
		}
		record.Steps = append(record.Steps, step)
		log.Printf(
			"step=%d pos=%.3f action=%d obs=%d reward=%.1f 信念平均=%.3f",
			len(record.Steps), step.State.Pos, step.Action, step.Observation, step.Reward,
			tracker.ParticleBelief().Mean(func(s lightdark.State) float64 { return s.Pos }),
		)

		if step.NextState.Terminated {
			log.Printf("停止しました: pos=%.3f reward=%.1f", step.State.Pos, step.Reward)
		}
	}

	log.Printf("エピソード終了: 割引収益=%.3f", record.DiscountedReturn(model.Discount()))
}
