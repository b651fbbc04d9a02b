package pomcp_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/akshaykokane/pomcp/particle"
	"github.com/akshaykokane/pomcp/pomcp"
	"github.com/akshaykokane/pomcp/pomdp"
	ld "github.com/akshaykokane/pomcp/pomdp/lightdark"
	"github.com/akshaykokane/pomcp/ucb"
	"github.com/sw965/omw/mathx/randx"
)

func newTestPlanner(model ld.Model, sims int) *pomcp.Planner[ld.State, ld.Action, ld.Observation] {
	return &pomcp.Planner[ld.State, ld.Action, ld.Observation]{
		Model:       model,
		UCBFunc:     ucb.NewUCB1Func(10.0),
		Simulations: sims,
		MaxDepth:    20,
	}
}

func pointMassBelief(t *testing.T, pos float64) particle.Belief[ld.State] {
	t.Helper()
	b, err := particle.NewUniformBelief([]ld.State{{Pos: pos}})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestPlannerValidate(t *testing.T) {
	model := ld.NewDefaultModel()

	tests := []struct {
		name    string
		planner *pomcp.Planner[ld.State, ld.Action, ld.Observation]
		wantErr error
	}{
		{
			name:    "正常",
			planner: newTestPlanner(model, 128),
		},
		{
			name: "異常_Modelがnil",
			planner: &pomcp.Planner[ld.State, ld.Action, ld.Observation]{
				UCBFunc:     ucb.NewUCB1Func(1.0),
				Simulations: 128,
				MaxDepth:    20,
			},
			wantErr: pomcp.ErrNilModel,
		},
		{
			name: "異常_UCBFuncがnil",
			planner: &pomcp.Planner[ld.State, ld.Action, ld.Observation]{
				Model:       model,
				Simulations: 128,
				MaxDepth:    20,
			},
			wantErr: pomcp.ErrNilUCBFunc,
		},
		{
			name: "異常_Simulationsが0",
			planner: &pomcp.Planner[ld.State, ld.Action, ld.Observation]{
				Model:    model,
				UCBFunc:  ucb.NewUCB1Func(1.0),
				MaxDepth: 20,
			},
			wantErr: pomcp.ErrNonPositiveSimulations,
		},
		{
			name: "異常_MaxDepthが0",
			planner: &pomcp.Planner[ld.State, ld.Action, ld.Observation]{
				Model:       model,
				UCBFunc:     ucb.NewUCB1Func(1.0),
				Simulations: 128,
			},
			wantErr: pomcp.ErrNonPositiveMaxDepth,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.planner.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("想定外のエラー: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("want: %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

// 位置が確実に分かっていてゴール圏内なら、停止が最善
func TestRecommendActionStopInsideGoal(t *testing.T) {
	model := ld.NewDefaultModel()
	planner := newTestPlanner(model, 1024)
	rng := randx.NewPCG()
	belief := pointMassBelief(t, 0.145)

	for i := 0; i < 5; i++ {
		action, err := planner.RecommendAction(belief, rng)
		if err != nil {
			t.Fatal(err)
		}
		if action != ld.Stop {
			t.Errorf("want: %v, got: %v", ld.Stop, action)
		}
	}
}

// ゴールから遠い位置での停止は罰則になるので、推薦されないはず
func TestRecommendActionAvoidsStopFarFromGoal(t *testing.T) {
	model := ld.NewDefaultModel()
	planner := newTestPlanner(model, 1024)
	rng := randx.NewPCG()
	belief := pointMassBelief(t, 8.0)

	for i := 0; i < 5; i++ {
		action, err := planner.RecommendAction(belief, rng)
		if err != nil {
			t.Fatal(err)
		}
		if action == ld.Stop {
			t.Errorf("ゴール外での停止が推薦されました")
		}
	}
}

// プランナー・粒子フィルタ・実行ループを繋いだスモークテスト
func TestEpisodeWithParticleTracker(t *testing.T) {
	model := ld.NewDefaultModel()
	planner := newTestPlanner(model, 512)
	rng := randx.NewPCG()

	updater := particle.ReweightUpdater[ld.State, ld.Action, ld.Observation]{
		Model:        model,
		NumParticles: 1024,
	}
	initFunc := func(rng *rand.Rand) (particle.Belief[ld.State], error) {
		return particle.NewBeliefFromSampler(1024, model.SampleInitialState, rng)
	}
	tracker, err := particle.NewTracker(initFunc, updater)
	if err != nil {
		t.Fatal(err)
	}

	engine := pomdp.Engine[ld.State, ld.Action, ld.Observation]{Model: model, MaxSteps: 32}
	record, err := engine.RunEpisode(planner, tracker, rng)
	if err != nil {
		t.Fatal(err)
	}

	n := len(record.Steps)
	if n == 0 || n > engine.MaxSteps {
		t.Fatalf("ステップ数が不正です: %d", n)
	}
}
