package ucb_test

import (
	"math"
	"slices"
	"testing"

	"github.com/akshaykokane/pomcp/ucb"
)

func TestCalculatorAverageValue(t *testing.T) {
	tests := []struct {
		name       string
		totalValue float32
		trial      int
		want       float32
	}{
		{
			name:  "正常_未試行は0",
			trial: 0,
			want:  0.0,
		},
		{
			name:       "正常_平均",
			totalValue: 6.0,
			trial:      3,
			want:       2.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &ucb.Calculator{TotalValue: tc.totalValue, Trial: tc.trial}
			got := c.AverageValue()
			if got != tc.want {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestNewUCB1Func(t *testing.T) {
	f := ucb.NewUCB1Func(2.0)

	q := float32(1.5)
	sumTrial := 100
	trial := 10

	want := float64(q) + 2.0*math.Sqrt(math.Log(float64(sumTrial+1))/float64(trial+1))
	got := float64(f(q, sumTrial, trial))

	if math.Abs(got-want) > 1e-5 {
		t.Errorf("want: %v, got: %v", want, got)
	}
}

func TestManagerMaxKeys(t *testing.T) {
	f := ucb.NewUCB1Func(0.0)

	m := ucb.Manager[[]string, string]{
		"a": &ucb.Calculator{Func: f, TotalValue: 10.0, Trial: 10},
		"b": &ucb.Calculator{Func: f, TotalValue: 30.0, Trial: 10},
		"c": &ucb.Calculator{Func: f, TotalValue: 30.0, Trial: 10},
	}

	got := m.MaxKeys()
	slices.Sort(got)
	want := []string{"b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("want: %v, got: %v", want, got)
	}
}

func TestManagerMaxTrialKeys(t *testing.T) {
	f := ucb.NewUCB1Func(1.0)

	m := ucb.Manager[[]string, string]{
		"a": &ucb.Calculator{Func: f, Trial: 3},
		"b": &ucb.Calculator{Func: f, Trial: 30},
		"c": &ucb.Calculator{Func: f, Trial: 7},
	}

	if got := m.TotalTrial(); got != 40 {
		t.Fatalf("TotalTrial want: 40, got: %d", got)
	}

	got := m.MaxTrialKeys()
	want := []string{"b"}
	if !slices.Equal(got, want) {
		t.Errorf("want: %v, got: %v", want, got)
	}
}

func TestManagerTrialPercentByKey(t *testing.T) {
	f := ucb.NewUCB1Func(1.0)

	m := ucb.Manager[[]string, string]{
		"a": &ucb.Calculator{Func: f, Trial: 25},
		"b": &ucb.Calculator{Func: f, Trial: 75},
	}

	ps := m.TrialPercentByKey()
	if ps["a"] != 0.25 || ps["b"] != 0.75 {
		t.Errorf("want: {a: 0.25, b: 0.75}, got: %v", ps)
	}

	empty := ucb.Manager[[]string, string]{
		"a": &ucb.Calculator{Func: f},
	}
	if got := empty.TrialPercentByKey(); len(got) != 0 {
		t.Errorf("未試行のManagerは空のマップを返すべき: %v", got)
	}
}

// 探索項は未試行の腕を持ち上げるはず
func TestUCB1PrefersUntriedArm(t *testing.T) {
	f := ucb.NewUCB1Func(2.0)

	m := ucb.Manager[[]string, string]{
		"tried":   &ucb.Calculator{Func: f, TotalValue: 50.0, Trial: 100},
		"untried": &ucb.Calculator{Func: f},
	}

	got := m.MaxKeys()
	want := []string{"untried"}
	if !slices.Equal(got, want) {
		t.Errorf("want: %v, got: %v", want, got)
	}
}
