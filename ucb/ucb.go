// Package ucb provides UCB1 statistics for action selection.
// Exploration terms are supplied as closures so that solvers can swap
// the bound formula without touching the bookkeeping.
//
// Package ucb は行動選択のための UCB1 統計を提供します。
// 探索項はクロージャとして渡す為、ソルバー側は統計処理を変えずに
// バンド式だけを差し替えられます。
package ucb

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/maps"
)

type Func func(q float32, sumTrial, trial int) float32

// NewUCB1Func returns the standard UCB1 bound with exploration constant c.
//
// NewUCB1Funcは、探索定数cを持つ標準的なUCB1バンドを返します。
func NewUCB1Func(c float32) Func {
	return func(q float32, sumTrial, trial int) float32 {
		exploration := c * math32.Sqrt(math32.Log(float32(sumTrial+1))/float32(trial+1))
		return q + exploration
	}
}

type Calculator struct {
	Func       Func
	TotalValue float32
	Trial      int
}

func (c *Calculator) AverageValue() float32 {
	if c.Trial == 0 {
		return 0.0
	}
	return c.TotalValue / float32(c.Trial)
}

func (c *Calculator) Calculation(sumTrial int) float32 {
	q := c.AverageValue()
	return c.Func(q, sumTrial, c.Trial)
}

type Manager[KS ~[]K, K comparable] map[K]*Calculator

func (m Manager[KS, K]) TotalTrial() int {
	t := 0
	for _, c := range m {
		t += c.Trial
	}
	return t
}

func (m Manager[KS, K]) Max() float32 {
	total := m.TotalTrial()
	keys := maps.Keys(m)
	max := m[keys[0]].Calculation(total)
	for _, k := range keys[1:] {
		u := m[k].Calculation(total)
		if u > max {
			max = u
		}
	}
	return max
}

func (m Manager[KS, K]) MaxKeys() KS {
	max := m.Max()
	total := m.TotalTrial()
	ks := make(KS, 0, len(m))
	for k, c := range m {
		if c.Calculation(total) == max {
			ks = append(ks, k)
		}
	}
	return ks
}

func (m Manager[KS, K]) MaxTrial() int {
	max := 0
	for _, c := range m {
		if c.Trial > max {
			max = c.Trial
		}
	}
	return max
}

func (m Manager[KS, K]) MaxTrialKeys() KS {
	max := m.MaxTrial()
	ks := make(KS, 0, len(m))
	for k, c := range m {
		if c.Trial == max {
			ks = append(ks, k)
		}
	}
	return ks
}

func (m Manager[KS, K]) TrialPercentByKey() map[K]float32 {
	total := m.TotalTrial()
	ps := map[K]float32{}
	if total == 0 {
		return ps
	}
	for k, c := range m {
		ps[k] = float32(c.Trial) / float32(total)
	}
	return ps
}
