// Package sim plays seeded Classic runs headlessly with random drop positions
// and summarizes the outcomes.
package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/roll"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

// Params describes one batch of runs.
type Params struct {
	Tuning tuning.Params
	Seed   uint64
	Mode   game.Mode

	// MaxTicks caps a run that never stacks out. <= 0 means 10 virtual minutes.
	MaxTicks int
	// Settle is how many ticks the bot waits after each drop before aiming
	// again. Drops are ignored during the cooldown anyway.
	Settle int
}

// Result is the outcome of one run.
type Result struct {
	Seed       uint64 `json:"seed"`
	Score      int    `json:"score"`
	Merges     int    `json:"merges"`
	MaxCombo   int    `json:"max_combo"`
	Bombs      int    `json:"bombs"`
	Drops      int    `json:"drops"`
	Ticks      int    `json:"ticks"`
	ReachedMax bool   `json:"reached_max"`
	Reason     string `json:"reason"`
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Report aggregates a batch.
type Report struct {
	Runs   []Result `json:"runs"`
	Score  Stats    `json:"score"`
	Merges Stats    `json:"merges"`
	Ticks  Stats    `json:"ticks"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

func (p Params) normalized() Params {
	if p.Tuning.TickHz == 0 {
		p.Tuning = tuning.Default()
	}
	if p.MaxTicks <= 0 {
		p.MaxTicks = 10 * 60 * p.Tuning.TickHz
	}
	if p.Settle <= 0 {
		p.Settle = 1
	}
	return p
}

// PlayOne plays a single run. Spawns and aim come from separate seeded
// sources so the same seed always replays the same run.
func PlayOne(p Params, seed uint64) (Result, error) {
	p = p.normalized()
	g := game.New(game.Options{
		Params: p.Tuning,
		Store:  store.NewMemory(),
		RNG:    roll.NewSeededRNG(seed),
	})
	if err := g.SelectMode(p.Mode); err != nil {
		return Result{}, fmt.Errorf("sim: %w", err)
	}
	aim := roll.NewSeededRNG(seed ^ 0x9e3779b97f4a7c15)
	lo := p.Tuning.WallMargin
	hi := p.Tuning.Width - p.Tuning.WallMargin

	res := Result{Seed: seed}
	wait := 0
	for res.Ticks < p.MaxTicks && g.State() == game.Running {
		if wait <= 0 {
			g.PointerMove(roll.Between(aim, lo, hi))
			if g.Drop() {
				res.Drops++
				wait = p.Settle
			}
		}
		g.Tick()
		res.Ticks++
		wait--
		for _, ev := range g.Drain() {
			if ev.Kind == game.EventGameOver {
				res.Reason = ev.Reason
			}
		}
	}

	gc := g.Context()
	res.Score = gc.Score.Current
	res.Merges = gc.Stats.Merges
	res.MaxCombo = gc.Stats.MaxCombo
	res.Bombs = gc.Stats.BombsUsed
	res.ReachedMax = gc.Stats.ReachedMax
	if res.Reason == "" {
		res.Reason = "tick_cap"
	}
	return res, nil
}

// RunMonteCarlo plays runs consecutive seeds starting at p.Seed.
func RunMonteCarlo(p Params, runs int) (Report, error) {
	if runs <= 0 {
		return Report{}, nil
	}
	rep := Report{Runs: make([]Result, 0, runs)}
	scores := make([]int, runs)
	merges := make([]int, runs)
	ticks := make([]int, runs)
	for i := 0; i < runs; i++ {
		r, err := PlayOne(p, p.Seed+uint64(i))
		if err != nil {
			return Report{}, err
		}
		rep.Runs = append(rep.Runs, r)
		scores[i], merges[i], ticks[i] = r.Score, r.Merges, r.Ticks
	}
	rep.Score = calcStats(scores)
	rep.Merges = calcStats(merges)
	rep.Ticks = calcStats(ticks)
	return rep, nil
}
