package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xtding233/suika-backend/internal/config"
	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/sim"
	"github.com/xtding233/suika-backend/internal/tuning"
)

func main() {
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)
	if err := config.InitConfig(nil); err != nil {
		logger.Fatal(err)
	}
	var (
		runs      = flag.Int("runs", 200, "number of runs")
		seed      = flag.Uint64("seed", 1, "first seed; run i uses seed+i")
		mode      = flag.String("mode", "classic", "classic, time_attack or endless")
		maxTicks  = flag.Int("max-ticks", 0, "tick cap per run (0 = ten virtual minutes)")
		settle    = flag.Int("settle", 30, "ticks to wait after each drop")
		tuningDir = flag.String("tuning", config.String("SUIKA_TUNING_DIR", "tuning"), "tuning directory (missing files use built-in rules)")
		profile   = flag.String("profile", config.String("SUIKA_PROFILE", ""), "tuning profile")
		asJSON    = flag.Bool("json", false, "print the full report as JSON")
		prob      = flag.Float64("power-up-prob", -1, "override the power-up probability (negative keeps the tuned value)")
		pity      = flag.Int("pity", -1, "override the power-up pity (negative keeps the tuned value)")
	)
	flag.Parse()

	m, err := game.ParseMode(*mode)
	if err != nil {
		logger.Fatal(err)
	}
	var o tuning.Overrides
	if *prob >= 0 {
		o.PowerUpProb = prob
	}
	if *pity >= 0 {
		o.PowerUpPity = pity
	}
	// A missing directory resolves to the built-in rules.
	_, params, err := tuning.NewLoader(*tuningDir).Resolve(*profile, o)
	if err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	rep, err := sim.RunMonteCarlo(sim.Params{
		Tuning:   params,
		Seed:     *seed,
		Mode:     m,
		MaxTicks: *maxTicks,
		Settle:   *settle,
	}, *runs)
	if err != nil {
		logger.Fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Fatal(err)
		}
		return
	}

	row := func(name string, s sim.Stats) {
		fmt.Printf("%-7s mean=%9.2f sd=%9.2f p50=%9.1f p90=%9.1f p99=%9.1f\n", name, s.Mean, s.StdDev, s.P50, s.P90, s.P99)
	}
	fmt.Printf("runs=%d mode=%s seed=%d tuning=%s\n", len(rep.Runs), m, *seed, params.Version)
	row("score", rep.Score)
	row("merges", rep.Merges)
	row("ticks", rep.Ticks)
	reached := 0
	for _, r := range rep.Runs {
		if r.ReachedMax {
			reached++
		}
	}
	fmt.Printf("reached max rank in %d/%d runs\n", reached, len(rep.Runs))
}
