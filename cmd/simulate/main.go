// Package main provides a headless session simulator for balancing the
// upgrade curves without opening a window.
//
// Usage:
//
//	go run cmd/simulate/main.go [flags]
//
// Flags:
//
//	--clicks <n>      Number of clicks to simulate (default 500)
//	--config <path>   Game config YAML (default: built-in defaults)
//	--seed <n>        Random seed (default 1)
//	--rebirth         Commit a rebirth whenever one is affordable
//	--save <path>     Write the final save blob to this file
//	--verbose         Enable verbose logging (default off)
//
// After every click the simulator advances frames until the cubes are
// clickable again, then greedily buys the cheapest affordable upgrade.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/gonewx/cubeclicker/data"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/embedded"
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

const (
	frameDT         = 1.0 / 60.0
	maxFramesPerRun = 10000
)

var (
	clicksFlag  = flag.Int("clicks", 500, "Number of clicks to simulate")
	configFlag  = flag.String("config", "", "Path to a game config YAML (default: embedded data/game.yaml)")
	seedFlag    = flag.Int64("seed", 1, "Random seed for fragment spawning")
	rebirthFlag = flag.Bool("rebirth", false, "Commit a rebirth whenever affordable")
	saveFlag    = flag.String("save", "", "Write the final save blob to this path")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	embedded.Init(data.FS)
	cfg, err := config.LoadHostConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store := game.NewMemoryStore(nil)
	wonAt := -1
	clicks := 0

	session, err := game.NewSession(game.Options{
		Config: cfg,
		Store:  store,
		Rand:   rand.New(rand.NewSource(*seedFlag)),
		Hooks: game.Hooks{OnWin: func(score float64) {
			wonAt = clicks
		}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	totalFrames := 0
	peakFragments := 0
	for clicks = 1; clicks <= *clicksFlag; clicks++ {
		if !session.Click(utils.Vec3{Z: cfg.Session.CubeHalfSize}) {
			fmt.Fprintf(os.Stderr, "click %d rejected in phase %s\n", clicks, session.Phase())
			os.Exit(1)
		}

		frames := 0
		for session.IsExploding() && frames < maxFramesPerRun {
			session.Update(frameDT)
			frames++
			if n := session.FragmentCount(); n > peakFragments {
				peakFragments = n
			}
		}
		totalFrames += frames

		buyCheapest(session)
		if *rebirthFlag {
			tryRebirth(session)
		}
	}

	printSummary(session, totalFrames, peakFragments, wonAt)

	if *saveFlag != "" {
		if err := session.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*saveFlag, store.Bytes(), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *saveFlag, err)
			os.Exit(1)
		}
	}
}

// buyCheapest 反复购买当前最便宜且买得起的升级
func buyCheapest(s *game.Session) {
	for {
		best := types.UpgradeKind(-1)
		bestCost := math.Inf(1)
		for _, kind := range types.AllUpgradeKinds {
			cost, err := s.UpgradeCost(kind)
			if err != nil {
				continue
			}
			if cost < bestCost {
				best, bestCost = kind, cost
			}
		}
		if best < 0 || s.Score() < bestCost {
			return
		}
		if err := s.BuyUpgrade(best); err != nil {
			return
		}
	}
}

func tryRebirth(s *game.Session) {
	if _, err := s.RequestRebirth(types.RebirthDoubleCubes); err != nil {
		return
	}
	if err := s.CommitRebirth(); err != nil {
		log.Printf("[Simulate] rebirth failed: %v", err)
	}
}

func printSummary(s *game.Session, frames, peakFragments, wonAt int) {
	state := s.State()

	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Clicks:            %d\n", state.Stats.TotalClicks)
	fmt.Printf("Simulated time:    %.1fs (%d frames)\n", float64(frames)*frameDT, frames)
	fmt.Printf("Score:             %.0f / %.0f (%.1f%%)\n", state.Score, state.MaxScore, state.Progress()*100)
	fmt.Printf("Score multiplier:  %.2f\n", state.Derived.ScoreMultiplier)
	fmt.Printf("Explosion force:   %.3f\n", state.Derived.ExplosionForce)
	fmt.Printf("Fragments/axis:    %d\n", state.Derived.FragmentsPerAxis)
	fmt.Printf("Fragments spawned: %d (peak live %d)\n", state.Stats.FragmentsSpawned, peakFragments)
	fmt.Printf("Cubes:             %d (rebirth level %d)\n", state.CubeCount, state.RebirthLevel)
	if wonAt >= 0 {
		fmt.Printf("Won at click:      %d\n", wonAt)
	}

	fmt.Println("Upgrades:")
	for _, kind := range types.AllUpgradeKinds {
		cost, _ := s.UpgradeCost(kind)
		fmt.Printf("  %-16s Lv %-4d next %.0f\n", kind, state.Upgrades[kind], cost)
	}
}
