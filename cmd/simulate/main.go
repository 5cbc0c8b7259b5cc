package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridfire/api/internal/ai"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// simResult summarizes one self-play match.
type simResult struct {
	Seed    string `json:"seed"`
	Winner  string `json:"winner"`
	Reason  string `json:"reason"`
	Turns   int    `json:"turns"`
	P1HP    int    `json:"p1Hp"`
	P2HP    int    `json:"p2Hp"`
	Elapsed string `json:"elapsed"`
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		numGames int
		workers  int
		gridW    int
		gridH    int
		elo      int
		maxTurns int
		seed     int64
		jsonOut  bool
	)

	flag.IntVar(&numGames, "n", 1, "Number of matches to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel matches)")
	flag.IntVar(&gridW, "width", engine.DefaultGridW, "Grid width")
	flag.IntVar(&gridH, "height", engine.DefaultGridH, "Grid height")
	flag.IntVar(&elo, "elo", engine.DefaultElo, "Loot seeding rating")
	flag.IntVar(&maxTurns, "max-turns", 200, "Max turns before a match is called a draw")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make([]*simResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			matchSeed := fmt.Sprintf("selfplay-%d-%d", seed, idx)
			result, err := runMatch(matchSeed, gridW, gridH, elo, maxTurns, seed+int64(idx))
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().Int("match", idx+1).Str("winner", result.Winner).Int("turns", result.Turns).Msg("Match completed")
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, maxTurns, errCount)
	}
}

// runMatch plays one match with the default policy driving both sides.
func runMatch(seed string, gridW, gridH, elo, maxTurns int, rngSeed int64) (*simResult, error) {
	init, err := engine.Generate(seed, gridW, gridH, elo)
	if err != nil {
		return nil, err
	}

	m := &engine.Match{
		ID:             seed,
		Version:        1,
		Seed:           seed,
		SeedKey:        init.SeedKey,
		SeedingVersion: engine.SeedingVersion,
		GridSize:       engine.GridSize{W: gridW, H: gridH},
		Elo:            elo,
		Constraints:    init.Constraints,
		Spawn:          init.Spawn,
		Resources:      init.Resources,
		Loot:           init.Loot,
		Entities: engine.Entities{
			Player: engine.Entity{Pos: init.Spawn.Player, HP: engine.MaxHP, Inventory: map[string]int{}},
			AI:     engine.Entity{Pos: init.Spawn.AI, HP: engine.MaxHP, Inventory: map[string]int{}},
		},
		CurrentActor: engine.SidePlayer,
		Status:       engine.StatusActive,
	}

	cat := engine.DefaultCatalog()
	pol := ai.DefaultPolicy()
	rng := rand.New(rand.NewSource(rngSeed))

	start := time.Now()
	for m.TurnIndex < maxTurns {
		out, err := ai.RunTurn(m, m.CurrentActor, pol, cat, rng.Float64)
		if err != nil {
			return nil, err
		}
		if out.Ended {
			break
		}
		m.TurnIndex++
		if m.CurrentActor == engine.SidePlayer {
			m.CurrentActor = engine.SideAI
		} else {
			m.CurrentActor = engine.SidePlayer
		}
	}

	return &simResult{
		Seed:    seed,
		Winner:  m.Winner,
		Reason:  m.Reason,
		Turns:   m.TurnIndex,
		P1HP:    m.Entities.Player.HP,
		P2HP:    m.Entities.AI.HP,
		Elapsed: time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

func printSummary(results []*simResult, maxTurns, errCount int) {
	completed := 0
	wins := map[string]int{}
	totalTurns := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		totalTurns += r.Turns
		if r.Winner == "" {
			wins["draw"]++
		} else {
			wins[r.Winner]++
		}
	}

	fmt.Printf("\nResults (%d matches, max %d turns):\n", completed, maxTurns)
	if errCount > 0 {
		fmt.Printf("  (%d matches failed)\n", errCount)
	}
	avgTurns := 0.0
	if completed > 0 {
		avgTurns = float64(totalTurns) / float64(completed)
	}
	fmt.Printf("  p1 (player side): %d wins\n", wins[engine.SidePlayer])
	fmt.Printf("  p2 (ai side):     %d wins\n", wins[engine.SideAI])
	fmt.Printf("  draws:            %d\n", wins["draw"])
	fmt.Printf("  avg turns:        %.1f\n", avgTurns)
}

func printJSON(results []*simResult, total, errCount int) {
	out := struct {
		Total   int          `json:"total"`
		Errors  int          `json:"errors"`
		Results []*simResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
