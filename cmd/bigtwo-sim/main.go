// Command bigtwo-sim plays bot-only games through the action gateway and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bigtwo/internal/app"
	"bigtwo/internal/bot"
	"bigtwo/internal/config"
	"bigtwo/internal/domain"
	"bigtwo/internal/logging"

	"github.com/pterm/pterm"
)

// maxActions bounds one game so a stuck table cannot spin forever.
const maxActions = 100000

type gameResult struct {
	id      string
	seed    int64
	matches int
	actions int
	totals  [domain.NumSeats]int
	winner  int
	err     error
}

func main() {
	games := flag.Int("games", 10, "number of games to play")
	seed := flag.Int64("seed", 1, "seed of the first game; game n uses seed+n")
	limit := flag.Int("limit", 0, "score limit, 0 keeps the configured one")
	levels := flag.String("levels", "smart,good,smart,good", "comma separated bot level per seat")
	configPath := flag.String("config", "data/game_config.json", "game config file")
	logLevel := flag.String("log-level", "warn", "engine log level")
	flag.Parse()

	if err := config.LoadGameConfig(*configPath); err != nil {
		pterm.Warning.Printfln("Using default game config: %v", err)
	}
	cfg := config.GetGameConfig()
	if *limit > 0 {
		cfg.ScoreLimit = *limit
	}
	if err := cfg.Validate(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	seatLevels, err := parseLevels(*levels)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	rules := cfg.ScoreRules()
	svc := app.NewService(app.Options{
		Logger:   logging.New(os.Stderr, *logLevel),
		Rules:    &rules,
		AutoPass: -1,
	})

	pterm.DefaultSection.Println("Big Two bot simulation")
	pterm.Info.Printfln("%d games, score limit %d, seats %s", *games, cfg.ScoreLimit, *levels)

	ctx := context.Background()
	results := make([]gameResult, 0, *games)
	spinner, _ := pterm.DefaultSpinner.Start("Playing ...")
	for n := 0; n < *games; n++ {
		spinner.UpdateText(fmt.Sprintf("Playing game %d/%d ...", n+1, *games))
		results = append(results, playGame(ctx, svc, cfg, *seed+int64(n), seatLevels))
	}
	spinner.Success("Done")

	if err := printResults(results, seatLevels); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func parseLevels(s string) ([domain.NumSeats]bot.BotLevel, error) {
	var out [domain.NumSeats]bot.BotLevel
	parts := strings.Split(s, ",")
	if len(parts) != domain.NumSeats {
		return out, fmt.Errorf("need %d levels, got %d", domain.NumSeats, len(parts))
	}
	for i, p := range parts {
		switch strings.TrimSpace(p) {
		case bot.BotLevelGood.String():
			out[i] = bot.BotLevelGood
		case bot.BotLevelSmart.String():
			out[i] = bot.BotLevelSmart
		default:
			return out, fmt.Errorf("unknown bot level %q", p)
		}
	}
	return out, nil
}

func playGame(ctx context.Context, svc *app.Service, cfg config.GameConfig, seed int64, levels [domain.NumSeats]bot.BotLevel) gameResult {
	res := gameResult{seed: seed, winner: -1}
	tbl, deal, err := svc.NewGame(ctx, app.GameSpec{Seed: seed, SeatOrder: cfg.SeatOrder})
	if err != nil {
		res.err = err
		return res
	}
	res.id = deal.GameID
	defer svc.Close(deal.GameID)

	var agents [domain.NumSeats]*bot.Agent
	for seat, level := range levels {
		agents[seat], err = bot.NewAgent(fmt.Sprintf("sim-%d", seat), fmt.Sprintf("Seat %d", seat), level)
		if err != nil {
			res.err = err
			return res
		}
	}

	for res.actions < maxActions {
		view := tbl.PublicState()
		if view.Quarantined {
			res.err = fmt.Errorf("game %s quarantined at version %d", view.GameID, view.Version)
			return res
		}
		if view.GameOver {
			res.matches = len(view.Scores.History)
			res.totals = view.Scores.Totals
			res.winner = view.Winner
			return res
		}
		seat := view.Turn.Current
		if _, err := agents[seat].Act(ctx, tbl, seat); err != nil {
			res.err = fmt.Errorf("seat %d: %w", seat, err)
			return res
		}
		res.actions++
	}
	res.err = fmt.Errorf("game %s did not finish in %d actions", res.id, maxActions)
	return res
}

func printResults(results []gameResult, levels [domain.NumSeats]bot.BotLevel) error {
	data := pterm.TableData{{"Seed", "Matches", "Actions", "Seat 0", "Seat 1", "Seat 2", "Seat 3", "Winner"}}
	var wins [domain.NumSeats]int
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			pterm.Error.Printfln("seed %d: %v", r.seed, r.err)
			continue
		}
		row := []string{strconv.FormatInt(r.seed, 10), strconv.Itoa(r.matches), strconv.Itoa(r.actions)}
		for _, total := range r.totals {
			row = append(row, strconv.Itoa(total))
		}
		row = append(row, pterm.LightCyan(fmt.Sprintf("%d (%s)", r.winner, levels[r.winner])))
		data = append(data, row)
		wins[r.winner]++
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.DefaultSection.Println("Wins by seat")
	bars := make(pterm.Bars, 0, domain.NumSeats)
	for seat, n := range wins {
		bars = append(bars, pterm.Bar{Label: fmt.Sprintf("%d %s", seat, levels[seat]), Value: n})
	}
	if err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d games failed", failed, len(results))
	}
	pterm.Success.Printfln("%d games finished cleanly", len(results))
	return nil
}
