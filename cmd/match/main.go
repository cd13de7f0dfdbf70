package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
	"github.com/cricklet/negachess/internal/runner"
)

type tally struct {
	whiteWins  int
	blackWins  int
	draws      int
	unfinished int
}

func (t *tally) add(result string) {
	switch result {
	case "1-0":
		t.whiteWins++
	case "0-1":
		t.blackWins++
	case "1/2-1/2":
		t.draws++
	default:
		t.unfinished++
	}
}

func main() {
	configPath := flag.String("config", "", "config file (yaml, json or toml)")
	games := flag.Int("games", 1, "number of games to play")
	white := flag.String("white", "", "white player, overrides game.white")
	black := flag.String("black", "", "black player, overrides game.black")
	fen := flag.String("fen", "startpos", "start position")
	verbose := flag.Bool("v", false, "log engine output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *white != "" {
		cfg.Game.White = *white
	}
	if *black != "" {
		cfg.Game.Black = *black
	}

	logger := SilentLogger
	if *verbose {
		logger = DefaultLogger
	}

	whiteType := players.PlayerTypeFromString(cfg.Game.White)
	blackType := players.PlayerTypeFromString(cfg.Game.Black)
	if whiteType == players.Human || blackType == players.Human {
		fmt.Fprintln(os.Stderr, "both sides need an engine, got", whiteType, "and", blackType)
		os.Exit(1)
	}

	whiteSource, err := players.NewMoveSource(whiteType, cfg, logger)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer whiteSource.Close()

	blackSource, err := players.NewMoveSource(blackType, cfg, logger)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer blackSource.Close()

	bar := progressbar.Default(int64(*games), fmt.Sprintf("%v vs %v", whiteType, blackType))
	results := tally{}
	plies := 0
	start := time.Now()

	for i := 0; i < *games; i++ {
		r := runner.NewGameRunner(logger)
		err := r.SetupPosition(Position{Fen: *fen})
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		err = r.PlayGame(whiteSource, blackSource, cfg.Game.MaxPlies)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, "game", i+1, "stopped:", err)
		}
		plies += len(r.MoveHistory())
		results.add(r.Result())

		pgn, err := r.Pgn(runner.PgnHeaders{
			Event: "Self Tournament",
			Site:  "negachess",
			Date:  time.Now().Format("2006.01.02"),
			Round: fmt.Sprint(i + 1),
			White: whiteType.String(),
			Black: blackType.String(),
		})
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			_ = bar.Clear()
			fmt.Println(pgn)
			fmt.Println()
		}
		_ = bar.Add(1)
	}

	elapsed := time.Since(start)
	fmt.Printf("%v: +%v =%v -%v (%v unfinished), %v plies in %v (%v plies/s)\n",
		whiteType,
		results.whiteWins, results.draws, results.blackWins, results.unfinished,
		humanize.Comma(int64(plies)), elapsed.Round(time.Millisecond),
		humanize.Ftoa(float64(plies)/elapsed.Seconds()))
}
