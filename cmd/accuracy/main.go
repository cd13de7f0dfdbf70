package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cricklet/negachess/internal/accuracy"
	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
	"github.com/cricklet/negachess/internal/stockfish"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml, json or toml)")
	player := flag.String("player", "negamax", "engine to test")
	compare := flag.Bool("compare", false, "rate each move with stockfish")
	compareTime := flag.Duration("compare-time", 500*time.Millisecond, "stockfish search time per rating")
	verbose := flag.Bool("v", false, "log engine output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: accuracy [flags] suite.epd...")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := SilentLogger
	if *verbose {
		logger = DefaultLogger
	}

	playerType := players.PlayerTypeFromString(*player)
	if playerType == players.Human {
		fmt.Fprintln(os.Stderr, "unknown engine", *player)
		os.Exit(1)
	}
	source, err := players.NewMoveSource(playerType, cfg, logger)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer source.Close()

	epds := []*accuracy.Epd{}
	for _, path := range flag.Args() {
		loaded, err := accuracy.LoadEpd(path)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		epds = append(epds, loaded...)
	}

	bar := progressbar.Default(int64(len(epds)), playerType.String())
	options := []accuracy.RunnerOption{
		accuracy.WithLogger(logger),
		accuracy.WithProgress(func(result accuracy.EpdResult) {
			if !result.Success {
				_ = bar.Clear()
				fmt.Println(result)
			}
			_ = bar.Add(1)
		}),
	}

	if *compare {
		stock := stockfish.NewStockfishRunner(
			stockfish.WithLogger(logger),
			stockfish.WithPath(cfg.Stockfish.Path))
		defer stock.Close()
		options = append(options, accuracy.WithStockfish(stock, stockfish.SearchParams{Duration: Some(*compareTime)}))
	}

	report, err := accuracy.NewRunner(source, options...).Run(epds)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Println(report)
}
