package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
	"github.com/cricklet/negachess/internal/search"
	"github.com/cricklet/negachess/internal/uci"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "recover()", r)
		}
	}()

	args := os.Args[1:]

	if Contains(args, "profile") {
		p := profile.Start(profile.ProfilePath("data/CmdUciMain"))
		defer p.Stop()
	}
	args = FilterSlice(args, func(arg string) bool {
		return arg != "profile"
	})

	if len(args) > 0 && args[0] == "options" {
		for _, option := range search.AllSearchOptions {
			fmt.Println(option)
		}
		return
	}

	configPath := ""
	args = FilterSlice(args, func(arg string) bool {
		if strings.HasPrefix(arg, "config=") {
			configPath = strings.TrimPrefix(arg, "config=")
			return false
		}
		return true
	})

	cfg, err := config.Load(configPath)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	searchOptions := players.SearcherOptionsFromConfig(cfg.Search)
	if len(args) > 0 {
		searchOptions, err = search.SearcherOptionsFromArgs(args...)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	logger := NewFuncLogger(func(s string) {
		fmt.Println("info string", s)
	})

	book, err := players.LoadBookFromConfig(logger, cfg.Book)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	options := []uci.UciRunnerOption{
		uci.WithLogger(logger),
		uci.WithDepth(cfg.Search.Depth),
		uci.WithSearchOptions(searchOptions),
	}
	if book != nil {
		options = append(options, uci.WithBook(book))
	}
	r := uci.NewUciRunner(options...)

	scanner := bufio.NewScanner(os.Stdin)
	for !r.Quit && scanner.Scan() {
		result, err := r.HandleInput(scanner.Text())
		if !IsNil(err) {
			fmt.Println("info string error:", strings.ReplaceAll(err.Error(), "\n", " "))
			continue
		}
		for _, v := range result {
			fmt.Println(v)
		}
	}
}
