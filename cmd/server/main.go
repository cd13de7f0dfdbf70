package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, fmt.Sprint(r))
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
	}()

	configPath := ""
	port := 0
	for _, arg := range os.Args[1:] {
		if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
			port = int(parsed)
		} else {
			configPath = arg
		}
	}

	cfg, err := config.Load(configPath)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	s := server.NewServer(cfg, DefaultLogger)
	DefaultLogger.Println("serving at", cfg.Server.Port)

	err = Wrap(http.ListenAndServe(fmt.Sprintf(":%v", cfg.Server.Port), s.Router()))
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
