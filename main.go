// Quantum chess in the terminal. Both players take turns at the same prompt.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/console"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/quantum"
)

func main() {
	seed := flag.Uint64("seed", envSeed(), "random seed for measurements (0 seeds from the clock)")
	debug := flag.Bool("debug", os.Getenv("QCHESS_DEBUG") != "", "log measurement events to stderr")
	flag.Parse()

	logger := zap.NewNop()
	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	opts := []quantum.Option{quantum.WithLogger(logger.Named("quantum"))}
	if *seed != 0 {
		opts = append(opts, quantum.WithSource(quantum.NewSource(*seed)))
	}

	c := console.New(engine.NewEngine(opts...), os.Stdin, os.Stdout, logger)
	if err := c.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envSeed() uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(os.Getenv("QCHESS_SEED")), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
