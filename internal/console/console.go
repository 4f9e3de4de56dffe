// Package console plays a quantum chess game over a text stream.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/notation"
)

const helpText = `Commands:
  e2e4 | e2 e4              ordinary move
  q e2 e4 | quantum b1 c3 e4  quantum move, optional middle square
  castle left|right         castle with the a- or h-rook
  tie                       end the game in a tie
  capitulate | quit | exit  resign
  board                     show the board
  harmonics                 list the harmonics
  help                      show this text
`

// Console reads commands from in and writes the game to out.
type Console struct {
	eng    *engine.Engine
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
}

// New creates a console for eng.
func New(eng *engine.Engine, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{eng: eng, in: in, out: out, logger: logger}
}

// Run plays until the game ends or input is exhausted.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.in)

	RenderBoard(c.out, c.eng)
	c.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			c.prompt()
			continue
		}

		switch line {
		case "help":
			fmt.Fprint(c.out, helpText)
		case "board":
			RenderBoard(c.out, c.eng)
		case "harmonics":
			RenderHarmonics(c.out, c.eng.Harmonics())
		default:
			c.play(line)
		}

		if c.eng.Status().IsTerminal() {
			fmt.Fprintf(c.out, "Game over: %s\n", describe(c.eng.Status()))
			return nil
		}
		c.prompt()
	}
	return errors.Wrap(scanner.Err(), "read commands")
}

func (c *Console) prompt() {
	fmt.Fprintf(c.out, "%s> ", strings.ToLower(c.eng.ActivePlayer().String()))
}

func (c *Console) play(line string) {
	req, err := notation.ParseCommand(line)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v (type help for commands)\n", errors.Cause(err))
		return
	}
	move, err := req.Resolve(c.eng.ActivePlayer(), c.eng)
	if err == nil {
		err = c.eng.Submit(move)
	}
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	c.logger.Debug("move played", zap.Stringer("move", move), zap.Int("harmonics", len(c.eng.Harmonics())))
	RenderBoard(c.out, c.eng)
}

func describe(s board.Status) string {
	switch s {
	case board.WhiteWins:
		return "white wins"
	case board.BlackWins:
		return "black wins"
	case board.Tie:
		return "tie"
	}
	return "in progress"
}
