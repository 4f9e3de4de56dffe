package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/notation"
	"github.com/hailam/quantumchess/internal/quantum"
)

// RenderBoard prints every square with its possible piece and probability.
func RenderBoard(w io.Writer, q notation.PieceLookup) {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			p, present, prob := q.QuantumPiece(board.NewSquare(file, rank))
			switch {
			case !present:
				sb.WriteString("   .  ")
			case prob == 1:
				fmt.Fprintf(&sb, "   %c  ", p.Glyph())
			default:
				fmt.Fprintf(&sb, " %c%3.0f%%", p.Glyph(), prob*100)
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n     a     b     c     d     e     f     g     h\n\n")
	io.WriteString(w, sb.String())
}

// RenderHarmonics lists harmonics with their weight, probability and placement.
func RenderHarmonics(w io.Writer, hs []quantum.Harmonic) {
	var total uint64
	for _, h := range hs {
		total += h.Weight
	}
	for i, h := range hs {
		fmt.Fprintf(w, "%3d  w=%-6d p=%6.2f%%  %-10s %s\n",
			i+1, h.Weight, float64(h.Weight)/float64(total)*100, h.Board.Status(), h.Board.FEN())
	}
}
