package render

import (
	"fmt"
	"strings"

	"github.com/IlikeChooros/go-uct/pkg/tictactoe"
	"github.com/muesli/termenv"
)

// Print the 3x3 board with rank and file labels, the 'last' square is underlined
// (pass tictactoe.SquareIllegal for none)
func Board(out *termenv.Output, pos tictactoe.Position, last tictactoe.Square) error {
	builder := strings.Builder{}
	for row := 0; row < 3; row++ {
		fmt.Fprintf(&builder, "%d ", 3-row)
		for col := 0; col < 3; col++ {
			sq := tictactoe.Square(row*3 + col)
			if col > 0 {
				builder.WriteString("|")
			}
			builder.WriteString(" " + cell(out, pos.At(sq), sq == last) + " ")
		}
		builder.WriteByte('\n')
		if row < 2 {
			builder.WriteString("  ---+---+---\n")
		}
	}
	builder.WriteString("   a   b   c\n")

	_, err := out.WriteString(builder.String())
	return err
}

func cell(out *termenv.Output, c tictactoe.Cell, last bool) string {
	style := out.String(c.String())
	switch c {
	case tictactoe.Cross:
		style = style.Foreground(out.Color("1")).Bold()
	case tictactoe.Circle:
		style = style.Foreground(out.Color("4")).Bold()
	default:
		style = style.Faint()
	}
	if last {
		style = style.Underline()
	}
	return style.String()
}

// One line summary of the finished (or ongoing) game
func Result(out *termenv.Output, pos tictactoe.Position) error {
	var text termenv.Style
	switch pos.Termination() {
	case tictactoe.TerminationCrossWon:
		text = out.String("x won").Foreground(out.Color("1"))
	case tictactoe.TerminationCircleWon:
		text = out.String("o won").Foreground(out.Color("4"))
	case tictactoe.TerminationDraw:
		text = out.String("draw")
	default:
		text = out.String(fmt.Sprintf("%v to move", pos.ToMove()))
	}
	_, err := fmt.Fprintln(out, text.Bold())
	return err
}
