package app

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/handmade/internal/board"
)

// preview shows the board and the annotated frame in desktop windows.
type preview struct {
	board  *board.Board
	frame  *gocv.Window
	canvas *gocv.Window
}

func newPreview(b *board.Board) *preview {
	return &preview{
		board:  b,
		frame:  gocv.NewWindow("HandMade - detection"),
		canvas: gocv.NewWindow("HandMade - board"),
	}
}

// Show refreshes both windows and returns the key pressed, or -1.
func (p *preview) Show(annotated gocv.Mat) int {
	if !annotated.Empty() {
		p.frame.IMShow(annotated)
	}

	p.board.WithCanvas(func(c board.Canvas) {
		if mc, ok := c.(*board.MatCanvas); ok {
			p.canvas.IMShow(mc.Mat())
		}
	})

	return p.canvas.WaitKey(1)
}

func (p *preview) Close() error {
	p.frame.Close()
	return p.canvas.Close()
}
