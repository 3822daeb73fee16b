// Package tui is a terminal front end for a hot-seat game, drawn with tcell.
package tui

import "github.com/gdamore/tcell/v2"

// Screen is the part of tcell.Screen the front end draws on and reads from.
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Clear()
	Show()
	Sync()
	Size() (width, height int)
	PollEvent() tcell.Event
	Fini()
}

var _ Screen = tcell.Screen(nil)

// NewScreen creates and initializes the terminal screen with mouse support.
func NewScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.EnableMouse()
	s.Clear()
	return s, nil
}
