package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/runner"
)

// keyStep is how far one arrow press moves the aim, in board units.
const keyStep = 10.0

// Input turns terminal events into runner commands. It remembers the aim so
// arrow keys can nudge it.
type Input struct {
	Layout Layout
	AimX   float64
}

// Translate returns the commands for ev and whether the user asked to quit.
func (in *Input) Translate(ev tcell.Event) (cmds []any, quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return nil, true
		case tcell.KeyLeft:
			return in.aim(in.AimX - keyStep), false
		case tcell.KeyRight:
			return in.aim(in.AimX + keyStep), false
		case tcell.KeyEnter:
			return []any{runner.Drop{}}, false
		case tcell.KeyRune:
			return in.runeKey(ev.Rune())
		}
	case *tcell.EventMouse:
		col, row := ev.Position()
		if !in.Layout.Contains(col, row) && ev.Buttons() == tcell.ButtonNone {
			return nil, false
		}
		cmds = in.aim(in.Layout.BoardX(col))
		if ev.Buttons()&tcell.Button1 != 0 {
			cmds = append(cmds, runner.Drop{})
		}
		return cmds, false
	}
	return nil, false
}

func (in *Input) aim(x float64) []any {
	if x < 0 {
		x = 0
	}
	if x > in.Layout.BoardW {
		x = in.Layout.BoardW
	}
	in.AimX = x
	return []any{runner.Aim{X: x}}
}

func (in *Input) runeKey(r rune) ([]any, bool) {
	switch r {
	case 'q', 'Q':
		return nil, true
	case ' ':
		return []any{runner.Drop{}}, false
	case '1':
		return []any{runner.SelectMode{Mode: game.Classic}}, false
	case '2':
		return []any{runner.SelectMode{Mode: game.TimeAttack}}, false
	case '3':
		return []any{runner.SelectMode{Mode: game.Endless}}, false
	case 'r', 'R':
		return []any{runner.Restart{}}, false
	case 'm', 'M':
		return []any{runner.ReturnToMenu{}}, false
	case 'h':
		return in.aim(in.AimX - keyStep), false
	case 'l':
		return in.aim(in.AimX + keyStep), false
	}
	return nil, false
}
