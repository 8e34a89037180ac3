package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/suika-backend/internal/game"
)

const hudWidth = 28

var (
	styleFrame   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCeiling = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBanner  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

func pieceStyle(color string, rainbow bool, row int) tcell.Style {
	c := tcell.GetColor(color)
	if rainbow {
		hues := []tcell.Color{tcell.ColorRed, tcell.ColorOrange, tcell.ColorYellow, tcell.ColorGreen, tcell.ColorBlue, tcell.ColorPurple}
		c = hues[row%len(hues)]
	}
	return tcell.StyleDefault.Foreground(c)
}

func putString(s tcell.Screen, x, y int, str string, st tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}

// Draw renders one view. It does not call Show.
func Draw(s tcell.Screen, l Layout, v game.View, notice string) {
	s.Clear()
	drawFrame(s, l, v)
	drawPieces(s, l, v)
	drawHUD(s, l, v, notice)
	switch v.State {
	case "menu":
		drawOverlay(s, l, []string{"DROP & MERGE", "", "1 classic", "2 time attack", "3 endless", "", "q quit"})
	case "game_over":
		drawOverlay(s, l, []string{"GAME OVER", "", fmt.Sprintf("score %d", v.Score), fmt.Sprintf("best  %d", v.High), "", "r restart", "m menu"})
	}
}

func drawFrame(s tcell.Screen, l Layout, v game.View) {
	left, right := l.OriginX-1, l.OriginX+l.Cols
	bottom := l.OriginY + l.Rows
	for y := l.OriginY; y < bottom; y++ {
		s.SetContent(left, y, '│', nil, styleFrame)
		s.SetContent(right, y, '│', nil, styleFrame)
	}
	for x := left; x <= right; x++ {
		s.SetContent(x, bottom, '─', nil, styleFrame)
	}
	s.SetContent(left, bottom, '└', nil, styleFrame)
	s.SetContent(right, bottom, '┘', nil, styleFrame)

	if v.Board.Width > 0 {
		_, cy := l.Cell(0, v.Board.CeilingY)
		for x := l.OriginX; x < right; x += 2 {
			s.SetContent(x, cy, '╌', nil, styleCeiling)
		}
	}
}

func drawPieces(s tcell.Screen, l Layout, v game.View) {
	for _, p := range v.Pieces {
		c0, r0 := l.Cell(p.X-p.Radius, p.Y-p.Radius)
		c1, r1 := l.Cell(p.X+p.Radius, p.Y+p.Radius)
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				if !l.Contains(col, row) {
					continue
				}
				bx, by := l.BoardPoint(col, row)
				dx, dy := bx-p.X, by-p.Y
				if dx*dx+dy*dy > p.Radius*p.Radius {
					continue
				}
				ch := '●'
				if p.PowerUp == "bomb" {
					ch = '✹'
				} else if p.PowerUp == "rainbow" {
					ch = '✦'
				}
				s.SetContent(col, row, ch, nil, pieceStyle(p.Color, v.Rainbow && p.PowerUp == "", row))
			}
		}
		cc, cr := l.Cell(p.X, p.Y)
		if l.Contains(cc, cr) && p.PowerUp == "" {
			s.SetContent(cc, cr, rune('0'+p.Rank%10), nil, pieceStyle(p.Color, false, cr).Reverse(true))
		}
	}
}

func drawHUD(s tcell.Screen, l Layout, v game.View, notice string) {
	x, y := l.HUDX(), l.OriginY
	line := func(st tcell.Style, format string, args ...any) {
		putString(s, x, y, fmt.Sprintf(format, args...), st)
		y++
	}
	line(styleTitle, "SCORE %d", v.Score)
	line(styleHUD, "BEST  %d", v.High)
	line(styleHUD, "MODE  %s", strings.ReplaceAll(v.Mode, "_", " "))
	y++
	if v.State != "menu" {
		next := fmt.Sprintf("NEXT  %s rank %d", v.Next.Icon, v.Next.Rank)
		if v.Next.PowerUp {
			next += " ★"
		}
		line(styleHUD, "%s", next)
	}
	line(styleHUD, "COMBO x%.1f (%d)", v.Multiplier, v.Streak)
	line(styleDim, "merges %d  best combo %d", v.Merges, v.MaxCombo)
	line(styleDim, "bombs %d", v.BombsUsed)
	if v.Mode == "time_attack" && v.State != "menu" {
		line(styleTitle, "TIME  %d s", v.RemainingMs/1000)
	}
	if v.Rainbow {
		line(styleTitle, "~ RAINBOW ~")
	}
	y++
	unlocked := 0
	for _, a := range v.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	line(styleHUD, "ACHIEVEMENTS %d/%d", unlocked, len(v.Achievements))
	for _, a := range v.Achievements {
		mark := "·"
		st := styleDim
		if a.Unlocked {
			mark, st = a.Icon, styleHUD
		}
		line(st, " %s %s", mark, a.Name)
	}
	if notice != "" {
		y++
		line(styleBanner, " %s ", notice)
	}
}

func drawOverlay(s tcell.Screen, l Layout, lines []string) {
	top := l.OriginY + l.Rows/2 - len(lines)/2
	for i, ln := range lines {
		x := l.OriginX + (l.Cols-len([]rune(ln)))/2
		st := styleHUD
		if i == 0 {
			st = styleTitle
		}
		putString(s, x, top+i, ln, st)
	}
}
