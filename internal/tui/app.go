package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/runner"
)

// frameSink hands frames to the UI goroutine, keeping only the newest one
// when the UI falls behind.
type frameSink struct {
	ch chan runner.Frame
}

func (f *frameSink) Send(fr runner.Frame) error {
	select {
	case f.ch <- fr:
	default:
		select {
		case <-f.ch:
		default:
		}
		select {
		case f.ch <- fr:
		default:
		}
	}
	return nil
}

func (f *frameSink) Close() error { return nil }

// App is the terminal client loop.
type App struct {
	screen tcell.Screen
	inbox  chan<- any
	input  Input
	view   game.View

	notice      string
	noticeUntil time.Time
}

// NewApp wires a screen to a runner inbox. The screen must be initialized.
func NewApp(screen tcell.Screen, inbox chan<- any) *App {
	return &App{screen: screen, inbox: inbox}
}

func (a *App) relayout() {
	w, h := a.screen.Size()
	bw, bh := a.view.Board.Width, a.view.Board.Height
	if bw == 0 {
		bw, bh = 400, 600
	}
	a.input.Layout = Fit(w, h, bw, bh, hudWidth)
	if a.input.AimX == 0 {
		a.input.AimX = bw / 2
	}
}

// Run blocks until ctx ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	a.screen.HideCursor()

	sink := &frameSink{ch: make(chan runner.Frame, 1)}
	select {
	case a.inbox <- runner.Subscribe{Sink: sink}:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.relayout()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				a.relayout()
				a.screen.Sync()
				a.draw()
				continue
			}
			cmds, stop := a.input.Translate(ev)
			if stop {
				return nil
			}
			for _, c := range cmds {
				select {
				case a.inbox <- c:
				default:
				}
			}
		case f := <-sink.ch:
			a.apply(f)
			a.draw()
		}
	}
}

func (a *App) apply(f runner.Frame) {
	resized := f.View.Board.Width != a.view.Board.Width
	a.view = f.View
	if resized {
		a.relayout()
	}
	for _, ev := range f.Events {
		switch ev.Kind {
		case game.EventAchievement:
			if ev.Achievement != nil {
				a.flash(fmt.Sprintf("%s %s", ev.Achievement.Icon, ev.Achievement.Name))
			}
		case game.EventMaxRank:
			a.flash("WATERMELON!")
		case game.EventBomb:
			a.flash(fmt.Sprintf("BOOM x%d", ev.Removed))
		case game.EventRainbow:
			if ev.Active {
				a.flash("RAINBOW MODE")
			}
		}
	}
}

func (a *App) flash(msg string) {
	a.notice = msg
	a.noticeUntil = time.Now().Add(2 * time.Second)
}

func (a *App) draw() {
	notice := ""
	if time.Now().Before(a.noticeUntil) {
		notice = a.notice
	}
	Draw(a.screen, a.input.Layout, a.view, notice)
	a.screen.Show()
}
