package game

import (
	"sort"

	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
)

// View is a read-only snapshot for renderers and observers.
type View struct {
	State       string  `json:"state" msgpack:"state"`
	Mode        string  `json:"mode" msgpack:"mode"`
	Generation  uint64  `json:"gen" msgpack:"gen"`
	Score       int     `json:"score" msgpack:"score"`
	High        int     `json:"high" msgpack:"high"`
	Streak      int     `json:"streak" msgpack:"streak"`
	Multiplier  float64 `json:"multiplier" msgpack:"multiplier"`
	Merges      int     `json:"merges" msgpack:"merges"`
	MaxCombo    int     `json:"max_combo" msgpack:"max_combo"`
	BombsUsed   int     `json:"bombs_used" msgpack:"bombs_used"`
	RemainingMs int64   `json:"remaining_ms" msgpack:"remaining_ms"`
	ElapsedMs   int64   `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Rainbow     bool    `json:"rainbow" msgpack:"rainbow"`

	Next         NextView            `json:"next" msgpack:"next"`
	Board        BoardView           `json:"board" msgpack:"board"`
	Pieces       []PieceView         `json:"pieces" msgpack:"pieces"`
	Achievements []AchievementStatus `json:"achievements" msgpack:"achievements"`
}

type NextView struct {
	Rank    int     `json:"rank" msgpack:"rank"`
	PowerUp bool    `json:"power_up" msgpack:"power_up"`
	Radius  float64 `json:"radius" msgpack:"radius"`
	Color   string  `json:"color" msgpack:"color"`
	Icon    string  `json:"icon" msgpack:"icon"`
}

type BoardView struct {
	Width      float64 `json:"width" msgpack:"width"`
	Height     float64 `json:"height" msgpack:"height"`
	WallMargin float64 `json:"wall_margin" msgpack:"wall_margin"`
	CeilingY   float64 `json:"ceiling_y" msgpack:"ceiling_y"`
	AimY       float64 `json:"aim_y" msgpack:"aim_y"`
}

type PieceView struct {
	ID         uint64  `json:"id" msgpack:"id"`
	Rank       int     `json:"rank" msgpack:"rank"`
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Radius     float64 `json:"radius" msgpack:"radius"`
	Color      string  `json:"color" msgpack:"color"`
	Icon       string  `json:"icon" msgpack:"icon"`
	Controlled bool    `json:"controlled,omitempty" msgpack:"controlled,omitempty"`
	PowerUp    string  `json:"power_up,omitempty" msgpack:"power_up,omitempty"`
}

type AchievementStatus struct {
	AchievementInfo
	Unlocked bool `json:"unlocked" msgpack:"unlocked"`
}

// View snapshots the current state. The preview shows whether the next piece
// is a power-up but not its kind, which the factory draws at spawn.
func (g *Game) View() View {
	gc := g.gc
	p := gc.Params
	v := View{
		State:       gc.State.String(),
		Mode:        gc.Mode.String(),
		Generation:  gc.Generation,
		Score:       gc.Score.Current,
		High:        gc.Score.High,
		Streak:      gc.Combo.Streak,
		Multiplier:  Multiplier(gc.Combo.Streak, p.ComboStep, p.MaxMultiplier),
		Merges:      gc.Stats.Merges,
		MaxCombo:    gc.Stats.MaxCombo,
		BombsUsed:   gc.Stats.BombsUsed,
		RemainingMs: gc.Remaining.Milliseconds(),
		Rainbow:     gc.Rainbow,
		Board: BoardView{
			Width:      p.Width,
			Height:     p.Height,
			WallMargin: p.WallMargin,
			CeilingY:   p.CeilingY,
			AimY:       p.AimY,
		},
	}
	switch gc.State {
	case Running:
		v.ElapsedMs = (gc.Clock.Now() - gc.StartedAt).Milliseconds()
	case GameOver:
		v.ElapsedMs = gc.Elapsed.Milliseconds()
	}
	if gc.State != Menu {
		info := gc.Slot.Rank.Info()
		v.Next = NextView{
			Rank:    int(gc.Slot.Rank),
			PowerUp: gc.Slot.PowerUp,
			Radius:  info.Radius,
			Color:   info.Color,
			Icon:    info.Icon,
		}
	}

	for _, b := range gc.World.Bodies() {
		ps, ok := gc.piece(b.Handle)
		if !ok {
			continue
		}
		r := ps.payload.Rank()
		pv := PieceView{
			ID:         uint64(b.Handle),
			Rank:       int(r),
			X:          b.Position.X,
			Y:          b.Position.Y,
			Radius:     r.Radius(),
			Color:      r.Color(),
			Icon:       r.Icon(),
			Controlled: ps.controlled,
		}
		if pu, ok := piece.AsPowerUp(ps.payload); ok {
			pv.PowerUp = pu.Kind.String()
		}
		v.Pieces = append(v.Pieces, pv)
	}
	sort.Slice(v.Pieces, func(i, j int) bool { return v.Pieces[i].ID < v.Pieces[j].ID })

	for _, a := range catalog {
		v.Achievements = append(v.Achievements, AchievementStatus{AchievementInfo: a, Unlocked: gc.ledger.Unlocked(a.ID)})
	}
	return v
}

// RankTable is the display table for clients.
func RankTable() []rank.Info { return rank.All() }
