// Package rank holds the static per-tier table: radius, display color/icon and
// the merge score of every piece size.
package rank

import "fmt"

// Rank is the size tier of a piece, 0 (smallest) to Max (terminal).
type Rank int

const (
	Min   Rank = 0
	Max   Rank = 10
	Count      = int(Max) + 1
)

// Info describes one tier.
type Info struct {
	Radius float64
	Color  string
	Icon   string
	Name   string
	Score  int
}

var table = [Count]Info{
	{Radius: 10, Color: "#ffdddd", Icon: "🍒", Name: "cherry", Score: 1},
	{Radius: 15, Color: "#ffbbbb", Icon: "🍓", Name: "strawberry", Score: 3},
	{Radius: 20, Color: "#ff9999", Icon: "🍇", Name: "grape", Score: 6},
	{Radius: 25, Color: "#ff7777", Icon: "🍊", Name: "dekopon", Score: 10},
	{Radius: 30, Color: "#ff5555", Icon: "🍑", Name: "persimmon", Score: 15},
	{Radius: 35, Color: "#ff3333", Icon: "🍎", Name: "apple", Score: 21},
	{Radius: 40, Color: "#ff1111", Icon: "🍐", Name: "pear", Score: 28},
	{Radius: 45, Color: "#ff0000", Icon: "🍑", Name: "peach", Score: 36},
	{Radius: 50, Color: "#cc0000", Icon: "🍍", Name: "pineapple", Score: 45},
	{Radius: 55, Color: "#990000", Icon: "🍈", Name: "melon", Score: 55},
	{Radius: 60, Color: "#660000", Icon: "🍉", Name: "watermelon", Score: 66},
}

// Valid reports whether r is inside the table.
func (r Rank) Valid() bool { return r >= Min && r <= Max }

// Clamp maps any integer onto the table; out-of-range requests never build an
// out-of-table piece.
func Clamp(v int) Rank {
	switch {
	case v < int(Min):
		return Min
	case v > int(Max):
		return Max
	}
	return Rank(v)
}

// Info returns the table row, clamping invalid ranks.
func (r Rank) Info() Info { return table[Clamp(int(r))] }

func (r Rank) Radius() float64 { return r.Info().Radius }
func (r Rank) Score() int      { return r.Info().Score }
func (r Rank) Color() string   { return r.Info().Color }
func (r Rank) Icon() string    { return r.Info().Icon }

// Next returns the rank a merge of two r pieces produces. ok is false for the
// terminal rank.
func (r Rank) Next() (next Rank, ok bool) {
	if r >= Max {
		return Max, false
	}
	return r + 1, true
}

// Terminal reports whether r is the largest rank.
func (r Rank) Terminal() bool { return r >= Max }

func (r Rank) String() string {
	return fmt.Sprintf("%s(%d)", r.Info().Name, int(r))
}

// All returns the table in rank order.
func All() []Info {
	out := make([]Info, Count)
	copy(out, table[:])
	return out
}
