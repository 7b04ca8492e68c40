package world

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	glyphEmpty    = '⚬'
	glyphObstacle = 'X'
	glyphMovable  = '■'
	glyphUnknown  = '?'
)

// Direction glyphs for movers and for the agent, indexed by Direction.
var (
	moverGlyphs = [NumDirections]rune{'⇨', '⬀', '⬁', '⇦', '⬃', '⬂'}
	agentGlyphs = [NumDirections]rune{'⮕', '⬈', '⬉', '⬅', '⬋', '⬊'}
)

// Glyph returns the rune used to draw cell c.
func (w *World) Glyph(c Cell) rune {
	switch w.Grid.Kind(c) {
	case KindEmpty:
		return glyphEmpty
	case KindObstacle:
		return glyphObstacle
	case KindMovable:
		return glyphMovable
	case KindMoving:
		if m := w.MoverAt(c); m != nil {
			return moverGlyphs[m.Direction]
		}
	case KindAgent:
		if w.Agent != nil && w.Agent.Position == c {
			return agentGlyphs[w.Agent.Direction]
		}
	}
	return glyphUnknown
}

// String renders the world one row per line. Odd rows are indented by one
// column so the shoved-row layout reads as a hex grid; each cell takes two
// columns.
func (w *World) String() string {
	var b strings.Builder
	side := w.Grid.Side()
	for r := 0; r < side; r++ {
		if r%2 == 1 {
			b.WriteByte(' ')
		}
		for c := 0; c < side; c++ {
			b.WriteRune(w.Glyph(Cell{Row: r, Col: c}))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse builds a world from its rendered form. Besides the glyphs String
// emits it accepts ASCII tokens: "." empty, "X" obstacle, "O" movable,
// "a<d>" agent facing d, and "m<d>" mover facing d with an optional "+" or
// "-" stir suffix (default +1). Unicode mover glyphs carry no stir and get
// +1. Appearances are set to each kind's nominal value.
func Parse(text string, obsRange int) (*World, error) {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			rows = append(rows, fields)
		}
	}
	if len(rows) < MinSize+1 {
		return nil, fmt.Errorf("%w: %d rows", ErrTooSmall, len(rows))
	}

	side := len(rows)
	g := NewGrid(side - 1)
	var agent *Entity
	var movers []*Entity

	for r, fields := range rows {
		if len(fields) != side {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(fields), side)
		}
		for col, tok := range fields {
			c := Cell{Row: r, Col: col}
			kind, dir, stir, err := parseToken(tok)
			if err != nil {
				return nil, fmt.Errorf("cell %v: %w", c, err)
			}
			g.Set(c, kind, NominalAppearance(kind))

			switch kind {
			case KindAgent:
				if agent != nil {
					return nil, fmt.Errorf("%w: second agent at %v", ErrInconsistent, c)
				}
				agent = &Entity{ID: 0, Position: c, Direction: dir}
			case KindMoving:
				movers = append(movers, &Entity{ID: len(movers) + 1, Position: c, Direction: dir, Stir: stir})
			}
		}
	}

	return NewWorld(g, agent, movers, obsRange)
}

func parseToken(tok string) (Kind, Direction, int, error) {
	runes := []rune(tok)
	if len(runes) == 1 {
		switch runes[0] {
		case glyphEmpty, '.':
			return KindEmpty, 0, 0, nil
		case glyphObstacle:
			return KindObstacle, 0, 0, nil
		case glyphMovable, 'O':
			return KindMovable, 0, 0, nil
		}
		for d := 0; d < NumDirections; d++ {
			if runes[0] == moverGlyphs[d] {
				return KindMoving, Direction(d), 1, nil
			}
			if runes[0] == agentGlyphs[d] {
				return KindAgent, Direction(d), 0, nil
			}
		}
	}

	if len(tok) < 2 {
		return 0, 0, 0, fmt.Errorf("unknown token %q", tok)
	}
	d, err := strconv.Atoi(tok[1:2])
	if err != nil || d >= NumDirections {
		return 0, 0, 0, fmt.Errorf("bad direction in %q", tok)
	}

	switch {
	case tok[0] == 'a' && len(tok) == 2:
		return KindAgent, Direction(d), 0, nil
	case tok[0] == 'm' && len(tok) == 2:
		return KindMoving, Direction(d), 1, nil
	case tok[0] == 'm' && len(tok) == 3 && tok[2] == '+':
		return KindMoving, Direction(d), 1, nil
	case tok[0] == 'm' && len(tok) == 3 && tok[2] == '-':
		return KindMoving, Direction(d), -1, nil
	}
	return 0, 0, 0, fmt.Errorf("unknown token %q", tok)
}
