package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/core"
	"github.com/vovakirdan/mergecrawl/internal/defs"
)

const (
	cellWidth   = 5 // Width of each cell
	cellHeight  = 2 // Height of each cell
	hudHeight   = 3
	footHeight  = 3
	damageFlash = 12 // ticks a damaged cell stays highlighted
)

func (g *Game) layoutSize() (w, h int) {
	s := g.session
	w = max(s.Grid.W*cellWidth+2, 44)
	h = hudHeight + s.Grid.H*cellHeight + 2 + footHeight
	return w, h
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.session == nil {
		dst.DrawTextCentered(g.screenH/2, "No run loaded")
		return
	}
	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	s := g.session
	frame := core.CenteredIn(g.screenW, hudHeight, s.Grid.W*cellWidth+2, s.Grid.H*cellHeight+2)
	inner := frame.Inset(1)
	boardY, boardH := frame.Y, frame.H

	g.renderHUD(dst, frame.X, frame.W)
	dst.DrawBoxColored(frame, core.ColorGray)
	g.renderCells(dst, inner.X, inner.Y)
	g.renderMotions(dst, inner)
	g.renderFooter(dst, frame.X, frame.Bottom())

	if s.Over() {
		g.renderGameOver(dst, boardY+boardH/2)
	} else if g.paused {
		dst.DrawTextCentered(boardY+boardH/2, " PAUSED ")
	}
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	w, h := g.layoutSize()
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need at least %dx%d", w, h))
}

func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	s := g.session
	title := "MERGE CRAWL"
	dst.DrawTextColored(boardX+(boardW-len(title))/2, 0, title, core.ColorBrightYellow)

	info := fmt.Sprintf("Floor %d  Room %d/%d", s.Floor()+1, s.Room(), s.Config().Spawn.RoomsPerFloor)
	dst.DrawText(boardX, 1, info)
	score := fmt.Sprintf("Score %d", s.Stats().Score)
	dst.DrawText(boardX+boardW-len(score), 1, score)

	filled := s.Meter.Value()
	bar := strings.Repeat("#", filled) + strings.Repeat("-", s.Meter.Threshold()-filled)
	dst.DrawText(boardX, 2, "Advance ")
	dst.DrawTextColored(boardX+8, 2, "["+bar+"]", core.ColorOrange)
	enemies := fmt.Sprintf("Enemies %d", len(s.Director.Live()))
	dst.DrawText(boardX+boardW-len(enemies), 2, enemies)
}

func (g *Game) cellOrigin(originX, originY int, c board.Coord) (int, int) {
	h := g.session.Grid.H
	return originX + c.X*cellWidth, originY + (h-1-c.Y)*cellHeight
}

func (g *Game) renderCells(dst *core.Screen, originX, originY int) {
	s := g.session
	for _, cell := range s.Grid.Cells() {
		x, y := g.cellOrigin(originX, originY, cell.Pos)
		mid := x + cellWidth/2

		switch {
		case cell.Enemy != 0:
			e, ok := s.Registry.Enemy(cell.Enemy)
			if !ok {
				continue
			}
			color := core.ParseColor(e.Def.Color)
			if g.flashing(cell.Pos) {
				color = core.ColorBrightRed
			}
			drawCentered(dst, mid, y, glyph(e.Def.Glyph, e.Def.ID), color)
			drawCentered(dst, mid, y+1, fmt.Sprintf("%d", e.HP), core.ColorRed)
		case cell.Hero != 0:
			h, ok := s.Registry.Hero(cell.Hero)
			if !ok {
				continue
			}
			color := core.ParseColor(h.Def.Color)
			if h.Downed() {
				color = core.ColorGray
			} else if g.flashing(cell.Pos) {
				color = core.ColorBrightRed
			}
			drawCentered(dst, mid, y, glyph(h.Def.Glyph, h.Def.ID), color)
			drawCentered(dst, mid, y+1, fmt.Sprintf("%d", h.HP), core.ColorGreen)
		case cell.Tile != 0:
			t, ok := s.Registry.Tile(cell.Tile)
			if !ok {
				continue
			}
			drawCentered(dst, mid, y, glyph(t.Def.Glyph, t.Def.ID), core.ParseColor(t.Def.Color))
			if note := tileNote(t.Def, t.Remaining, t.Stored); note != "" {
				drawCentered(dst, mid, y+1, note, core.ColorGray)
			}
		default:
			dst.SetColored(mid, y, '·', core.ColorGray)
		}
	}

	if g.held != nil {
		x, y := g.cellOrigin(originX, originY, *g.held)
		dst.SetColored(x, y, '<', core.ColorBrightMagenta)
		dst.SetColored(x+cellWidth-1, y, '>', core.ColorBrightMagenta)
	}
	x, y := g.cellOrigin(originX, originY, g.cursor)
	dst.SetColored(x, y, '[', core.ColorBrightYellow)
	dst.SetColored(x+cellWidth-1, y, ']', core.ColorBrightYellow)
}

// renderMotions draws merge tiles still flying toward their anchor.
// Arcs may leave the board; those frames are clipped to the frame interior.
func (g *Game) renderMotions(dst *core.Screen, inner core.Rect) {
	h := g.session.Grid.H
	for _, m := range g.session.Merge.Motions() {
		if m.Progress() <= 0 {
			continue
		}
		fx, fy := m.Position()
		x := inner.X + int(math.Round(fx*cellWidth)) + cellWidth/2
		y := inner.Y + int(math.Round((float64(h-1)-fy)*cellHeight))
		if !inner.Contains(x, y) {
			continue
		}
		drawCentered(dst, x, y, glyph(m.Glyph, ""), core.ParseColor(m.Color))
	}
}

func (g *Game) renderFooter(dst *core.Screen, x, y int) {
	s := g.session
	col := x
	for _, h := range s.Registry.Heroes() {
		status := fmt.Sprintf("%s %d/%d st%d L%d  ", glyph(h.Def.Glyph, h.Def.ID), h.HP, h.MaxHP, h.Stamina, h.Level)
		color := core.ColorDefault
		if h.Downed() {
			color = core.ColorGray
		}
		dst.DrawTextColored(col, y, status, color)
		col += len(status)
	}

	if g.message != "" && g.tick < g.messageUntil {
		dst.DrawTextColored(x, y+1, g.message, core.ColorBrightCyan)
	} else if t, ok := s.Registry.TileAt(g.cursor); ok {
		dst.DrawText(x, y+1, t.Def.DisplayName())
	}
	dst.DrawTextColored(x, y+2, "arrows move  space pick/drop  f attack  e feed  t open  q quit", core.ColorGray)
}

func (g *Game) renderGameOver(dst *core.Screen, y int) {
	dst.DrawTextCentered(y-1, "                     ")
	dst.DrawTextCentered(y, " ALL HEROES ARE DOWN ")
	dst.DrawTextCentered(y+1, fmt.Sprintf(" Final score: %-6d ", g.session.Stats().Score))
	dst.DrawTextCentered(y+2, "  Press R to restart ")
}

func (g *Game) flashing(c board.Coord) bool {
	at, ok := g.lastDamage[c]
	return ok && g.tick-at < damageFlash
}

func glyph(g, id string) string {
	if g != "" {
		return g
	}
	if id == "" {
		return "*"
	}
	r := []rune(strings.ToUpper(id))
	return string(r[:min(2, len(r))])
}

func tileNote(def *defs.TileDef, remaining int, stored map[string]int) string {
	switch def.Category {
	case defs.CategoryLootBag:
		if remaining > 0 {
			return fmt.Sprintf("x%d", remaining)
		}
	case defs.CategoryStation:
		n := 0
		for _, v := range stored {
			n += v
		}
		if n > 0 {
			return fmt.Sprintf("+%d", n)
		}
	}
	return ""
}

func drawCentered(dst *core.Screen, midX, y int, text string, color core.Color) {
	n := len([]rune(text))
	dst.DrawTextColored(midX-n/2, y, text, color)
}
