package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergecrawl/internal/core"
)

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		want   core.Action
		isQuit bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{"arrow left", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{"wasd right", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}, core.ActionRight, false},
		{"space selects", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionSelect, false},
		{"enter selects", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionSelect, false},
		{"ability", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}}, core.ActionAbility, false},
		{"feed", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}}, core.ActionFeed, false},
		{"tap", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}}, core.ActionTap, false},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{"quit", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := km.MapKey(tt.msg)
			if got != tt.want || quit != tt.isQuit {
				t.Errorf("MapKey(%q) = %v, %v; expected %v, %v", tt.msg.String(), got, quit, tt.want, tt.isQuit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyDown}, &frame) {
		t.Error("down should not quit")
	}
	km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}}, &frame)
	if !frame.Has(core.ActionDown) || !frame.Has(core.ActionAbility) {
		t.Error("expected both actions in the frame")
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText() = %q", got)
	}
	if got := centerText("toolong", 3); got != "toolong" {
		t.Errorf("centerText() = %q", got)
	}
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(5, 2)
	s.DrawText(0, 0, "ab")
	if got, want := RenderScreen(s), s.String(); got != want {
		t.Errorf("uncolored RenderScreen() = %q, want %q", got, want)
	}

	s.SetColored(4, 1, '@', core.ColorRed)
	s.SetColored(3, 1, '#', core.Color(200))
	out := RenderScreen(s)
	if !strings.Contains(out, "@") || !strings.Contains(out, "#") {
		t.Errorf("RenderScreen() lost colored cells: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("RenderScreen() rows = %d, want 2", strings.Count(out, "\n")+1)
	}
}
