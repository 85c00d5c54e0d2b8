package anim

import (
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/board"
)

func TestMotionFinishesAfterDelayAndDuration(t *testing.T) {
	r := NewRunner()
	done := 0
	m := &Motion{
		From:     board.C(0, 0),
		To:       board.C(2, 0),
		Delay:    2,
		Duration: 4,
		OnDone:   func() { done++ },
	}
	r.Start(m)

	frames := r.Settle(100)
	if frames != 6 {
		t.Errorf("Settle() = %d frames, expected 6", frames)
	}
	if done != 1 {
		t.Errorf("OnDone called %d times, expected 1", done)
	}
	x, y := m.Position()
	if x != 2 || y != 0 {
		t.Errorf("Position() = (%v, %v), expected (2, 0)", x, y)
	}
}

func TestGroupFiresOnceAfterAllTasks(t *testing.T) {
	r := NewRunner()
	fired := 0
	g := NewGroup(r, func() { fired++ })

	g.Add(Wait(1))
	g.Add(Wait(3))
	g.Add(Wait(2))
	g.Seal()

	r.Tick()
	r.Tick()
	if fired != 0 {
		t.Fatal("group fired before last task finished")
	}
	r.Tick()
	if fired != 1 {
		t.Errorf("fired = %d after last task, expected 1", fired)
	}
	r.Settle(10)
	g.Seal()
	if fired != 1 {
		t.Errorf("fired = %d, expected exactly once", fired)
	}
	if g.Add(Wait(1)) {
		t.Error("Add() after Seal() should fail")
	}
}

func TestEmptyGroupFiresOnSeal(t *testing.T) {
	r := NewRunner()
	fired := false
	g := NewGroup(r, func() { fired = true })
	g.Seal()
	if !fired {
		t.Error("empty sealed group should fire immediately")
	}
}

func TestHitStopFreezesTasks(t *testing.T) {
	r := NewRunner()
	finished := false
	r.Start(TaskFunc(func(dt float64) bool {
		finished = true
		return true
	}))

	r.HitStop(3)
	r.HitStop(1)
	for range 3 {
		if r.TimeScale() != 0 {
			t.Error("TimeScale() should be 0 during hit-stop")
		}
		r.Tick()
	}
	if finished {
		t.Fatal("task stepped during hit-stop")
	}
	r.Tick()
	if !finished {
		t.Error("task should step after hit-stop ends")
	}
}

func TestEaseOutQuad(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{0, 0},
		{0.5, 0.75},
		{1, 1},
	}
	for _, tc := range tests {
		if got := EaseOutQuad(tc.in); got != tc.out {
			t.Errorf("EaseOutQuad(%v) = %v, expected %v", tc.in, got, tc.out)
		}
	}
}
