package game

import (
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/config"
	"github.com/vovakirdan/mergecrawl/internal/defs"
)

func autoRun(t *testing.T, seed int64, steps int) (*Session, []string) {
	t.Helper()
	db := defs.NewDatabase(nil)
	if err := defs.Open(db, ""); err != nil {
		t.Fatalf("defs.Open() failed: %v", err)
	}
	s, err := NewSession(Options{Config: config.DefaultGameConfig(), DB: db, Seed: seed, RunID: "auto"})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	s.Start()

	var log []string
	for range steps {
		action, ok := s.AutoStep()
		if !ok {
			break
		}
		log = append(log, action)
		if bad := s.Registry.CheckBindings(); len(bad) > 0 {
			t.Fatalf("binding violations after %q: %v", action, bad)
		}
	}
	return s, log
}

func TestAutoStepIsDeterministic(t *testing.T) {
	a, logA := autoRun(t, 99, 200)
	b, logB := autoRun(t, 99, 200)

	if len(logA) != len(logB) {
		t.Fatalf("action counts differ: %d vs %d", len(logA), len(logB))
	}
	for i := range logA {
		if logA[i] != logB[i] {
			t.Fatalf("action %d differs: %q vs %q", i, logA[i], logB[i])
		}
	}
	if a.Stats() != b.Stats() {
		t.Errorf("stats differ: %+v vs %+v", a.Stats(), b.Stats())
	}
}

func TestAutoStepPlaysStartingBoard(t *testing.T) {
	s, log := autoRun(t, 5, 50)
	if len(log) == 0 {
		t.Fatal("expected at least one playable action from the starting board")
	}
	if s.Meter.Value() == 0 && s.Meter.Advances() == 0 {
		t.Errorf("no progress after %d actions: %v", len(log), log)
	}
}

func TestAutoStepStopsWhenOver(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	s.over = true
	if _, ok := s.AutoStep(); ok {
		t.Error("AutoStep() should refuse a finished run")
	}
}
