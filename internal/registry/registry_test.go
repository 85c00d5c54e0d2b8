package registry

import (
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/entity"
)

type idle struct{ name string }

func (b idle) Name() string                                 { return b.name }
func (b idle) ExecuteTurn(*entity.Enemy, TurnContext) bool { return true }

func TestRegisterAndCreate(t *testing.T) {
	Register("test_idle", func() Behaviour { return idle{name: "test_idle"} })

	if !Exists("test_idle") {
		t.Fatal("Exists() = false after Register")
	}
	b, err := Create("test_idle")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if b.Name() != "test_idle" {
		t.Errorf("Name() = %q", b.Name())
	}

	found := false
	for _, info := range List() {
		if info.Name == "test_idle" {
			found = true
		}
	}
	if !found {
		t.Error("List() missing test_idle")
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no_such_behaviour"); err == nil {
		t.Error("Create() should fail for unknown name")
	}
}

func TestDuplicateRegisterPanics(t *testing.T) {
	Register("test_dup", func() Behaviour { return idle{name: "test_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() should panic")
		}
	}()
	Register("test_dup", func() Behaviour { return idle{name: "test_dup"} })
}
