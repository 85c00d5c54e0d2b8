package events

import "testing"

func TestPublishOrder(t *testing.T) {
	var ch Channel[int]
	var got []string

	ch.Subscribe(func(v int) { got = append(got, "a") })
	ch.Subscribe(func(v int) { got = append(got, "b") })
	ch.Publish(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("dispatch order = %v, expected [a b]", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	var ch Channel[string]
	calls := 0

	unsub := ch.Subscribe(func(string) { calls++ })
	ch.Publish("x")
	unsub()
	ch.Publish("y")
	unsub()

	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
	if ch.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", ch.Len())
	}
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	var ch Channel[int]
	var order []int

	var unsubFirst func()
	unsubFirst = ch.Subscribe(func(v int) {
		order = append(order, 1)
		unsubFirst()
	})
	ch.Subscribe(func(v int) { order = append(order, 2) })

	ch.Publish(0)
	ch.Publish(0)

	expected := []int{1, 2, 2}
	if len(order) != len(expected) {
		t.Fatalf("order = %v, expected %v", order, expected)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("order[%d] = %d, expected %d", i, order[i], expected[i])
		}
	}
}

func TestNestedPublish(t *testing.T) {
	bus := NewBus()
	var seen []string

	bus.AdvanceFired.Subscribe(func(ev AdvanceFired) {
		seen = append(seen, "advance")
		bus.EnemySpawned.Publish(EnemySpawned{Def: "goblin"})
	})
	bus.EnemySpawned.Subscribe(func(ev EnemySpawned) {
		seen = append(seen, "spawned:"+ev.Def)
	})

	bus.AdvanceFired.Publish(AdvanceFired{Count: 1})

	if len(seen) != 2 || seen[1] != "spawned:goblin" {
		t.Errorf("seen = %v", seen)
	}
}
