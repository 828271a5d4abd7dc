package events

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/nathoo/sagacore/types"
)

func quietBus(history bool) *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), history)
}

// recorder appends its id to calls when invoked.
func recorder(calls *[]string, id string) Handler {
	return HandlerFunc(func(_ *types.World, _ *Event) {
		*calls = append(*calls, id)
	})
}

func TestPriorityOrder(t *testing.T) {
	b := quietBus(false)
	var calls []string

	b.Subscribe("tick", recorder(&calls, "z"), Low, "z")
	b.Subscribe("tick", recorder(&calls, "a"), Critical, "a")
	b.Subscribe("tick", recorder(&calls, "m"), Normal, "m")

	b.Publish(nil, "tick", nil, "test", false)

	want := []string{"a", "m", "z"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestTieBreakBySubscriberID(t *testing.T) {
	b := quietBus(false)
	var calls []string

	b.Subscribe("tick", recorder(&calls, "charlie"), High, "charlie")
	b.Subscribe("tick", recorder(&calls, "alpha"), High, "alpha")
	b.Subscribe("tick", recorder(&calls, "bravo"), High, "bravo")

	b.Publish(nil, "tick", nil, "test", false)

	want := []string{"alpha", "bravo", "charlie"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestWildcardInterleaves(t *testing.T) {
	b := quietBus(false)
	var calls []string

	b.Subscribe("tick", recorder(&calls, "specific-low"), Low, "specific-low")
	b.Subscribe(Wildcard, recorder(&calls, "wild-high"), High, "wild-high")
	b.Subscribe("tick", recorder(&calls, "specific-crit"), Critical, "specific-crit")
	b.Subscribe(Wildcard, recorder(&calls, "wild-low"), Low, "wild-low")

	b.Publish(nil, "tick", nil, "test", false)

	want := []string{"specific-crit", "wild-high", "specific-low", "wild-low"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
	if got := b.Subscribers("tick"); !reflect.DeepEqual(got, want) {
		t.Errorf("Subscribers = %v, want %v", got, want)
	}
}

func TestCancelStopsLaterHandlers(t *testing.T) {
	b := quietBus(false)
	var calls []string

	b.Subscribe("take", HandlerFunc(func(_ *types.World, ev *Event) {
		calls = append(calls, "guard")
		ev.Cancel()
	}), Critical, "guard")
	b.Subscribe("take", recorder(&calls, "normal"), Normal, "normal")
	b.Subscribe(Wildcard, recorder(&calls, "logger"), Low, "logger")

	ev := b.Publish(nil, "take", nil, "test", true)

	if !ev.Cancelled {
		t.Error("event should be cancelled")
	}
	if !reflect.DeepEqual(calls, []string{"guard"}) {
		t.Errorf("calls = %v, want only guard", calls)
	}
}

func TestNonCancellableIgnoresCancel(t *testing.T) {
	b := quietBus(false)
	var calls []string
	var cancelled bool

	b.Subscribe("moved", HandlerFunc(func(_ *types.World, ev *Event) {
		calls = append(calls, "first")
		cancelled = ev.Cancel()
	}), Critical, "first")
	b.Subscribe("moved", recorder(&calls, "second"), Low, "second")

	ev := b.Publish(nil, "moved", nil, "test", false)

	if cancelled || ev.Cancelled {
		t.Error("non-cancellable event was cancelled")
	}
	if len(calls) != 2 {
		t.Errorf("calls = %v, want both handlers", calls)
	}
}

func TestHandlerReceivesWorld(t *testing.T) {
	b := quietBus(false)
	w := &types.World{Turn: 7}
	var seen int
	b.Subscribe("tick", HandlerFunc(func(w *types.World, _ *Event) {
		seen = w.Turn
	}), Normal, "h")
	b.Publish(w, "tick", nil, "test", false)
	if seen != 7 {
		t.Errorf("handler saw turn %d, want 7", seen)
	}
}

func TestPanickingHandlerDoesNotStopDispatch(t *testing.T) {
	b := quietBus(false)
	var calls []string

	b.Subscribe("tick", HandlerFunc(func(_ *types.World, _ *Event) {
		panic("boom")
	}), Critical, "bad")
	b.Subscribe("tick", recorder(&calls, "good"), Low, "good")

	b.Publish(nil, "tick", nil, "test", false)

	if !reflect.DeepEqual(calls, []string{"good"}) {
		t.Errorf("calls = %v, want [good]", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := quietBus(false)
	var calls []string
	b.Subscribe("tick", recorder(&calls, "a"), Normal, "a")

	if !b.Unsubscribe("tick", "a") {
		t.Fatal("Unsubscribe returned false")
	}
	if b.Unsubscribe("tick", "a") {
		t.Error("second Unsubscribe should return false")
	}
	b.Publish(nil, "tick", nil, "test", false)
	if len(calls) != 0 {
		t.Errorf("unsubscribed handler ran: %v", calls)
	}
}

func TestResubscribeReplaces(t *testing.T) {
	b := quietBus(false)
	var calls []string
	b.Subscribe("tick", recorder(&calls, "old"), Normal, "a")
	b.Subscribe("tick", recorder(&calls, "new"), Normal, "a")
	b.Publish(nil, "tick", nil, "test", false)
	if !reflect.DeepEqual(calls, []string{"new"}) {
		t.Errorf("calls = %v, want [new]", calls)
	}
}

func TestHistory(t *testing.T) {
	b := quietBus(true)
	b.Subscribe("take", HandlerFunc(func(_ *types.World, ev *Event) {
		ev.Data["seen"] = true
		ev.Cancel()
	}), Normal, "h")

	b.Publish(nil, "move", map[string]any{"to": "forest"}, "world", false)
	b.Publish(nil, "take", map[string]any{"item": "key"}, "inventory", true)
	b.Publish(nil, "move", map[string]any{"to": "village"}, "world", false)

	all := b.History("", AllHistory)
	if len(all) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(all))
	}
	if all[0].Seq >= all[1].Seq || all[1].Seq >= all[2].Seq {
		t.Error("history not chronological")
	}
	if !all[1].Cancelled || all[1].Data["seen"] != true {
		t.Errorf("take snapshot = %+v, want post-dispatch state", all[1])
	}

	moves := b.History("move", 1)
	if len(moves) != 1 || moves[0].Data["to"] != "village" {
		t.Errorf("History(move, 1) = %+v, want last move", moves)
	}

	b.ClearHistory()
	if len(b.History("", AllHistory)) != 0 {
		t.Error("ClearHistory left entries")
	}
}

func TestHistoryDisabled(t *testing.T) {
	b := quietBus(false)
	b.Publish(nil, "tick", nil, "test", false)
	if got := b.History("", 10); len(got) != 0 {
		t.Errorf("History with recording off = %v, want empty", got)
	}
}

func TestHistoryLimits(t *testing.T) {
	b := quietBus(true)
	for i := 0; i < 3; i++ {
		b.Publish(nil, "tick", map[string]any{"n": i}, "test", false)
	}

	tests := []struct {
		limit int
		want  []int
	}{
		{0, nil},
		{1, []int{2}},
		{2, []int{1, 2}},
		{3, []int{0, 1, 2}},
		{10, []int{0, 1, 2}},
		{AllHistory, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		got := b.History("tick", tt.limit)
		var ns []int
		for _, ev := range got {
			ns = append(ns, ev.Int("n"))
		}
		if !reflect.DeepEqual(ns, tt.want) {
			t.Errorf("History(tick, %d) = %v, want %v", tt.limit, ns, tt.want)
		}
	}
}

func TestSetActiveSkipsInactive(t *testing.T) {
	b := quietBus(false)
	var calls []string
	b.Subscribe("tick", recorder(&calls, "a"), Normal, "a")
	b.Subscribe(Wildcard, recorder(&calls, "w"), Normal, "w")

	muted := map[string]bool{"w": true}
	b.SetActive(func(id string) bool { return !muted[id] })
	b.Publish(nil, "tick", nil, "test", false)
	if !reflect.DeepEqual(calls, []string{"a"}) {
		t.Errorf("calls = %v, want [a]", calls)
	}
	if got := b.Subscribers("tick"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Subscribers = %v", got)
	}

	delete(muted, "w")
	calls = nil
	b.Publish(nil, "tick", nil, "test", false)
	if !reflect.DeepEqual(calls, []string{"a", "w"}) {
		t.Errorf("calls after unmute = %v", calls)
	}
}
