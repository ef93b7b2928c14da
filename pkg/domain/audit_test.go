package domain

import (
	"testing"
	"time"
)

func TestEventHashDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := Event{
		ID:        "e1",
		Timestamp: ts,
		Action:    "execute.commit",
		Actor:     "human",
		Metadata:  map[string]interface{}{"applied": 2, "failed": 0},
	}

	h1 := e.CalculateHash()
	h2 := e.CalculateHash()
	if h1 != h2 {
		t.Error("hash must be deterministic")
	}

	e.Metadata["applied"] = 3
	if e.CalculateHash() == h1 {
		t.Error("metadata change must change the hash")
	}
}

func TestEventHashChainsOnPrevHash(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := Event{ID: "e1", Timestamp: ts, Action: "translate", Actor: "ai"}
	b := a
	b.PrevHash = "deadbeef"
	if a.CalculateHash() == b.CalculateHash() {
		t.Error("prev hash must be part of the event hash")
	}
}
