package session

import (
	"errors"
	"path/filepath"
	"testing"

	"PriceBoard/internal/model"
)

var defaults = model.Selection{
	Symbols: []string{"BTC-USD", "SPY"},
	Period:  model.Period6mo,
	Mode:    model.ViewPrice,
}

func TestManager_DefaultsAndUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sessions.json")
	m, err := NewManager(path, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.Get("1"); got.Period != model.Period6mo || len(got.Symbols) != 2 {
		t.Errorf("expected defaults, got %+v", got)
	}

	if _, err := m.SetSymbols("1", []string{"GLD", "GLD", "QQQ"}); err != nil {
		t.Fatalf("SetSymbols: %v", err)
	}
	if _, err := m.SetPeriod("1", "1y"); err != nil {
		t.Fatalf("SetPeriod: %v", err)
	}
	sel, err := m.SetMode("1", "rebased")
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if len(sel.Symbols) != 2 || sel.Symbols[0] != "GLD" || sel.Period != model.Period1y || sel.Mode != model.ViewRebasedIndex {
		t.Errorf("unexpected selection: %+v", sel)
	}

	// other chats keep the defaults
	if got := m.Get("2"); got.Mode != model.ViewPrice {
		t.Errorf("chat 2 should be untouched, got %+v", got)
	}

	// state survives a restart
	m2, err := NewManager(path, defaults)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := m2.Get("1"); got.Mode != model.ViewRebasedIndex || got.Symbols[1] != "QQQ" {
		t.Errorf("expected persisted selection, got %+v", got)
	}

	if got := m2.Reset("1"); got.Period != model.Period6mo {
		t.Errorf("expected defaults after reset, got %+v", got)
	}
}

func TestManager_RejectsInvalid(t *testing.T) {
	m, err := NewManager("", defaults)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.SetSymbols("1", nil); !errors.Is(err, ErrNoSymbols) {
		t.Errorf("expected ErrNoSymbols, got %v", err)
	}
	if _, err := m.SetPeriod("1", "10y"); err == nil {
		t.Error("expected error for unknown period")
	}
	if _, err := m.SetMode("1", "candles"); err == nil {
		t.Error("expected error for unknown view")
	}
	if got := m.Get("1"); got.Period != model.Period6mo {
		t.Errorf("failed updates must not change the selection, got %+v", got)
	}
}

func TestManager_GetReturnsCopy(t *testing.T) {
	m, _ := NewManager("", defaults)
	sel := m.Get("1")
	sel.Symbols[0] = "MUTATED"
	if m.Get("1").Symbols[0] != "BTC-USD" {
		t.Error("Get must not expose internal state")
	}
}
