package lemonmenu

import (
	"testing"
)

func TestNormalizeAndDerive(t *testing.T) {
	records, err := Normalize([]RemoteMenuEntry{
		{ID: 1, Title: "Pasta", Price: "10.00"},
		{ID: 2, Title: "Pizza", Price: "8.50"},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	got := Derive(records, ViewState{SearchPhrase: "zz"})
	if len(got) != 1 || got[0].Title != "Pizza" {
		t.Errorf("Expected only Pizza, got %+v", got)
	}

	got = Derive(records, ViewState{SortByName: true})
	if len(got) != 2 || got[0].Title != "Pasta" || got[1].Title != "Pizza" {
		t.Errorf("Expected Pasta, Pizza, got %+v", got)
	}
}

func TestNormalizeRejectsBadPrice(t *testing.T) {
	if _, err := Normalize([]RemoteMenuEntry{{ID: 1, Title: "Pasta", Price: "ten"}}); err == nil {
		t.Error("Expected error for non-decimal price")
	}
}
