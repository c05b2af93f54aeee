// Package lemonmenu exposes the menu presentation pipeline for embedding.
package lemonmenu

import (
	"github.com/pankajredekar/lemonmenu/internal/model"
	"github.com/pankajredekar/lemonmenu/internal/presenter"
)

// MenuRecord is one cached menu entry
type MenuRecord = model.MenuRecord

// RemoteMenuEntry is one menu entry as served by the endpoint
type RemoteMenuEntry = model.RemoteMenuEntry

// ViewState holds the sort toggle and search phrase
type ViewState = presenter.ViewState

// Normalize converts wire entries into records, failing on the first
// price that is not a decimal number
func Normalize(entries []RemoteMenuEntry) ([]MenuRecord, error) {
	return model.ToRecords(entries)
}

// Derive computes the list to display for state
func Derive(records []MenuRecord, state ViewState) []MenuRecord {
	return presenter.Derive(records, state)
}
