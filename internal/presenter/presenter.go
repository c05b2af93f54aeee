// Package presenter derives the displayed menu list from cached records and
// the current view state.
package presenter

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/pankajredekar/lemonmenu/internal/model"
)

// ViewState holds the user-controlled toggles. The zero value is the state
// at mount: unsorted, no search phrase.
type ViewState struct {
	SortByName   bool
	SearchPhrase string
}

// WithSortByName returns a copy of s with the sort toggle set
func (s ViewState) WithSortByName(on bool) ViewState {
	s.SortByName = on
	return s
}

// WithSearchPhrase returns a copy of s with the search phrase set
func (s ViewState) WithSearchPhrase(phrase string) ViewState {
	s.SearchPhrase = phrase
	return s
}

// Derive computes the list to render. It never modifies records.
func Derive(records []model.MenuRecord, state ViewState) []model.MenuRecord {
	out := records
	if state.SortByName {
		out = SortByTitle(out)
	}
	if state.SearchPhrase != "" {
		out = Filter(out, state.SearchPhrase)
	}
	if out == nil {
		return []model.MenuRecord{}
	}
	return out
}

// SortByTitle returns a copy ordered by title, byte-wise ascending.
// Records with equal titles keep their relative order.
func SortByTitle(records []model.MenuRecord) []model.MenuRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b model.MenuRecord) int {
		return cmp.Compare(a.Title, b.Title)
	})
	return out
}

// Filter returns the records whose title contains phrase (case-sensitive)
func Filter(records []model.MenuRecord, phrase string) []model.MenuRecord {
	out := make([]model.MenuRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.Title, phrase) {
			out = append(out, r)
		}
	}
	return out
}

// Titles extracts the titles of records in order
func Titles(records []model.MenuRecord) []string {
	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}
	return titles
}

// Presenter keeps the latest snapshot and view state and re-derives the
// view whenever either changes.
type Presenter struct {
	mu       sync.Mutex
	records  []model.MenuRecord
	state    ViewState
	current  []model.MenuRecord
	views    chan []model.MenuRecord
	done     chan struct{}
	attached bool
}

// New creates a presenter with the mount state and an empty view
func New() *Presenter {
	return &Presenter{
		current: []model.MenuRecord{},
		views:   make(chan []model.MenuRecord, 1),
		done:    make(chan struct{}),
	}
}

// Attach consumes snapshots until the channel is closed, re-deriving the
// view on each one. It may be called only once.
func (p *Presenter) Attach(snapshots <-chan []model.MenuRecord) {
	p.mu.Lock()
	if p.attached {
		p.mu.Unlock()
		panic("presenter: Attach called twice")
	}
	p.attached = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		for snapshot := range snapshots {
			p.mu.Lock()
			p.records = snapshot
			p.renderLocked()
			p.mu.Unlock()
		}
	}()
}

// Detached is closed once the snapshot channel given to Attach is closed
func (p *Presenter) Detached() <-chan struct{} {
	return p.done
}

// SetState replaces the view state and re-derives the view
func (p *Presenter) SetState(state ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.renderLocked()
}

// State returns the current view state
func (p *Presenter) State() ViewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Records returns a copy of the latest snapshot, before any sorting or
// filtering
func (p *Presenter) Records() []model.MenuRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.records == nil {
		return []model.MenuRecord{}
	}
	return slices.Clone(p.records)
}

// Current returns a copy of the most recently derived view
func (p *Presenter) Current() []model.MenuRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.current)
}

// Views delivers each newly derived view. Only the newest undelivered view
// is retained.
func (p *Presenter) Views() <-chan []model.MenuRecord {
	return p.views
}

func (p *Presenter) renderLocked() {
	p.current = Derive(p.records, p.state)
	select {
	case <-p.views:
	default:
	}
	select {
	case p.views <- slices.Clone(p.current):
	default:
	}
}
