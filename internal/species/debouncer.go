// Package species provides a debounced free-text species lookup against the
// eBird taxonomy search, for observation-entry autocomplete. Each new query
// supersedes any in-flight request: stale results are discarded, never
// surfaced over newer state.
package species

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/featherquest/featherquest-go/internal/ebird"
	"github.com/featherquest/featherquest-go/internal/logging"
)

// MinQueryLength is the shortest query that triggers a request. Shorter
// queries are a no-op, not an error.
const MinQueryLength = 2

// Searcher is the slice of the eBird client the debouncer depends on.
type Searcher interface {
	SearchSpecies(ctx context.Context, query string) ([]ebird.BirdSpecies, error)
}

// Debouncer throttles species lookups for one search session. Callbacks are
// invoked serially and must not call back into the Debouncer.
type Debouncer struct {
	searcher Searcher
	onUpdate func([]ebird.BirdSpecies)
	onError  func(error)
	log      *slog.Logger

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	suggestions []ebird.BirdSpecies
	closed      bool
}

// NewDebouncer creates a debouncer delivering suggestion lists to onUpdate and
// lookup failures to onError. Either callback may be nil.
func NewDebouncer(searcher Searcher, onUpdate func([]ebird.BirdSpecies), onError func(error)) *Debouncer {
	return &Debouncer{
		searcher: searcher,
		onUpdate: onUpdate,
		onError:  onError,
		log:      logging.ForService("species"),
	}
}

// Search issues a lookup for the given text. Queries shorter than
// MinQueryLength produce no request. Each call supersedes any in-flight
// request: a result for an older query arriving after a newer query has been
// issued is discarded. Failures are reported through onError and leave the
// suggestion list unchanged from its last good state.
func (d *Debouncer) Search(query string) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.generation++
	generation := d.generation
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	go d.run(ctx, generation, query)
}

func (d *Debouncer) run(ctx context.Context, generation uint64, query string) {
	results, err := d.searcher.SearchSpecies(ctx, query)

	// Deliver under the lock so a superseded lookup can never surface its
	// result after a newer one has been delivered.
	d.mu.Lock()
	defer d.mu.Unlock()

	if generation != d.generation || d.closed {
		if d.log != nil {
			d.log.Debug("discarding stale species search result",
				"query", query,
				"generation", generation,
				"current_generation", d.generation)
		}
		return
	}

	if err != nil {
		if d.log != nil {
			d.log.Warn("species search failed",
				"query", query,
				"error", err)
		}
		if d.onError != nil {
			d.onError(err)
		}
		return
	}

	d.suggestions = results
	if d.onUpdate != nil {
		d.onUpdate(results)
	}
}

// Suggestions returns the last successfully delivered suggestion list.
func (d *Debouncer) Suggestions() []ebird.BirdSpecies {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suggestions
}

// Close cancels any in-flight lookup and stops further delivery.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
