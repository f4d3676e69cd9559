package observations

import (
	"context"
	"log/slog"
	"sync"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/logging"
)

// subscriptionBuffer bounds how many undelivered snapshots a listener may lag
// behind before the subscription is declared lost.
const subscriptionBuffer = 16

// RemoteLog is the slice of the datastore the store depends on.
type RemoteLog interface {
	SaveObservation(ctx context.Context, obs *datastore.Observation) error
	DeleteObservation(ctx context.Context, userID, keyID string) error
	GetObservations(ctx context.Context, userID string) ([]datastore.Observation, error)
}

// Store maintains the live ordered collection for one user. Every committed
// mutation triggers a reload from the remote log and a broadcast of the fresh
// snapshot to all subscriptions, in commit order.
type Store struct {
	log    RemoteLog
	userID string
	logger *slog.Logger

	// commitMu serializes mutations and snapshot broadcasts so every
	// subscription observes the same snapshots in the same order.
	commitMu sync.Mutex

	subsMu sync.Mutex
	subs   []*Subscription
}

// NewStore creates a store over the remote log for the given user.
func NewStore(log RemoteLog, userID string) *Store {
	return &Store{
		log:    log,
		userID: userID,
		logger: logging.ForService("observations"),
	}
}

// Subscription is a live listener registration. Unsubscribe stops callback
// delivery; it is guaranteed that no callback fires after Unsubscribe returns.
type Subscription struct {
	store    *Store
	ch       chan Collection
	ctx      context.Context
	cancel   context.CancelFunc
	onUpdate func(Collection)
	onError  func(error)
	done     chan struct{}

	mu   sync.Mutex
	lost error
}

// Subscribe registers a live listener. onUpdate fires once with the initial
// collection and thereafter after every committed mutation, with the full
// re-sorted collection each time, never a delta. onError fires at most once,
// when the listener cannot keep up and the subscription is terminated.
func (s *Store) Subscribe(ctx context.Context, onUpdate func(Collection), onError func(error)) (*Subscription, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		store:    s,
		ch:       make(chan Collection, subscriptionBuffer),
		ctx:      subCtx,
		cancel:   cancel,
		onUpdate: onUpdate,
		onError:  onError,
		done:     make(chan struct{}),
	}

	s.subsMu.Lock()
	s.subs = append(s.subs, sub)
	s.subsMu.Unlock()

	go sub.deliver()

	// Initial fire happens under the commit lock, so it is ordered before
	// any snapshot from a later mutation.
	sub.ch <- snapshot

	s.logDebug("subscriber added", "subscribers", s.subscriberCount())
	return sub, nil
}

// Unsubscribe cancels the subscription. No onUpdate or onError callback will
// be delivered after it returns.
func (sub *Subscription) Unsubscribe() {
	sub.store.removeSubscription(sub)
	sub.cancel()
	<-sub.done
}

func (sub *Subscription) deliver() {
	defer close(sub.done)
	for {
		select {
		case <-sub.ctx.Done():
			sub.mu.Lock()
			lost := sub.lost
			sub.mu.Unlock()
			if lost != nil && sub.onError != nil {
				sub.onError(lost)
			}
			return
		case snapshot := <-sub.ch:
			sub.onUpdate(snapshot)
		}
	}
}

func (sub *Subscription) markLost(err error) {
	sub.mu.Lock()
	sub.lost = err
	sub.mu.Unlock()
	sub.cancel()
}

// Create validates the observation, appends it to the remote log and
// broadcasts the resulting snapshot. The returned id is the store-assigned
// key. The new entry becomes visible to subscribers only through the
// broadcast, never through a local patch.
func (s *Store) Create(ctx context.Context, obs *Observation) (string, error) {
	if err := obs.Validate(); err != nil {
		return "", err
	}

	record := toRecord(s.userID, obs)
	if err := s.log.SaveObservation(ctx, record); err != nil {
		return "", err
	}

	s.logDebug("observation created",
		"key_id", record.KeyID,
		"bird_name", obs.BirdName)

	s.broadcastAfterCommit(ctx)
	return record.KeyID, nil
}

// Delete removes the observation with the given id and broadcasts the
// resulting snapshot. Deleting an id that is absent at execution time returns
// ErrNotFound; this policy is deliberate, so the caller always learns whether
// the key existed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.log.DeleteObservation(ctx, s.userID, id); err != nil {
		return err
	}

	s.logDebug("observation deleted", "key_id", id)

	s.broadcastAfterCommit(ctx)
	return nil
}

// Snapshot loads the current collection directly, for callers without a
// subscription.
func (s *Store) Snapshot(ctx context.Context) (Collection, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	return s.loadSnapshot(ctx)
}

// Close terminates all subscriptions.
func (s *Store) Close() {
	s.subsMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		<-sub.done
	}
}

// broadcastAfterCommit reloads the collection and pushes the fresh snapshot to
// every active subscription. A reload failure after a committed mutation is
// logged; the snapshot catches up on the next successful broadcast.
func (s *Store) broadcastAfterCommit(ctx context.Context) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to reload collection after commit",
				"user_id", s.userID,
				"error", err)
		}
		return
	}

	s.subsMu.Lock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		select {
		case <-sub.ctx.Done():
			s.removeSubscription(sub)
		case sub.ch <- snapshot:
		default:
			// Listener is not draining its channel. Terminate rather than
			// block commit ordering for everyone else.
			s.removeSubscription(sub)
			sub.markLost(errors.New(ErrSubscriptionLost).
				Component("observations").
				Category(errors.CategoryBroadcast).
				Context("user_id", s.userID).
				Build())
			if s.logger != nil {
				s.logger.Warn("subscriber channel full, terminating subscription",
					"user_id", s.userID)
			}
		}
	}
}

// loadSnapshot reads the full collection from the remote log and sorts it.
// Callers must hold commitMu.
func (s *Store) loadSnapshot(ctx context.Context) (Collection, error) {
	records, err := s.log.GetObservations(ctx, s.userID)
	if err != nil {
		return nil, err
	}

	snapshot := make(Collection, 0, len(records))
	for i := range records {
		snapshot = append(snapshot, fromRecord(&records[i]))
	}
	sortCollection(snapshot)
	return snapshot, nil
}

func (s *Store) removeSubscription(sub *Subscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
}

func (s *Store) subscriberCount() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
