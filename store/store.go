// ABOUTME: Dealer directory store owning the session's dealers and activity log
// ABOUTME: Loads from a remote resource with local fallback and persists every mutation
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/dealerdesk/models"
)

// Local fallback slot names.
const (
	DealersSlot    = "dealerData"
	ActivitiesSlot = "dealerActivities"
)

var (
	errOffline    = errors.New("no remote configured")
	errNoFallback = errors.New("no local fallback configured")
)

// Remote is the network side of the persistence boundary.
type Remote interface {
	LoadDealers(ctx context.Context) ([]models.DealerRecord, error)
	SaveDealers(ctx context.Context, dealers []models.DealerRecord) error
	LoadActivities(ctx context.Context) ([]models.ActivityEntry, error)
	// AppendActivity stores one entry and returns the server's copy, or nil
	// when the server did not echo it back.
	AppendActivity(ctx context.Context, entry models.ActivityEntry) (*models.ActivityEntry, error)
}

// Fallback is local storage holding whole collections in named slots.
type Fallback interface {
	// Load decodes the slot into v. It reports false when the slot is empty.
	Load(ctx context.Context, slot string, v any) (bool, error)
	Save(ctx context.Context, slot string, v any) error
}

// Source says where a collection was loaded from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// CollectionReport describes how one collection was loaded. Err is the
// remote failure, if any; it is informational only.
type CollectionReport struct {
	Source Source
	Count  int
	Err    error
}

// LoadReport is the outcome of Initialize.
type LoadReport struct {
	Dealers    CollectionReport
	Activities CollectionReport
}

// SaveStatus is how durable a mutation ended up.
type SaveStatus int

const (
	Unsaved SaveStatus = iota
	SavedLocally
	SavedRemote
)

func (s SaveStatus) String() string {
	switch s {
	case SavedRemote:
		return "saved"
	case SavedLocally:
		return "saved locally"
	default:
		return "not saved"
	}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFallback sets local fallback storage.
func WithFallback(fb Fallback) Option {
	return func(s *Store) {
		s.fallback = fb
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

// Store is the single authoritative in-memory collection of dealers and
// activities for a session. Adapters read snapshots and call its operations;
// they never mutate the collections directly.
type Store struct {
	remote   Remote
	fallback Fallback
	logger   *zap.Logger
	clock    func() time.Time

	mu         sync.RWMutex
	dealers    []models.DealerRecord
	activities []models.ActivityEntry

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New creates a store. A nil remote puts the store in offline mode, where
// every remote call fails and mutations land in the fallback only.
func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:    remote,
		logger:    zap.NewNop(),
		clock:     time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// touch returns a timestamp strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// Initialize replaces both collections from the remote resource, falling
// back to local storage per collection when the remote load fails. Loading
// never writes the fallback; only saves do, so a change kept locally while
// the remote was down survives the next successful load.
func (s *Store) Initialize(ctx context.Context) LoadReport {
	var (
		report     LoadReport
		dealers    []models.DealerRecord
		activities []models.ActivityEntry
		g          errgroup.Group
	)

	g.Go(func() error {
		dealers, report.Dealers = s.loadDealers(ctx)
		return nil
	})
	g.Go(func() error {
		activities, report.Activities = s.loadActivities(ctx)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.dealers = dealers
	s.activities = activities
	s.mu.Unlock()

	s.logger.Info("dealer directory loaded",
		zap.String("dealers_source", string(report.Dealers.Source)),
		zap.Int("dealers", report.Dealers.Count),
		zap.String("activities_source", string(report.Activities.Source)),
		zap.Int("activities", report.Activities.Count),
	)

	s.notify(Event{Kind: EventReloaded})
	return report
}

func (s *Store) loadDealers(ctx context.Context) ([]models.DealerRecord, CollectionReport) {
	dealers, err := s.fetchDealers(ctx)
	if err == nil {
		dealers = s.normalizeDealers(dealers)
		return dealers, CollectionReport{Source: SourceRemote, Count: len(dealers)}
	}

	s.logger.Warn("failed to load dealers from remote, trying local fallback", zap.Error(err))
	report := CollectionReport{Source: SourceEmpty, Err: err}

	var local []models.DealerRecord
	found, fbErr := s.restore(ctx, DealersSlot, &local)
	if fbErr != nil {
		s.logger.Error("failed to read local dealers", zap.Error(fbErr))
		return nil, report
	}
	if !found {
		return nil, report
	}

	local = s.normalizeDealers(local)
	report.Source = SourceFallback
	report.Count = len(local)
	return local, report
}

func (s *Store) loadActivities(ctx context.Context) ([]models.ActivityEntry, CollectionReport) {
	activities, err := s.fetchActivities(ctx)
	if err == nil {
		activities = s.normalizeActivities(activities)
		return activities, CollectionReport{Source: SourceRemote, Count: len(activities)}
	}

	s.logger.Warn("failed to load activities from remote, trying local fallback", zap.Error(err))
	report := CollectionReport{Source: SourceEmpty, Err: err}

	var local []models.ActivityEntry
	found, fbErr := s.restore(ctx, ActivitiesSlot, &local)
	if fbErr != nil {
		s.logger.Error("failed to read local activities", zap.Error(fbErr))
		return nil, report
	}
	if !found {
		return nil, report
	}

	local = s.normalizeActivities(local)
	report.Source = SourceFallback
	report.Count = len(local)
	return local, report
}

// normalizeDealers applies defaults and re-keys any id that repeats.
func (s *Store) normalizeDealers(dealers []models.DealerRecord) []models.DealerRecord {
	now := s.now()
	seen := make(map[models.ID]struct{}, len(dealers))
	out := make([]models.DealerRecord, 0, len(dealers))
	for _, d := range dealers {
		d.Normalize(now)
		if _, dup := seen[d.ID]; dup {
			fresh := models.NewID()
			s.logger.Warn("duplicate dealer id, assigning a new one",
				zap.String("id", d.ID.String()), zap.String("new_id", fresh.String()))
			d.ID = fresh
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}

func (s *Store) normalizeActivities(activities []models.ActivityEntry) []models.ActivityEntry {
	now := s.now()
	out := make([]models.ActivityEntry, 0, len(activities))
	for _, a := range activities {
		a.Normalize(now)
		out = append(out, a)
	}
	return out
}

func (s *Store) fetchDealers(ctx context.Context) ([]models.DealerRecord, error) {
	if s.remote == nil {
		return nil, &NetworkError{Op: "load dealers", Err: errOffline}
	}
	return s.remote.LoadDealers(ctx)
}

func (s *Store) fetchActivities(ctx context.Context) ([]models.ActivityEntry, error) {
	if s.remote == nil {
		return nil, &NetworkError{Op: "load activities", Err: errOffline}
	}
	return s.remote.LoadActivities(ctx)
}

// mirror writes v to the fallback. It detaches from ctx cancellation: the
// local copy is the last resort when the remote call timed out.
func (s *Store) mirror(ctx context.Context, slot string, v any) error {
	if s.fallback == nil {
		return errNoFallback
	}
	return s.fallback.Save(context.WithoutCancel(ctx), slot, v)
}

func (s *Store) restore(ctx context.Context, slot string, v any) (bool, error) {
	if s.fallback == nil {
		return false, nil
	}
	return s.fallback.Load(ctx, slot, v)
}

// Dealers returns a copy of the collection in insertion order.
func (s *Store) Dealers() []models.DealerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDealers(s.dealers)
}

// Activities returns a copy of the activity log, most recent first.
func (s *Store) Activities() []models.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivityEntry, len(s.activities))
	copy(out, s.activities)
	return out
}

// ActivitiesFor returns the entries logged against one dealer.
func (s *Store) ActivitiesFor(dealerID models.ID) []models.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ActivityEntry
	for _, a := range s.activities {
		if a.DealerID == dealerID {
			out = append(out, a)
		}
	}
	return out
}

// Dealer looks up one record by id.
func (s *Store) Dealer(id models.ID) (models.DealerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.dealers[i].Clone(), true
	}
	return models.DealerRecord{}, false
}

// DealerName resolves an activity's dealer reference for display.
func (s *Store) DealerName(id models.ID) string {
	if d, ok := s.Dealer(id); ok {
		return d.Name
	}
	return models.UnknownDealer
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id models.ID) int {
	for i := range s.dealers {
		if s.dealers[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneDealers(in []models.DealerRecord) []models.DealerRecord {
	out := make([]models.DealerRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
