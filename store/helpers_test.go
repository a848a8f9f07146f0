package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/harperreed/dealerdesk/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDown = errors.New("connection refused")

// fakeRemote records calls and serves canned collections.
type fakeRemote struct {
	mu sync.Mutex

	dealers    []models.DealerRecord
	activities []models.ActivityEntry

	loadDealersErr    error
	saveDealersErr    error
	loadActivitiesErr error
	appendErr         error
	echo              func(models.ActivityEntry) *models.ActivityEntry

	saves   [][]models.DealerRecord
	appends []models.ActivityEntry
	calls   int
}

func (f *fakeRemote) LoadDealers(ctx context.Context) ([]models.DealerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.loadDealersErr != nil {
		return nil, f.loadDealersErr
	}
	out := make([]models.DealerRecord, len(f.dealers))
	copy(out, f.dealers)
	return out, nil
}

func (f *fakeRemote) SaveDealers(ctx context.Context, dealers []models.DealerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.saveDealersErr != nil {
		return f.saveDealersErr
	}
	f.saves = append(f.saves, dealers)
	return nil
}

func (f *fakeRemote) LoadActivities(ctx context.Context) ([]models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.loadActivitiesErr != nil {
		return nil, f.loadActivitiesErr
	}
	out := make([]models.ActivityEntry, len(f.activities))
	copy(out, f.activities)
	return out, nil
}

func (f *fakeRemote) AppendActivity(ctx context.Context, entry models.ActivityEntry) (*models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.appends = append(f.appends, entry)
	if f.echo != nil {
		return f.echo(entry), nil
	}
	return nil, nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) lastSave() []models.DealerRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

// memFallback keeps slots as JSON in a map.
type memFallback struct {
	mu      sync.Mutex
	slots   map[string][]byte
	saveErr error
}

func newMemFallback() *memFallback {
	return &memFallback{slots: make(map[string][]byte)}
}

func (m *memFallback) Load(ctx context.Context, slot string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.slots[slot]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *memFallback) Save(ctx context.Context, slot string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.slots[slot] = data
	return nil
}

func (m *memFallback) dealers(t *testing.T) []models.DealerRecord {
	t.Helper()
	var out []models.DealerRecord
	if _, err := m.Load(context.Background(), DealersSlot, &out); err != nil {
		t.Fatalf("decode fallback dealers: %v", err)
	}
	return out
}

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// frozenClock always returns the same instant.
func frozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.Status) *models.Status { return &s }

func datePtr(s string) *models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}
