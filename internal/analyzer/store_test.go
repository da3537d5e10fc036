package analyzer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jgoulah/wattlens/pkg/models"
)

var errStoreDown = errors.New("store unavailable")

type assignmentKey struct {
	household string
	method    models.ClusterMethod
}

// memStore is an in-memory RecordStore. failAt makes the nth upsert (1-based) fail.
// When gate is set the first upsert closes entered and waits for gate to close.
type memStore struct {
	mu      sync.Mutex
	rows    map[assignmentKey]models.ClusterAssignment
	order   []models.ClusterMethod
	upserts int
	failAt  int

	calls   atomic.Int32
	gate    chan struct{}
	entered chan struct{}
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[assignmentKey]models.ClusterAssignment)}
}

func (s *memStore) UpsertAssignment(_ context.Context, a models.ClusterAssignment) error {
	if s.gate != nil && s.calls.Add(1) == 1 {
		close(s.entered)
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = append(s.order, a.Method)
	s.upserts++
	if s.failAt > 0 && s.upserts == s.failAt {
		return errStoreDown
	}
	s.rows[assignmentKey{a.HouseholdID, a.Method}] = a
	return nil
}

func (s *memStore) ListAssignments(_ context.Context, filter models.AssignmentFilter) ([]models.ClusterAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ClusterAssignment
	for _, a := range s.rows {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HouseholdID != out[j].HouseholdID {
			return out[i].HouseholdID < out[j].HouseholdID
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

func (s *memStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

func (s *memStore) methodOrder() []models.ClusterMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ClusterMethod(nil), s.order...)
}
