package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jcii/hunt/internal/domain"
	"github.com/jcii/hunt/internal/normalize"
	"github.com/jcii/hunt/internal/store"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory Store. Update works on a copy that replaces the
// state only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	jobs      map[int64]domain.Job
	employers map[int64]domain.Employer
	snapshots []domain.Snapshot
	nextID    int64
	clock     time.Time

	failInsertAfter int
	inserts         int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		jobs:            map[int64]domain.Job{},
		employers:       map[int64]domain.Employer{},
		clock:           time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		failInsertAfter: -1,
	}}
}

func (m *memStore) Update(_ context.Context, fn func(RecordStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *memStore) View(_ context.Context, fn func(RecordStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state.clone())
}

// seed stores a job for employer directly, bypassing resolution.
func (m *memStore) seed(employer string, j domain.Job) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.state.ResolveEmployer(context.Background(), employer)
	if err != nil {
		panic(err)
	}
	j.EmployerID = e.ID
	out, err := m.state.InsertJob(context.Background(), j)
	if err != nil {
		panic(err)
	}
	return out
}

func (m *memStore) jobs() []domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, _ := m.state.ListJobs(context.Background(), domain.JobFilter{})
	return out
}

func (m *memStore) snapshots() []domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Snapshot(nil), m.state.snapshots...)
}

func (s *memState) clone() *memState {
	c := *s
	c.jobs = make(map[int64]domain.Job, len(s.jobs))
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	c.employers = make(map[int64]domain.Employer, len(s.employers))
	for k, v := range s.employers {
		c.employers[k] = v
	}
	c.snapshots = append([]domain.Snapshot(nil), s.snapshots...)
	return &c
}

func (s *memState) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memState) ListJobs(_ context.Context, f domain.JobFilter) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range s.jobs {
		if f.Status != 0 && j.Status != f.Status {
			continue
		}
		if f.EmployerID != 0 && j.EmployerID != f.EmployerID {
			continue
		}
		j.EmployerName = s.employers[j.EmployerID].Name
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *memState) GetJob(_ context.Context, id int64) (domain.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("job %d: %w", id, store.ErrNotFound)
	}
	j.EmployerName = s.employers[j.EmployerID].Name
	return j, nil
}

func (s *memState) InsertJob(ctx context.Context, j domain.Job) (domain.Job, error) {
	if s.failInsertAfter >= 0 && s.inserts >= s.failInsertAfter {
		return domain.Job{}, errInjected
	}
	s.inserts++
	if _, ok := s.employers[j.EmployerID]; !ok {
		return domain.Job{}, fmt.Errorf("employer %d: %w", j.EmployerID, store.ErrNotFound)
	}
	s.nextID++
	j.ID = s.nextID
	if j.Status == 0 {
		j.Status = domain.StatusNew
	}
	j.CreatedAt = s.tick()
	j.UpdatedAt = j.CreatedAt
	s.jobs[j.ID] = j
	return s.GetJob(ctx, j.ID)
}

func (s *memState) UpdateJob(ctx context.Context, id int64, p domain.JobPatch) (domain.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("job %d: %w", id, store.ErrNotFound)
	}
	j = p.Apply(j)
	j.UpdatedAt = s.tick()
	s.jobs[id] = j
	return s.GetJob(ctx, id)
}

func (s *memState) SetJobStatus(_ context.Context, id int64, status domain.Status) error {
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %d: %w", id, store.ErrNotFound)
	}
	j.Status = status
	s.jobs[id] = j
	return nil
}

func (s *memState) DeleteJob(_ context.Context, id int64) error {
	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("job %d: %w", id, store.ErrNotFound)
	}
	delete(s.jobs, id)
	kept := s.snapshots[:0:0]
	for _, snap := range s.snapshots {
		if snap.JobID != id {
			kept = append(kept, snap)
		}
	}
	s.snapshots = kept
	return nil
}

func (s *memState) ResolveEmployer(ctx context.Context, name string) (domain.Employer, error) {
	if e, err := s.FindEmployer(ctx, name); err == nil {
		return e, nil
	}
	if normalize.EmployerKey(name) == "" {
		return domain.Employer{}, domain.ErrMalformedCandidate
	}
	s.nextID++
	e := domain.Employer{ID: s.nextID, Name: name, Status: domain.EmployerOK, CreatedAt: s.tick()}
	s.employers[e.ID] = e
	return e, nil
}

func (s *memState) FindEmployer(_ context.Context, name string) (domain.Employer, error) {
	key := normalize.EmployerKey(name)
	for _, e := range s.employers {
		if normalize.EmployerKey(e.Name) == key {
			return e, nil
		}
	}
	return domain.Employer{}, fmt.Errorf("employer %q: %w", name, store.ErrNotFound)
}

func (s *memState) EmployerByID(_ context.Context, id int64) (domain.Employer, error) {
	e, ok := s.employers[id]
	if !ok {
		return domain.Employer{}, fmt.Errorf("employer %d: %w", id, store.ErrNotFound)
	}
	return e, nil
}

func (s *memState) ListEmployers(_ context.Context) ([]domain.Employer, error) {
	out := make([]domain.Employer, 0, len(s.employers))
	for _, e := range s.employers {
		out = append(out, e)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *memState) SetEmployerStatus(_ context.Context, id int64, status domain.EmployerStatus, notes *string) (domain.Employer, error) {
	e, ok := s.employers[id]
	if !ok {
		return domain.Employer{}, fmt.Errorf("employer %d: %w", id, store.ErrNotFound)
	}
	e.Status = status
	if notes != nil {
		e.Notes = *notes
	}
	s.employers[id] = e
	return e, nil
}

func (s *memState) InsertSnapshot(_ context.Context, jobID int64, raw string) (domain.Snapshot, error) {
	s.nextID++
	snap := domain.Snapshot{ID: s.nextID, JobID: jobID, RawText: raw, CapturedAt: s.tick()}
	s.snapshots = append(s.snapshots, snap)
	return snap, nil
}

func (s *memState) ListSnapshots(_ context.Context, jobID int64) ([]domain.Snapshot, error) {
	var out []domain.Snapshot
	for _, snap := range s.snapshots {
		if snap.JobID == jobID {
			out = append(out, snap)
		}
	}
	return out, nil
}
