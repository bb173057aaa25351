package sessions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory. One mutex guards everything,
// which also makes the one-open-session-per-member check atomic.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	// member id -> id of the open session
	open    map[int]string
	results map[int]*results.Result

	nextProgressID int
	nextResultID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		open:     make(map[int]string),
		results:  make(map[int]*results.Result),
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.open[s.MemberID]; ok && s.Status.IsOpen() {
		return ErrConflict
	}
	if err := checkUniqueExercises(s.Exercises); err != nil {
		return err
	}

	stored := cloneSession(s)
	for _, ep := range stored.Exercises {
		m.nextProgressID++
		ep.ID = m.nextProgressID
		ep.SessionID = stored.ID
		for _, sp := range ep.Sets {
			m.nextProgressID++
			sp.ID = m.nextProgressID
			sp.ExerciseProgressID = ep.ID
		}
	}
	m.sessions[stored.ID] = stored
	if stored.Status.IsOpen() {
		m.open[stored.MemberID] = stored.ID
	}

	// hand the generated ids back
	for i, ep := range stored.Exercises {
		s.Exercises[i].ID = ep.ID
		s.Exercises[i].SessionID = ep.SessionID
		for j, sp := range ep.Sets {
			s.Exercises[i].Sets[j].ID = sp.ID
			s.Exercises[i].Sets[j].ExerciseProgressID = sp.ExerciseProgressID
		}
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *MemoryStore) GetActiveForMember(_ context.Context, memberID int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.open[memberID]
	if !ok {
		return nil, nil
	}
	return cloneSession(m.sessions[id]), nil
}

func (m *MemoryStore) ListForMember(_ context.Context, params ListParams) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.MemberID != params.MemberID {
			continue
		}
		if params.WorkoutID != nil && s.WorkoutID != *params.WorkoutID {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedDate.After(list[j].CreatedDate)
	})

	from := params.Page * params.Size
	if params.Size <= 0 || from >= len(list) {
		return []*Session{}, nil
	}
	to := min(from+params.Size, len(list))

	page := make([]*Session, 0, to-from)
	for _, s := range list[from:to] {
		page = append(page, cloneSession(s))
	}
	return page, nil
}

func (m *MemoryStore) Pause(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Status != StatusActive {
		return false, nil
	}
	s.Status = StatusPaused
	s.PausedAt = &at
	s.ModifiedDate = at
	return true, nil
}

func (m *MemoryStore) Resume(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Status != StatusPaused {
		return false, nil
	}
	s.TotalPausedSeconds += pausedSecondsUntil(s.PausedAt, at)
	s.Status = StatusActive
	s.PausedAt = nil
	s.ModifiedDate = at
	return true, nil
}

func (m *MemoryStore) Abandon(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || !s.Status.IsOpen() {
		return false, nil
	}
	m.close(s, StatusAbandoned, at)
	return true, nil
}

func (m *MemoryStore) Complete(_ context.Context, id string, expectedStatus Status, at time.Time, res *results.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status != expectedStatus || !s.Status.IsOpen() {
		return ErrInvalidStateTransition
	}

	m.nextResultID++
	res.ID = m.nextResultID
	stored := *res
	m.results[res.ID] = &stored

	m.close(s, StatusCompleted, at)
	resultID := res.ID
	s.ResultID = &resultID
	return nil
}

// close moves s into a terminal status. Callers hold m.mu.
func (m *MemoryStore) close(s *Session, status Status, at time.Time) {
	if s.Status == StatusPaused {
		s.TotalPausedSeconds += pausedSecondsUntil(s.PausedAt, at)
		s.PausedAt = nil
	}
	s.Status = status
	s.EndTime = &at
	s.ModifiedDate = at
	delete(m.open, s.MemberID)
}

// Result returns a stored result, mostly useful in tests.
func (m *MemoryStore) Result(id int) (*results.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.results[id]
	if !ok {
		return nil, false
	}
	cp := *res
	return &cp, true
}

func (m *MemoryStore) AppendAction(_ context.Context, id string, expectedCount int, ev phase.Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Status != StatusActive || len(s.PhaseActions) != expectedCount {
		return false, nil
	}
	s.PhaseActions = append(s.PhaseActions, ev)
	s.ModifiedDate = ev.At
	return true, nil
}

func (m *MemoryStore) ListStale(_ context.Context, createdBefore time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for _, id := range m.open {
		if m.sessions[id].CreatedDate.Before(createdBefore) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// exercise returns the exercise progress row of a non-terminal session.
// Callers hold m.mu.
func (m *MemoryStore) exercise(sessionID string, exerciseID int) (*Session, *ExerciseProgress) {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status.IsTerminal() {
		return nil, nil
	}
	return s, s.Exercise(exerciseID)
}

func (m *MemoryStore) StartExercise(_ context.Context, sessionID string, exerciseID int, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ep := m.exercise(sessionID, exerciseID)
	if ep == nil || ep.Status != ExerciseNotStarted {
		return false, nil
	}
	ep.Status = ExerciseInProgress
	ep.StartTime = &at
	s.CurrentExerciseIndex = ep.OrderInWorkout
	s.ModifiedDate = at
	return true, nil
}

func (m *MemoryStore) FinishExercise(_ context.Context, sessionID string, exerciseID int, status ExerciseStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ep := m.exercise(sessionID, exerciseID)
	if ep == nil || ep.Status.IsTerminal() {
		return false, nil
	}
	ep.Status = status
	ep.EndTime = &at
	if ep.StartTime != nil {
		ep.TotalTimeSeconds = max(0, int(at.Sub(*ep.StartTime).Seconds()))
	}
	s.ModifiedDate = at
	return true, nil
}

func (m *MemoryStore) UpdateExercise(_ context.Context, sessionID string, exerciseID int, upd ExerciseUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ep := m.exercise(sessionID, exerciseID)
	if ep == nil {
		return false, nil
	}
	ep.Apply(upd)
	return true, nil
}

func (m *MemoryStore) StartSet(_ context.Context, sessionID string, exerciseID, setNumber int, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ep := m.exercise(sessionID, exerciseID)
	if ep == nil {
		return false, nil
	}
	sp := ep.Set(setNumber)
	if sp == nil || sp.Status != SetNotStarted {
		return false, nil
	}
	sp.Status = SetInProgress
	sp.StartTime = &at
	return true, nil
}

func (m *MemoryStore) CompleteSet(_ context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ep := m.exercise(sessionID, exerciseID)
	if ep == nil {
		return false, nil
	}
	sp := ep.Set(setNumber)
	if sp == nil || sp.Status == SetCompleted {
		return false, nil
	}
	sp.Apply(actuals)
	sp.Status = SetCompleted
	sp.EndTime = &at
	return true, nil
}

func (m *MemoryStore) UpdateSet(_ context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ep := m.exercise(sessionID, exerciseID)
	if ep == nil {
		return false, nil
	}
	sp := ep.Set(setNumber)
	if sp == nil {
		return false, nil
	}
	sp.Apply(actuals)
	return true, nil
}

func cloneSession(s *Session) *Session {
	cp := *s
	cp.PhaseActions = append([]phase.Event(nil), s.PhaseActions...)
	if s.PhaseConfig != nil {
		cp.PhaseConfig = append([]byte(nil), s.PhaseConfig...)
	}
	cp.Exercises = make([]*ExerciseProgress, 0, len(s.Exercises))
	for _, ep := range s.Exercises {
		epCopy := *ep
		epCopy.Sets = make([]*SetProgress, 0, len(ep.Sets))
		for _, sp := range ep.Sets {
			spCopy := *sp
			epCopy.Sets = append(epCopy.Sets, &spCopy)
		}
		cp.Exercises = append(cp.Exercises, &epCopy)
	}
	return &cp
}

// MemoryResults exposes the results kept by a MemoryStore with the same read
// methods as results.Repo.
type MemoryResults struct {
	store *MemoryStore
}

func (m *MemoryStore) Results() *MemoryResults {
	return &MemoryResults{store: m}
}

func (r *MemoryResults) Get(_ context.Context, id int) (*results.Result, error) {
	res, ok := r.store.Result(id)
	if !ok {
		return nil, results.ErrNotFound
	}
	return res, nil
}

func (r *MemoryResults) ListForMember(_ context.Context, memberID, page, size int) ([]*results.Result, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	list := make([]*results.Result, 0)
	for _, res := range r.store.results {
		if res.MemberID == memberID {
			cp := *res
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	from := page * size
	if from >= len(list) {
		return []*results.Result{}, nil
	}
	to := from + size
	if to > len(list) {
		to = len(list)
	}
	return list[from:to], nil
}
