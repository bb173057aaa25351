package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"
	"github.com/2beens/gymsessions/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=sessions_test

type lifecycleService interface {
	Start(ctx context.Context, memberID int, params StartParams) (string, error)
	Pause(ctx context.Context, id string) (bool, error)
	Resume(ctx context.Context, id string) (bool, error)
	Abandon(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, memberID int, id string, payload results.CompletionPayload) (int, error)
	RecordAction(ctx context.Context, memberID int, id string) (*phase.Phase, error)
	CurrentPhase(ctx context.Context, id string, since int) (*phase.Phase, error)
	Get(ctx context.Context, id string) (*Session, error)
	GetActiveForMember(ctx context.Context, memberID int) (*Session, error)
	ListForMember(ctx context.Context, params ListParams) ([]*Session, error)
}

type progressTracker interface {
	StartExercise(ctx context.Context, sessionID string, exerciseID int) (bool, error)
	CompleteExercise(ctx context.Context, sessionID string, exerciseID int) (bool, error)
	SkipExercise(ctx context.Context, sessionID string, exerciseID int) (bool, error)
	UpdateExerciseProgress(ctx context.Context, sessionID string, exerciseID int, upd ExerciseUpdate) (bool, error)
	StartSet(ctx context.Context, sessionID string, exerciseID, setNumber int) (bool, error)
	CompleteSet(ctx context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals) (bool, error)
	UpdateSetProgress(ctx context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals) (bool, error)
}

type StartResponse struct {
	ID string `json:"id"`
}

type CompleteResponse struct {
	ResultID int `json:"resultId"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type Handler struct {
	service lifecycleService
	tracker progressTracker
}

func NewHandler(service lifecycleService, tracker progressTracker) *Handler {
	return &Handler{
		service: service,
		tracker: tracker,
	}
}

// RegisterRoutes mounts the session routes on r. Mutations are wrapped with
// limit when it is not nil.
func (handler *Handler) RegisterRoutes(r *mux.Router, limit mux.MiddlewareFunc) {
	mutation := func(h http.HandlerFunc) http.Handler {
		if limit == nil {
			return h
		}
		return limit(h)
	}

	s := r.PathPrefix("/sessions").Subrouter()
	s.HandleFunc("/active", handler.HandleGetActive).Methods("GET", "OPTIONS").Name("get-active-session")
	s.HandleFunc("/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("list-sessions")
	s.Handle("/start", mutation(handler.HandleStart)).Methods("POST", "OPTIONS").Name("start-session")
	s.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-session")
	s.Handle("/{id}", mutation(handler.HandleAbandon)).Methods("DELETE", "OPTIONS").Name("abandon-session")
	s.HandleFunc("/{id}/phase", handler.HandlePhase).Methods("GET", "OPTIONS").Name("get-session-phase")
	s.Handle("/{id}/actions", mutation(handler.HandleAction)).Methods("POST", "OPTIONS").Name("session-action")
	s.Handle("/{id}/pause", mutation(handler.HandlePause)).Methods("PUT", "OPTIONS").Name("pause-session")
	s.Handle("/{id}/resume", mutation(handler.HandleResume)).Methods("PUT", "OPTIONS").Name("resume-session")
	s.Handle("/{id}/complete", mutation(handler.HandleComplete)).Methods("POST", "OPTIONS").Name("complete-session")

	s.Handle("/{id}/exercises/{exerciseId}/start", mutation(handler.HandleStartExercise)).Methods("PUT", "OPTIONS").Name("start-exercise")
	s.Handle("/{id}/exercises/{exerciseId}/complete", mutation(handler.HandleCompleteExercise)).Methods("PUT", "OPTIONS").Name("complete-exercise")
	s.Handle("/{id}/exercises/{exerciseId}/skip", mutation(handler.HandleSkipExercise)).Methods("PUT", "OPTIONS").Name("skip-exercise")
	s.Handle("/{id}/exercises/{exerciseId}/progress", mutation(handler.HandleUpdateExercise)).Methods("PUT", "OPTIONS").Name("update-exercise")
	s.Handle("/{id}/exercises/{exerciseId}/sets/{setNumber}/start", mutation(handler.HandleStartSet)).Methods("PUT", "OPTIONS").Name("start-set")
	s.Handle("/{id}/exercises/{exerciseId}/sets/{setNumber}/complete", mutation(handler.HandleCompleteSet)).Methods("PUT", "OPTIONS").Name("complete-set")
	s.Handle("/{id}/exercises/{exerciseId}/sets/{setNumber}", mutation(handler.HandleUpdateSet)).Methods("PUT", "OPTIONS").Name("update-set")
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidStateTransition):
		status = http.StatusConflict
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ErrNoPhaseConfig),
		errors.Is(err, phase.ErrTimeDriven),
		errors.Is(err, phase.ErrSequenceComplete),
		errors.Is(err, phase.ErrTimeCapReached):
		status = http.StatusConflict
	case errors.Is(err, results.ErrInvalidPayload):
		status = http.StatusBadRequest
	case errors.Is(err, phase.ErrInvalidConfig),
		errors.Is(err, phase.ErrUnknownType),
		errors.Is(err, ErrDuplicateExercise):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
		http.Error(w, "error, "+op+" failed", status)
		return
	}
	log.Debugf("%s: %s", op, err)
	http.Error(w, err.Error(), status)
}

func memberFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	memberID, ok := middleware.MemberID(r.Context())
	if !ok {
		http.Error(w, "no member", http.StatusUnauthorized)
		return 0, false
	}
	return memberID, true
}

// ownedSessionID resolves the {id} route var and makes sure the caller owns it.
func (handler *Handler) ownedSessionID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return "", false
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return "", false
	}

	session, err := handler.service.Get(ctx, id)
	if err != nil {
		writeError(w, "get session", err)
		return "", false
	}
	if session.MemberID != memberID {
		writeError(w, "get session", ErrUnauthorized)
		return "", false
	}
	return id, true
}

func intVar(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debugf("unmarshal %T: %s", v, err)
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.start")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	var params StartParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Errorf("start session, unmarshal json params: %s", err)
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return
	}
	if params.WorkoutID <= 0 {
		http.Error(w, "error, workout id missing", http.StatusBadRequest)
		return
	}

	id, err := handler.service.Start(ctx, memberID, params)
	if err != nil {
		writeError(w, "start session", err)
		return
	}
	pkg.WriteJSON(w, StartResponse{ID: id}, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.get")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	session, err := handler.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	if session.MemberID != memberID {
		writeError(w, "get session", ErrUnauthorized)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.active")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	session, err := handler.service.GetActiveForMember(ctx, memberID)
	if err != nil {
		writeError(w, "get active session", err)
		return
	}
	if session == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.history")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	params := ListParams{MemberID: memberID}
	query := r.URL.Query()
	if v := query.Get("workoutId"); v != "" {
		workoutID, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "error, workoutId NaN", http.StatusBadRequest)
			return
		}
		params.WorkoutID = &workoutID
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			http.Error(w, "error, invalid page", http.StatusBadRequest)
			return
		}
		params.Page = page
	}
	if v := query.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			http.Error(w, "error, invalid size", http.StatusBadRequest)
			return
		}
		params.Size = size
	}

	list, err := handler.service.ListForMember(ctx, params)
	if err != nil {
		writeError(w, "list sessions", err)
		return
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

func (handler *Handler) HandlePhase(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.phase")
	defer span.End()

	id, ok := handler.ownedSessionID(ctx, w, r)
	if !ok {
		return
	}

	since := -1
	if v := r.URL.Query().Get("since"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 0 {
			http.Error(w, "error, invalid since", http.StatusBadRequest)
			return
		}
		since = s
	}

	p, err := handler.service.CurrentPhase(ctx, id, since)
	if err != nil {
		writeError(w, "current phase", err)
		return
	}
	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.action")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	p, err := handler.service.RecordAction(ctx, memberID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "record action", err)
		return
	}
	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	transition func(ctx context.Context, id string) (bool, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	id, ok := handler.ownedSessionID(ctx, w, r)
	if !ok {
		return
	}

	changed, err := transition(ctx, id)
	if err != nil {
		writeError(w, spanName, err)
		return
	}
	pkg.WriteJSON(w, OkResponse{Ok: changed}, http.StatusOK)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.sessions.pause", handler.service.Pause)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.sessions.resume", handler.service.Resume)
}

func (handler *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.sessions.abandon", handler.service.Abandon)
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.complete")
	defer span.End()

	memberID, ok := memberFromRequest(w, r)
	if !ok {
		return
	}

	var payload results.CompletionPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	resultID, err := handler.service.Complete(ctx, memberID, mux.Vars(r)["id"], payload)
	if err != nil {
		writeError(w, "complete session", err)
		return
	}
	pkg.WriteJSON(w, CompleteResponse{ResultID: resultID}, http.StatusCreated)
}

func (handler *Handler) handleExercise(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	op func(ctx context.Context, sessionID string, exerciseID int) (bool, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	exerciseID, ok := intVar(w, r, "exerciseId")
	if !ok {
		return
	}
	id, ok := handler.ownedSessionID(ctx, w, r)
	if !ok {
		return
	}

	changed, err := op(ctx, id, exerciseID)
	if err != nil {
		writeError(w, spanName, err)
		return
	}
	pkg.WriteJSON(w, OkResponse{Ok: changed}, http.StatusOK)
}

func (handler *Handler) HandleStartExercise(w http.ResponseWriter, r *http.Request) {
	handler.handleExercise(w, r, "handler.progress.exercise.start", handler.tracker.StartExercise)
}

func (handler *Handler) HandleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	handler.handleExercise(w, r, "handler.progress.exercise.complete", handler.tracker.CompleteExercise)
}

func (handler *Handler) HandleSkipExercise(w http.ResponseWriter, r *http.Request) {
	handler.handleExercise(w, r, "handler.progress.exercise.skip", handler.tracker.SkipExercise)
}

func (handler *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var upd ExerciseUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	handler.handleExercise(w, r, "handler.progress.exercise.update",
		func(ctx context.Context, sessionID string, exerciseID int) (bool, error) {
			return handler.tracker.UpdateExerciseProgress(ctx, sessionID, exerciseID, upd)
		},
	)
}

func (handler *Handler) handleSet(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	op func(ctx context.Context, sessionID string, exerciseID, setNumber int) (bool, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	exerciseID, ok := intVar(w, r, "exerciseId")
	if !ok {
		return
	}
	setNumber, ok := intVar(w, r, "setNumber")
	if !ok {
		return
	}
	id, ok := handler.ownedSessionID(ctx, w, r)
	if !ok {
		return
	}

	changed, err := op(ctx, id, exerciseID, setNumber)
	if err != nil {
		writeError(w, spanName, err)
		return
	}
	pkg.WriteJSON(w, OkResponse{Ok: changed}, http.StatusOK)
}

func (handler *Handler) HandleStartSet(w http.ResponseWriter, r *http.Request) {
	handler.handleSet(w, r, "handler.progress.set.start", handler.tracker.StartSet)
}

func (handler *Handler) HandleCompleteSet(w http.ResponseWriter, r *http.Request) {
	var actuals SetActuals
	if !decodeBody(w, r, &actuals) {
		return
	}
	handler.handleSet(w, r, "handler.progress.set.complete",
		func(ctx context.Context, sessionID string, exerciseID, setNumber int) (bool, error) {
			return handler.tracker.CompleteSet(ctx, sessionID, exerciseID, setNumber, actuals)
		},
	)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var actuals SetActuals
	if !decodeBody(w, r, &actuals) {
		return
	}
	handler.handleSet(w, r, "handler.progress.set.update",
		func(ctx context.Context, sessionID string, exerciseID, setNumber int) (bool, error) {
			return handler.tracker.UpdateSetProgress(ctx, sessionID, exerciseID, setNumber, actuals)
		},
	)
}
