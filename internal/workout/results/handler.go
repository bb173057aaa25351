package results

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const defaultPageSize = 20

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=results_test

type resultReader interface {
	Get(ctx context.Context, id int) (*Result, error)
	ListForMember(ctx context.Context, memberID, page, size int) ([]*Result, error)
}

type Handler struct {
	repo resultReader
}

func NewHandler(repo resultReader) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/results", handler.HandleList).Methods("GET", "OPTIONS").Name("list-results")
	r.HandleFunc("/results/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-result")
}

// HandleGet returns a result to its owner, or to anyone when it is public.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.results.get")
	defer span.End()

	memberID, ok := middleware.MemberID(ctx)
	if !ok {
		http.Error(w, "no member", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	res, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get result %d: %s", id, err)
		http.Error(w, "error, get result failed", http.StatusInternalServerError)
		return
	}
	if res.MemberID != memberID && !res.IsPublic {
		http.Error(w, "not your result", http.StatusForbidden)
		return
	}

	pkg.WriteJSON(w, res, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.results.list")
	defer span.End()

	memberID, ok := middleware.MemberID(ctx)
	if !ok {
		http.Error(w, "no member", http.StatusUnauthorized)
		return
	}

	page, size := 0, defaultPageSize
	query := r.URL.Query()
	if v := query.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 {
			http.Error(w, "error, invalid page", http.StatusBadRequest)
			return
		}
		page = p
	}
	if v := query.Get("size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 1 {
			http.Error(w, "error, invalid size", http.StatusBadRequest)
			return
		}
		size = s
	}

	list, err := handler.repo.ListForMember(ctx, memberID, page, size)
	if err != nil {
		log.Errorf("list results for member %d: %s", memberID, err)
		http.Error(w, "error, list results failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, list, http.StatusOK)
}
