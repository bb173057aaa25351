package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	HeaderAppSecret = "X-App-Secret"
	HeaderMemberID  = "X-Member-Id"
)

type memberIDKey struct{}

// WithMemberID returns a copy of ctx carrying the authenticated member id.
func WithMemberID(ctx context.Context, memberID int) context.Context {
	return context.WithValue(ctx, memberIDKey{}, memberID)
}

// MemberID returns the member id set by the auth middleware.
func MemberID(ctx context.Context) (int, bool) {
	memberID, ok := ctx.Value(memberIDKey{}).(int)
	return memberID, ok && memberID > 0
}

type AuthMiddlewareHandler struct {
	appSecret            string
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(appSecret string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		appSecret: appSecret,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
		},
		allowedPathsPrefixes: []string{
			"/health",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthCheck lets through requests that carry the shared app secret and a
// positive member id, and puts the member id into the request context.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			secret := r.Header.Get(HeaderAppSecret)
			if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.appSecret)) != 1 {
				log.Tracef("[invalid secret] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-app-secret")
				return
			}

			memberID, err := strconv.Atoi(r.Header.Get(HeaderMemberID))
			if err != nil || memberID <= 0 {
				log.Tracef("[missing member] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-member-id")
				return
			}
			span.SetAttributes(attribute.Int("member", memberID))

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(WithMemberID(ctx, memberID)))
		})
	}
}
