package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/metaspex/interviews/internal/auth"
)

type contextKey string

const (
	AdminIDKey       contextKey = "adminId"
	InterviewerIDKey contextKey = "interviewerId"
	CampaignIDKey    contextKey = "campaignId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *auth.Service
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdmin validates an administrator JWT from the Authorization header.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAdminToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireInterviewer validates a campaign-scoped interviewer JWT from the
// Authorization header or, for WebSocket connections, the token query param.
func (m *AuthMiddleware) RequireInterviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateInterviewerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, InterviewerIDKey, claims.InterviewerID)
		ctx = context.WithValue(ctx, CampaignIDKey, claims.CampaignID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalInterviewer extracts interviewer claims when a Bearer token is
// present and valid, but never rejects the request: the interview-facing
// surface is reachable by anonymous respondents, and a present token only
// attributes the interview to the field interviewer carrying it.
func (m *AuthMiddleware) OptionalInterviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.authSvc.ValidateInterviewerToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		ctx = context.WithValue(ctx, InterviewerIDKey, claims.InterviewerID)
		ctx = context.WithValue(ctx, CampaignIDKey, claims.CampaignID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminID extracts the administrator id from context.
func GetAdminID(ctx context.Context) string {
	if v := ctx.Value(AdminIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetInterviewerID extracts the interviewer id from context.
func GetInterviewerID(ctx context.Context) string {
	if v := ctx.Value(InterviewerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetCampaignID extracts the campaign id from context.
func GetCampaignID(ctx context.Context) string {
	if v := ctx.Value(CampaignIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
