package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/metaspex/interviews/internal/auth"
	"github.com/metaspex/interviews/internal/service"
	"github.com/metaspex/interviews/internal/transport/rest/handler"
	"github.com/metaspex/interviews/internal/transport/rest/middleware"
	"github.com/metaspex/interviews/internal/transport/ws"
)

// Container holds every dependency the router wires into handlers.
type Container struct {
	AuthService          *auth.Service
	TemplateService      *service.TemplateService
	QuestionnaireService *service.QuestionnaireService
	CampaignService      *service.CampaignService
	InterviewService     *service.InterviewService
	WSHub                *ws.Hub
}

// NewRouter builds the full v1 API: authoring routes behind an admin
// JWT, a respondent-facing interview surface with no required auth, and
// a campaign-watch WebSocket endpoint.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	templateHandler := handler.NewTemplateHandler(c.TemplateService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService)
	campaignHandler := handler.NewCampaignHandler(c.CampaignService)
	interviewHandler := handler.NewInterviewHandler(c.InterviewService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authoring routes (require an administrator JWT).
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{id}/localizations", questionnaireHandler.CreateLocalization).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/template-categories", templateHandler.CreateCategory).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/template-categories/{id}/questions", templateHandler.CreateQuestion).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/template-categories/{id}/questions", templateHandler.ListQuestions).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/template-questions/{id}/localizations", templateHandler.CreateLocalization).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/campaigns", campaignHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/campaigns/{id}", campaignHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/campaigns/{id}/interviewer-tokens", campaignHandler.IssueInterviewerToken).Methods("POST", "OPTIONS")

	// Campaign-watch WebSocket (admin-authenticated via ?token=).
	v1.HandleFunc("/campaigns/{id}/watch", wsHandler.Watch).Methods("GET")

	// Interview-facing routes: no required auth, but a campaign-scoped
	// interviewer Bearer token, when present, attributes the interview.
	interviewRoutes := v1.NewRoute().Subrouter()
	interviewRoutes.Use(authMW.OptionalInterviewer)

	interviewRoutes.HandleFunc("/campaigns/{id}/interviews", interviewHandler.Start).Methods("POST", "OPTIONS")
	interviewRoutes.HandleFunc("/interviews/{id}", interviewHandler.Get).Methods("GET", "OPTIONS")
	interviewRoutes.HandleFunc("/interviews/{id}/answers", interviewHandler.Submit).Methods("POST", "OPTIONS")
	interviewRoutes.HandleFunc("/interviews/{id}/answers/{pos}", interviewHandler.Revise).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}
		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}
		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
