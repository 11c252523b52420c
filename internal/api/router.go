package api

import (
	"net/http"
	"time"

	"debugweek/internal/api/handler"
	"debugweek/internal/app/service"
	"debugweek/internal/common/security"
	"debugweek/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	gradeService *service.GradeService,
	submissionService *service.SubmissionService,
	weekService *service.WeekService,
	challengeService *service.ChallengeService,
	progressService *service.ProgressService,
	userRepo repository.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	// Submission grading blocks for up to the execution timeout, so the
	// request timeout has to sit comfortably above it.
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup: verifies a token found in
	// "Authorization: Bearer T" and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Ad-hoc execution (public, no persistence)
		executeHandler := handler.NewExecuteHandler(gradeService)
		v1.Route("/execute", executeHandler.RegisterRoutes)

		// Week routes (authenticated; admin subroutes inside)
		weekHandler := handler.NewWeekHandler(weekService, challengeService)
		v1.Route("/weeks", weekHandler.RegisterRoutes)

		// Challenge routes (authenticated; admin subroutes inside), with
		// scored submission nested per challenge
		challengeHandler := handler.NewChallengeHandler(challengeService)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/challenges", func(r chi.Router) {
			challengeHandler.RegisterRoutes(r)
			r.Route("/{challengeID}/submissions", submissionHandler.RegisterRoutes)
		})

		// Caller's own progress rows
		progressHandler := handler.NewProgressHandler(progressService)
		v1.Route("/me/progress", progressHandler.RegisterRoutes)

		// Leaderboard (public)
		leaderboardHandler := handler.NewLeaderboardHandler(userRepo)
		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
	})

	return r
}
