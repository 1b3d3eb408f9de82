package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/middleware"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
// - Health check, version and route listing endpoints (unprotected)
// - Authentication endpoints (sign-up, login, Google, refresh, logout)
// - Profile and report endpoints for active user accounts
// - The moderation console, restricted to administrators
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	allowedOrigins := s.allowedOrigins()

	r.Use(corsMiddleware(allowedOrigins, s.Config.CORS.AllowCredentials))

	r.Use(chimiddleware.RequestID)
	if s.Config.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogging())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.APIVersion())

	r.Group(func(r chi.Router) {
		r.Get(constants.HealthPath, s.health)

		r.Get(constants.VersionPath, func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"api_version": constants.APIVersion,
				"environment": s.Config.App.Environment,
			})
		})

		r.Get("/api/routes", s.GetAPIRoutes)
	})

	requireUser := middleware.JWTAuth(s.authProviders.JWTService)
	requireActive := middleware.RequireActiveAccount(s.services.authService)
	requireAdmin := middleware.AdminAuth(s.authProviders.JWTService)

	r.Route(constants.APIBasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public auth endpoints
			r.Group(func(r chi.Router) {
				r.Post("/signup", s.Handlers.AuthHandler.Register)
				r.Post("/login", s.Handlers.AuthHandler.Login)
				r.Post("/google", s.Handlers.AuthHandler.GoogleLogin)
				r.Post("/refresh", s.Handlers.AuthHandler.RefreshToken)
				r.Post("/logout", s.Handlers.AuthHandler.Logout)

				r.Options("/verify", handlePreflight(allowedOrigins, s.Config.CORS.AllowCredentials))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireUser, requireActive)
				r.Get("/verify", s.Handlers.AuthHandler.VerifyToken)
			})

			// Suspended accounts may still end their sessions
			r.With(requireUser).Post("/logout-all", s.Handlers.AuthHandler.LogoutAll)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireUser, requireActive)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.Handlers.UserHandler.GetCurrentUser)
				r.Put("/", s.Handlers.UserHandler.UpdateUser)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(requireUser, requireActive)

			r.Post("/", s.Handlers.ReportHandler.SubmitReport)
			r.Get("/mine", s.Handlers.ReportHandler.ListMyReports)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.Handlers.AuthHandler.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Use(chimiddleware.NoCache)

				r.Get("/dashboard", s.Handlers.AdminHandler.Dashboard)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", s.Handlers.AdminHandler.ListUsers)
					r.Route("/{"+constants.ParamID+"}", func(r chi.Router) {
						r.Get("/", s.Handlers.AdminHandler.GetUser)
						r.Post("/ban", s.Handlers.AdminHandler.BanUser)
						r.Post("/unban", s.Handlers.AdminHandler.UnbanUser)
						r.Get("/ban-status", s.Handlers.AdminHandler.BanStatus)
						r.Get("/ban-logs", s.Handlers.AdminHandler.UserBanLogs)
					})
				})

				r.Get("/ban-logs", s.Handlers.AdminHandler.ListBanLogs)

				r.Route("/reports", func(r chi.Router) {
					r.Get("/", s.Handlers.AdminHandler.ListReports)
					r.Get("/{"+constants.ParamID+"}", s.Handlers.AdminHandler.GetReport)
					r.Post("/{"+constants.ParamID+"}/transition", s.Handlers.AdminHandler.TransitionReport)
				})
			})
		})
	})

	s.router = r
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.Db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Config.App.Version,
	})
}

// handlePreflight is an explicit handler for OPTIONS preflight requests.
func handlePreflight(allowedOrigins []string, allowCredentials bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if originAllowed(allowedOrigins, origin) {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			setCORSHeaders(w, origin, allowCredentials)
			setPreflightHeaders(w)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// corsMiddleware creates a CORS middleware with the specified allowed origins.
// Requests from other origins pass through without CORS headers, so browsers
// refuse them while server-to-server clients are unaffected.
func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin == "" || !originAllowed(allowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			setCORSHeaders(w, origin, allowCredentials)

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			setPreflightHeaders(w)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}

func setCORSHeaders(w http.ResponseWriter, origin string, allowCredentials bool) {
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Add("Vary", "Origin")
	if allowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func setPreflightHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Request-ID")
	w.Header().Set("Access-Control-Max-Age", "300")
}

// allowedOrigins returns the configured CORS origins, trimmed. An empty
// list allows every origin.
func (s *Server) allowedOrigins() []string {
	origins := make([]string, 0, len(s.Config.CORS.AllowedOrigins))
	for _, origin := range s.Config.CORS.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	if len(origins) == 0 {
		origins = []string{"*"}
	}

	log.Info().Strs("allowed_origins", origins).Msg("CORS allowed origins")
	return origins
}

// RouteInfo describes one registered endpoint.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// GetAPIRoutes lists every registered endpoint, sorted by path and method.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	if s.router == nil {
		utils.JSON(w, http.StatusOK, []RouteInfo{})
		return
	}

	var routes []RouteInfo
	walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodOptions {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		routes = append(routes, RouteInfo{Method: method, Path: route})
		return nil
	}

	if err := chi.Walk(s.router, walk); err != nil {
		utils.InternalServerError(w, err)
		return
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	utils.JSON(w, http.StatusOK, routes)
}
