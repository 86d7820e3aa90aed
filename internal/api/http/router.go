package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	"github.com/taskdeck/taskdeck/internal/api/service"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/pkg/httpx"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier      jwtx.Verifier
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	secureCookies bool

	store          store.Store
	AuthService    *service.AuthService
	InviteService  *service.InviteService
	UserService    *service.UserService
	ProjectService *service.ProjectService
	TaskService    *service.TaskService
	CommentService *service.CommentService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	secureCookies bool,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		verifier:      verifier,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
		secureCookies: secureCookies,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvites()
	r.registerUsers()
	r.registerProjects()
	r.registerTasks()
	r.registerComments()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the bearer token (or session cookie) before the handler
// runs.
func (r *Router) authn(h http.Handler, mws ...httpx.Middleware) http.Handler {
	chain := append([]httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}, mws...)
	return httpx.Chain(h, chain...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService, SecureCookies: r.secureCookies}

	// Credential endpoints take the strict limit by IP to slow down
	// brute-force and invite-guessing attempts.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.Register),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/verify",
		r.authn(http.HandlerFunc(h.Verify),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{Invites: r.InviteService}

	adminOrManager := httpx.RequireRole(domain.RoleAdmin.String(), domain.RoleManager.String())
	adminOnly := httpx.RequireRole(domain.RoleAdmin.String())

	r.Mux.Handle("GET /api/invites",
		r.authn(http.HandlerFunc(h.List),
			adminOrManager,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/invites",
		r.authn(http.HandlerFunc(h.Create),
			adminOrManager,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Public pre-registration check; read-only and unauthenticated.
	r.Mux.Handle("GET /api/invites/validate/{code}",
		httpx.Chain(http.HandlerFunc(h.Validate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PATCH /api/invites/{id}/deactivate",
		r.authn(http.HandlerFunc(h.Deactivate),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/invites/{id}",
		r.authn(http.HandlerFunc(h.Delete),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}

	adminOnly := httpx.RequireRole(domain.RoleAdmin.String())

	r.Mux.Handle("GET /api/users/me",
		r.authn(http.HandlerFunc(h.Me),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/users",
		r.authn(http.HandlerFunc(h.List),
			httpx.RequireRole(domain.RoleAdmin.String(), domain.RoleManager.String()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/users",
		r.authn(http.HandlerFunc(h.Create),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/users/{id}",
		r.authn(http.HandlerFunc(h.Update),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/users/{id}",
		r.authn(http.HandlerFunc(h.Delete),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProjects() {
	h := &ProjectsHandler{Projects: r.ProjectService}

	adminOrManager := httpx.RequireRole(domain.RoleAdmin.String(), domain.RoleManager.String())

	r.Mux.Handle("GET /api/projects",
		r.authn(http.HandlerFunc(h.List),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/projects",
		r.authn(http.HandlerFunc(h.Create),
			adminOrManager,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/projects/{id}",
		r.authn(http.HandlerFunc(h.Update),
			adminOrManager,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/projects/{id}",
		r.authn(http.HandlerFunc(h.Delete),
			adminOrManager,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTasks() {
	h := &TasksHandler{Tasks: r.TaskService}

	r.Mux.Handle("GET /api/tasks",
		r.authn(http.HandlerFunc(h.List),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/tasks",
		r.authn(http.HandlerFunc(h.Create),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/tasks/{id}",
		r.authn(http.HandlerFunc(h.Update),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Deleting a task removes its comments; reserved for leads.
	r.Mux.Handle("DELETE /api/tasks/{id}",
		r.authn(http.HandlerFunc(h.Delete),
			httpx.RequireRole(domain.RoleAdmin.String(), domain.RoleManager.String()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerComments() {
	h := &CommentsHandler{Comments: r.CommentService}

	r.Mux.Handle("GET /api/tasks/{id}/comments",
		r.authn(http.HandlerFunc(h.ListByTask),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/tasks/{id}/comments",
		r.authn(http.HandlerFunc(h.Create),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/comments/{id}",
		r.authn(http.HandlerFunc(h.Delete),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
