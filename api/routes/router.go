package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guvvyapp/guvvy-backend/api/controllers"
	"github.com/guvvyapp/guvvy-backend/api/middleware"
	"github.com/guvvyapp/guvvy-backend/internal/identity"
	"github.com/guvvyapp/guvvy-backend/internal/users"
	"github.com/guvvyapp/guvvy-backend/pkg/config"
	"github.com/guvvyapp/guvvy-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	verifier identity.TokenVerifier,
	resolver middleware.UserResolver,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	r.With(middleware.OptionalUser(verifier, resolver, logg)).
		Get("/api/session", controllers.Session())

	r.Route("/api/users", func(r chi.Router) {
		// Creation and login touch only need verified claims: neither may
		// auto-provision a record through the resolver.
		r.With(middleware.RequireClaims(verifier, logg)).
			Post("/", controllers.UsersCreate(userService, logg))
		r.With(middleware.RequireClaims(verifier, logg)).
			Post("/{firebaseUID}/login", controllers.UsersTouchLogin(userService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(verifier, resolver, logg))

			r.Get("/me", controllers.UsersMe(logg))
			r.Get("/{firebaseUID}", controllers.UsersGet(userService, logg))
			r.Put("/{firebaseUID}", controllers.UsersUpdate(userService, logg))
			r.Put("/{firebaseUID}/address", controllers.UsersUpdateAddress(userService, logg))
			r.Delete("/{firebaseUID}", controllers.UsersDelete(userService, logg))
		})
	})

	return r
}
