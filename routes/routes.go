package routes

import (
	"net/http"

	"github.com/Benjaminax/camous-taskboard-system/handlers"
	appmiddleware "github.com/Benjaminax/camous-taskboard-system/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает все маршруты API под /api.
func SetupRoutes(
	router *chi.Mux,
	auth *appmiddleware.Authenticator,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	taskHandler *handlers.TaskHandler,
	dashboardHandler *handlers.DashboardHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	eventsHandler *handlers.EventsHandler,
) {
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		// Открытые маршруты
		r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Campus Taskboard API is running!"}`))
		})
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Маршруты, требующие токен
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/me", authHandler.Me)
			r.Get("/users", userHandler.List)

			r.Route("/user", func(r chi.Router) {
				r.Get("/teams", teamHandler.UserTeams)
				r.Get("/tasks", taskHandler.UserTasks)
				r.Get("/dashboard", dashboardHandler.UserDashboard)
				r.Put("/password", userHandler.ChangePassword)
				r.Post("/avatar", userHandler.UploadAvatar)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", teamHandler.Create)
				r.Get("/all", teamHandler.ListAll)
				r.Post("/join", teamHandler.Join)

				r.Route("/{teamID}", func(r chi.Router) {
					r.Put("/", teamHandler.Update)
					r.Delete("/", teamHandler.Delete)
					r.Get("/members", teamHandler.Members)
					r.Get("/tasks", taskHandler.TeamTasks)
					r.Get("/dashboard", dashboardHandler.TeamDashboard)
					r.Post("/leave", teamHandler.Leave)
					r.Post("/request-join", teamHandler.RequestJoin)
					r.Post("/invite", teamHandler.Invite)
					r.Post("/logo", teamHandler.UploadLogo)
					r.Get("/events", eventsHandler.ServeTeamEvents)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Put("/{taskID}", taskHandler.Update)
				r.Delete("/{taskID}", taskHandler.Delete)
			})

			// Административные маршруты
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/users", adminHandler.ListUsers)
				r.Put("/users/{userID}", adminHandler.UpdateUser)
				r.Delete("/users/{userID}", adminHandler.DeleteUser)
				r.Get("/teams", adminHandler.ListTeams)
				r.Delete("/teams/{teamID}", adminHandler.DeleteTeam)
			})
		})
	})
}
