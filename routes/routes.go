package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkarsky/brain-battle/handlers"
)

// SetupRoutes настраивает маршрутизатор: CORS, стандартные middleware
// и все эндпоинты API.
func SetupRoutes(
	router *chi.Mux,
	corsOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Put("/", tournamentHandler.UpdateHandler)
				r.Delete("/", tournamentHandler.DeleteHandler)
				r.Post("/logo", tournamentHandler.UploadLogoHandler)

				r.Get("/teams", teamHandler.ListByTournamentHandler)
				r.Post("/teams", teamHandler.AddToTournamentHandler)
				r.Delete("/teams/{teamID}", teamHandler.RemoveFromTournamentHandler)

				r.Get("/matches", matchHandler.ListByTournamentHandler)
				r.Post("/matches", matchHandler.CreateHandler)
				r.Post("/generate-matches", matchHandler.GenerateHandler)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.ListHandler)
			r.Post("/", teamHandler.CreateHandler)
			r.Put("/{teamID}", teamHandler.UpdateHandler)
			r.Delete("/{teamID}", teamHandler.DeleteHandler)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListAllHandler)
			r.Get("/{matchID}", matchHandler.GetByIDHandler)
			r.Put("/{matchID}", matchHandler.UpdateHandler)
			r.Delete("/{matchID}", matchHandler.DeleteHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
