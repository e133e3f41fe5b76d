package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/AdamBeresnev/beerpong/internal/httputil"
	"github.com/AdamBeresnev/beerpong/internal/middleware"
	"github.com/AdamBeresnev/beerpong/internal/service"
	"github.com/AdamBeresnev/beerpong/internal/utils"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type operatorRequest struct {
	Name string `json:"name"`
}

type teamRequest struct {
	Name      string    `json:"name"`
	Player1ID uuid.UUID `json:"player_1_id"`
	Player2ID uuid.UUID `json:"player_2_id"`
}

type tournamentRequest struct {
	Name               string                      `json:"name"`
	Teams              []service.TeamInput         `json:"teams"`
	BeersPerPlayer     *int                        `json:"beers_per_player"`
	TimeWindowMinutes  *int                        `json:"time_window_minutes"`
	UndoWindowMinutes  *int                        `json:"undo_window_minutes"`
	CancellationPolicy *bracket.CancellationPolicy `json:"cancellation_policy"`
}

// config fills omitted fields from the server defaults
func (req tournamentRequest) config(defaults bracket.Config) bracket.Config {
	return bracket.Config{
		BeersPerPlayer:     utils.OrDefault(req.BeersPerPlayer, defaults.BeersPerPlayer),
		TimeWindowMinutes:  utils.OrDefault(req.TimeWindowMinutes, defaults.TimeWindowMinutes),
		UndoWindowMinutes:  utils.OrDefault(req.UndoWindowMinutes, defaults.UndoWindowMinutes),
		CancellationPolicy: utils.OrDefault(req.CancellationPolicy, defaults.CancellationPolicy),
	}
}

type completeRequest struct {
	WinnerID uuid.UUID `json:"winner_id"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.BadRequest(w, "Invalid JSON body", err)
		return false
	}
	return true
}

func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+param, err)
		return uuid.Nil, false
	}
	return id, true
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if len(app.cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.LoadOperator(app.sessionManager))

	r.Post("/operator", func(w http.ResponseWriter, r *http.Request) {
		var req operatorRequest
		if !decode(w, r, &req) {
			return
		}
		if err := middleware.SetOperator(app.sessionManager, r, req.Name); err != nil {
			httputil.InternalServerError(w, "Failed to store operator", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/teams", func(w http.ResponseWriter, r *http.Request) {
			eventID, ok := urlID(w, r, "eventID")
			if !ok {
				return
			}
			teams, err := app.registry.ListEventTeams(r.Context(), eventID)
			if err != nil {
				httputil.Error(w, "Failed to list teams", err)
				return
			}
			httputil.JSON(w, http.StatusOK, teams)
		})

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			eventID, ok := urlID(w, r, "eventID")
			if !ok {
				return
			}
			var req teamRequest
			if !decode(w, r, &req) {
				return
			}
			team, err := app.registry.PairTeam(r.Context(), eventID, req.Name, req.Player1ID, req.Player2ID)
			if err != nil {
				httputil.Error(w, "Failed to pair team", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, team)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			eventID, ok := urlID(w, r, "eventID")
			if !ok {
				return
			}
			var req tournamentRequest
			if !decode(w, r, &req) {
				return
			}
			tournament, err := app.tournaments.CreateTournament(r.Context(), eventID, req.Name, req.Teams, req.config(app.cfg.TournamentDefaults))
			if err != nil {
				httputil.Error(w, "Failed to create tournament", err)
				return
			}
			w.Header().Set("Location", "/tournaments/"+tournament.ID.String())
			httputil.JSON(w, http.StatusCreated, tournament)
		})
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		data, err := app.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get tournament", err)
			return
		}
		httputil.JSON(w, http.StatusOK, data)
	})

	r.Route("/games/{id}", func(r chi.Router) {
		r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "id")
			if !ok {
				return
			}
			result, err := app.tournaments.StartGame(r.Context(), id, time.Now().UTC())
			if err != nil {
				httputil.Error(w, "Failed to start game", err)
				return
			}
			httputil.JSON(w, http.StatusOK, result)
		})

		r.Post("/complete", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "id")
			if !ok {
				return
			}
			var req completeRequest
			if !decode(w, r, &req) {
				return
			}
			result, err := app.tournaments.CompleteGame(r.Context(), id, req.WinnerID, time.Now().UTC())
			if err != nil {
				httputil.Error(w, "Failed to complete game", err)
				return
			}
			httputil.JSON(w, http.StatusOK, result)
		})

		r.Post("/cancel", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "id")
			if !ok {
				return
			}
			result, err := app.tournaments.CancelGame(r.Context(), id, time.Now().UTC())
			if err != nil {
				httputil.Error(w, "Failed to cancel game", err)
				return
			}
			httputil.JSON(w, http.StatusOK, result)
		})

		r.Get("/credits", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "id")
			if !ok {
				return
			}
			credits, err := app.tournaments.ListGameCredits(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to list credits", err)
				return
			}
			httputil.JSON(w, http.StatusOK, credits)
		})
	})

	return r
}
