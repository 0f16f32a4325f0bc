package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/httputil"
	"github.com/AdamBeresnev/tournament-tracker/internal/importer"
	"github.com/AdamBeresnev/tournament-tracker/internal/service"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxUploadBytes = 32 << 20

type application struct {
	db          *sqlx.DB
	tournaments *service.TournamentService
	roster      *service.RosterService
	refs        *store.ReferenceStore
	importer    *importer.Importer
}

func newApplication(database *sqlx.DB) *application {
	refs := store.NewReferenceStore(database)
	return &application{
		db:          database,
		tournaments: service.NewTournamentService(database, store.NewTournamentStore(database)),
		roster:      service.NewRosterService(refs),
		refs:        refs,
		importer:    importer.New(refs),
	}
}

func newRouter(app *application, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			httputil.InternalServerError(w, "Database unreachable", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", app.listTournaments)
		r.Post("/", app.createTournament)
		r.Get("/{id}", app.getTournament)
		r.Put("/{id}", app.updateTournament)
		r.Post("/{id}/matches/{matchID}/winner", app.recordWinner)
	})

	r.Get("/imports", app.listImports)
	r.Post("/imports/{table}", app.importTable)

	return r
}

type createTournamentRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	League      string            `json:"league"`
	Data        *bracket.Document `json:"data"`
	// Roster is newline separated team names or reference team ids, used
	// when Data is omitted.
	Roster string `json:"roster"`
}

type updateTournamentRequest struct {
	Status   bracket.Status    `json:"status"`
	Data     *bracket.Document `json:"data"`
	Revision int64             `json:"revision"`
}

type recordWinnerRequest struct {
	TeamID string `json:"team_id"`
}

func tournamentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	summaries, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	in := service.CreateInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        strings.TrimSpace(req.Type),
		League:      strings.TrimSpace(req.League),
	}
	if err := in.Validate(); err != nil {
		httputil.Error(w, err)
		return
	}

	switch {
	case req.Data != nil:
		in.Data = *req.Data
	case strings.TrimSpace(req.Roster) != "":
		teams, err := app.roster.ParseRoster(r.Context(), in.League, req.Roster)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		in.Data = bracket.Document{Teams: teams}
	default:
		in.Data = bracket.NewDocument()
	}

	id, err := app.tournaments.CreateTournament(r.Context(), in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	t, err := app.tournaments.LoadTournament(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (app *application) updateTournament(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	var req updateTournamentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if req.Data == nil {
		httputil.BadRequest(w, "data is required", nil)
		return
	}

	var t *bracket.Tournament
	if req.Revision > 0 {
		t, err = app.tournaments.UpdateTournamentIfRevision(r.Context(), id, req.Revision, *req.Data, req.Status)
	} else {
		t, err = app.tournaments.UpdateTournament(r.Context(), id, *req.Data, req.Status)
	}
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (app *application) recordWinner(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		httputil.BadRequest(w, "Invalid match ID", err)
		return
	}

	var req recordWinnerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if req.TeamID == "" {
		httputil.BadRequest(w, "team_id is required", nil)
		return
	}

	t, err := app.tournaments.RecordMatchWinner(r.Context(), id, matchID, req.TeamID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (app *application) listImports(w http.ResponseWriter, r *http.Request) {
	records, err := app.refs.ListImports(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (app *application) importTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !store.IsReferenceTable(table) {
		httputil.NotFound(w, "Unknown table", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "A file upload is required", err)
		return
	}
	defer file.Close()

	ds, err := importer.Read(header.Filename, file)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			httputil.BadRequest(w, "Only .csv and .xlsx files are supported", err)
			return
		}
		httputil.BadRequest(w, "Could not read uploaded file", err)
		return
	}

	record, err := app.importer.Import(r.Context(), table, ds, header.Filename)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}
