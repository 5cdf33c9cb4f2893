package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/predictions"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/teams"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"
	dateLayout     = "2006-01-02"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	games       *service.GameService
	players     *service.PlayerService
	teams       *service.TeamService
	seasons     *service.SeasonService
	directory   *service.TeamDirectory
	predictions *predictions.Store

	checks map[string]func(context.Context) error
	now    func() time.Time
}

// NewHandler creates a new handler. preds may be nil.
func NewHandler(src service.Source, dir *service.TeamDirectory, resolver *teams.Resolver, preds *predictions.Store) *Handler {
	return &Handler{
		games:       service.NewGameService(src, resolver),
		players:     service.NewPlayerService(src, resolver),
		teams:       service.NewTeamService(src, resolver),
		seasons:     service.NewSeasonService(src),
		directory:   dir,
		predictions: preds,
		checks:      map[string]func(context.Context) error{},
		now:         time.Now,
	}
}

// AddHealthCheck registers a dependency probe reported by /health.
func (h *Handler) AddHealthCheck(name string, fn func(context.Context) error) {
	h.checks[name] = fn
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}
	for name, fn := range h.checks {
		if err := fn(r.Context()); err != nil {
			status = "degraded"
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": serviceName,
		"version": serviceVersion,
		"checks":  checks,
	})
}

// GetSeasons returns every season with games, latest first
func (h *Handler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.directory.Seasons(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to fetch seasons", err)
		return
	}
	respondJSON(w, http.StatusOK, seasons)
}

// GetChampion returns the winner of a season's final game
func (h *Handler) GetChampion(w http.ResponseWriter, r *http.Request) {
	season := mux.Vars(r)["season"]
	champ, err := h.games.Champion(r.Context(), season)
	if err != nil {
		respondServiceError(w, "Failed to fetch champion", err)
		return
	}
	if champ == nil {
		respondError(w, http.StatusNotFound, "No champion for season "+season, nil)
		return
	}
	respondJSON(w, http.StatusOK, champ)
}

// GetLeaders returns a season's player or team table. The season "all"
// spans every season.
func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	season := mux.Vars(r)["season"]
	if strings.EqualFold(season, "all") {
		season = ""
	}
	q := r.URL.Query()

	kind, err := stats.ParseStatType(valueOr(q.Get("type"), "player"))
	if err != nil {
		respondServiceError(w, "Invalid type", err)
		return
	}

	minGames := 0
	if s := q.Get("min_games"); s != "" {
		if minGames, err = strconv.Atoi(s); err != nil || minGames < 0 {
			respondError(w, http.StatusBadRequest, "Invalid min_games", err)
			return
		}
	}

	board, err := h.seasons.Leaders(r.Context(), season, kind, q.Get("game_type"), minGames)
	if err != nil {
		respondServiceError(w, "Failed to build leaders", err)
		return
	}
	if q.Get("display") == "percent" {
		board.Records = service.DisplayPercentages(board.Records)
	}
	respondJSON(w, http.StatusOK, board)
}

// GetGames returns played games matching the query filters
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseDates(q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (YYYY-MM-DD)", err)
		return
	}

	var f stats.FilterSpec
	if s := q.Get("season"); s != "" {
		f = f.WithSeason(s)
	}
	if s := q.Get("game_type"); s != "" {
		f = f.WithGameType(s)
	}
	if s := q.Get("team"); s != "" {
		f = f.WithTeam(s)
	}
	f = f.WithDates(from, to)

	games, err := h.games.Schedule(r.Context(), f)
	if err != nil {
		respondServiceError(w, "Failed to fetch games", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetGame returns one game with both box scores
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	detail, err := h.games.Detail(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		respondServiceError(w, "Failed to fetch game", err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetTeams returns the teams list
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	list, err := h.directory.Teams(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to fetch teams", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ResolveTeam maps a team name to its abbreviation as of a date
func (h *Handler) ResolveTeam(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	var date time.Time
	if s := q.Get("date"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date (YYYY-MM-DD)", err)
			return
		}
		date = d
	}

	respondJSON(w, http.StatusOK, h.directory.Resolve(r.Context(), name, date))
}

// GetTeamReport returns a team's report under the query filters
func (h *Handler) GetTeamReport(w http.ResponseWriter, r *http.Request) {
	opts, err := parseReportOptions(r)
	if err != nil {
		respondServiceError(w, "Invalid report filters", err)
		return
	}
	report, err := h.teams.Report(r.Context(), mux.Vars(r)["abbr"], opts)
	if err != nil {
		respondServiceError(w, "Failed to build team report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// SearchPlayers returns player names containing q
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	names, err := h.players.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		respondServiceError(w, "Failed to search players", err)
		return
	}
	respondJSON(w, http.StatusOK, names)
}

// GetPlayerReport returns a player's report under the query filters
func (h *Handler) GetPlayerReport(w http.ResponseWriter, r *http.Request) {
	opts, err := parseReportOptions(r)
	if err != nil {
		respondServiceError(w, "Invalid report filters", err)
		return
	}
	report, err := h.players.Report(r.Context(), mux.Vars(r)["name"], opts)
	if err != nil {
		respondServiceError(w, "Failed to build player report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type metricPayload struct {
	Key        stats.Metric `json:"key"`
	Label      string       `json:"label"`
	Percentage bool         `json:"percentage"`
}

// GetMetrics returns the selectable chart metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := stats.Metrics()
	out := make([]metricPayload, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, metricPayload{Key: m, Label: m.Label(), Percentage: m.IsPercentage()})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetPredictions returns the current prediction feed and its table
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	feed := h.feed()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"source":   feed.Source,
		"metadata": feed.Metadata,
		"table":    predictions.Table(feed, h.directory.Resolver(r.Context())),
	})
}

// GetNextPrediction returns the next predicted game
func (h *Handler) GetNextPrediction(w http.ResponseWriter, r *http.Request) {
	m := predictions.NextMatchup(h.feed(), h.now(), h.directory.Resolver(r.Context()))
	if m == nil {
		respondError(w, http.StatusNotFound, "No upcoming predicted games", nil)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) feed() predictions.Feed {
	if h.predictions == nil {
		return predictions.Empty()
	}
	return h.predictions.Current()
}

func parseReportOptions(r *http.Request) (service.ReportOptions, error) {
	q := r.URL.Query()
	opts := service.ReportOptions{
		Season:   q.Get("season"),
		GameType: q.Get("game_type"),
		Opponent: q.Get("opponent"),
	}

	from, to, err := parseDates(q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		return opts, err
	}
	opts.DateFrom, opts.DateTo = from, to

	if s := q.Get("metric"); s != "" {
		m, err := stats.ParseMetric(s)
		if err != nil {
			return opts, err
		}
		opts.Metric = m
	}
	return opts, nil
}

// errBadDate marks a malformed date query parameter.
var errBadDate = errors.New("invalid date")

func parseDates(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		if from, err = time.Parse(dateLayout, fromStr); err != nil {
			return from, to, fmt.Errorf("%w %q: use YYYY-MM-DD", errBadDate, fromStr)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			return from, to, fmt.Errorf("%w %q: use YYYY-MM-DD", errBadDate, toStr)
		}
	}
	return from, to, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var missing *stats.MissingColumnError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stats.ErrUnknownStatType),
		errors.Is(err, stats.ErrUnknownMetric),
		errors.Is(err, errBadDate):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, message string, err error) {
	respondError(w, statusOf(err), message, err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
