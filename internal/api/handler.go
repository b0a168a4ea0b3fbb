// Package api implements the HTTP handlers for the listings service.
//
// Routes:
//
//	GET    /jobs?q=&tag=&profile=true     → filter the catalog (stateless)
//	GET    /jobs/{id}                     → one job
//	POST   /jobs                          → create a job
//	PUT    /jobs/{id}                     → update a job
//	DELETE /jobs/{id}                     → delete a job and its favorite mark
//	POST   /jobs/{id}/favorite            → toggle favorite
//	GET    /favorites                     → favorite jobs, in favorite order
//	GET    /profile                       → current profile
//	PUT    /profile                       → save name + position
//	POST   /profile/skills                → add a profile skill
//	DELETE /profile/skills/{skill}        → remove a profile skill
//	GET    /view                          → board snapshot
//	PUT    /view/search                   → set search text
//	POST   /view/tags                     → select a tag
//	DELETE /view/tags/{tag}               → deselect a tag
//	PUT    /view/profile-skills           → narrow by profile skills on/off
//	DELETE /view/filters                  → clear search + tags
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/board"
	"jobmate/listings-service/internal/catalog"
	"jobmate/listings-service/internal/filter"
	"jobmate/listings-service/internal/listing"
	"jobmate/listings-service/internal/validation"
)

const maxBodyBytes = 1 << 20

// Handler holds shared dependencies.
type Handler struct {
	board *board.Board
	log   logrus.FieldLogger
}

// NewHandler returns a configured Handler.
func NewHandler(b *board.Board, log logrus.FieldLogger) *Handler {
	return &Handler{board: b, log: log.WithField("component", "http")}
}

// RegisterRoutes mounts all listings routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.listJobs)
		r.Post("/", h.createJob)
		r.Get("/{id}", h.getJob)
		r.Put("/{id}", h.updateJob)
		r.Delete("/{id}", h.deleteJob)
		r.Post("/{id}/favorite", h.toggleFavorite)
	})
	r.Get("/favorites", h.listFavorites)

	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.saveProfile)
	r.Post("/profile/skills", h.addSkill)
	r.Delete("/profile/skills/{skill}", h.removeSkill)

	r.Get("/view", h.getView)
	r.Put("/view/search", h.setSearch)
	r.Post("/view/tags", h.addTag)
	r.Delete("/view/tags/{tag}", h.removeTag)
	r.Put("/view/profile-skills", h.setUseProfileSkills)
	r.Delete("/view/filters", h.clearFilters)
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := filter.State{SearchText: q.Get("q")}
	for _, tag := range q["tag"] {
		st.AddTag(tag)
	}
	st.UseProfileSkills, _ = strconv.ParseBool(q.Get("profile"))

	jsonOK(w, h.board.Query(st))
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.board.Job(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeJob(w, r)
	if !ok {
		return
	}
	job, err := h.board.CreateJob(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, job)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	f, ok := decodeJob(w, r)
	if !ok {
		return
	}
	job, err := h.board.UpdateJob(r.Context(), id, f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if err := h.board.DeleteJob(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	fav, err := h.board.ToggleFavorite(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"id": id, "favorite": fav})
}

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.board.FavoriteJobs())
}

// ─── Profile ─────────────────────────────────────────────────────────────────

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.board.Profile())
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Position string `json:"position"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := h.board.SaveProfile(r.Context(), body.Name, body.Position); err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, h.board.Profile())
}

func (h *Handler) addSkill(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Skill string `json:"skill"`
	}
	if !decode(w, r, &body) {
		return
	}
	added, err := h.board.AddSkill(r.Context(), body.Skill)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"added": added, "profile": h.board.Profile()})
}

func (h *Handler) removeSkill(w http.ResponseWriter, r *http.Request) {
	skill, ok := pathParam(w, r, "skill")
	if !ok {
		return
	}
	if err := h.board.RemoveSkill(r.Context(), skill); err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, h.board.Profile())
}

// ─── Board view ──────────────────────────────────────────────────────────────

func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.board.View())
}

func (h *Handler) setSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	jsonOK(w, h.board.Search(body.Text))
}

func (h *Handler) addTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Tag) == "" {
		h.writeError(w, validation.New(map[string]string{"tag": "tag is required"}))
		return
	}
	jsonOK(w, h.board.AddTag(body.Tag))
}

func (h *Handler) removeTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := pathParam(w, r, "tag")
	if !ok {
		return
	}
	jsonOK(w, h.board.RemoveTag(tag))
}

func (h *Handler) setUseProfileSkills(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &body) {
		return
	}
	jsonOK(w, h.board.UseProfileSkills(body.Enabled))
}

func (h *Handler) clearFilters(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.board.ClearFilters())
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jobID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid job id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// pathParam returns the unescaped value of a free-text path segment.
// chi hands back the raw segment whenever the request path needed escaping
// ("C%2B%2B", "CI%2FCD").
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		jsonError(w, "invalid "+name, http.StatusBadRequest)
		return "", false
	}
	return v, true
}

func decodeJob(w http.ResponseWriter, r *http.Request) (listing.JobFields, bool) {
	var f listing.JobFields
	if !decode(w, r, &f) {
		return listing.JobFields{}, false
	}
	return f, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *validation.Error
	if errors.As(err, &ve) {
		jsonStatus(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "fields": ve.Fields})
		return
	}
	if errors.Is(err, listing.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	var te *catalog.TransportError
	if errors.As(err, &te) {
		jsonError(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	h.log.WithError(err).Error("request failed")
	jsonError(w, "internal server error", http.StatusInternalServerError)
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}
