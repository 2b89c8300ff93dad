package template

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/store"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type insertRequest struct {
	TemplateID string   `json:"templateId"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
}

type saveShapeRequest struct {
	Name  string         `json:"name"`
	Shape document.Shape `json:"shape"`
}

// Routes registers the template endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/templates", h.List).Methods("GET")
	r.HandleFunc("/templates", h.Create).Methods("POST")
	r.HandleFunc("/templates/{id}", h.Get).Methods("GET")
	r.HandleFunc("/templates/{id}", h.Save).Methods("PUT")
	r.HandleFunc("/templates/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/templates/{id}/insert", h.Insert).Methods("POST")
	r.HandleFunc("/templates/{id}/preview", h.Preview).Methods("GET")
	r.HandleFunc("/templates/{id}/thumbnail", h.Thumbnail).Methods("GET")
	r.HandleFunc("/shapes/template", h.SaveShape).Methods("POST")
	r.HandleFunc("/stats", h.Stats).Methods("GET")
}

// List accepts ?kind=template or ?kind=drawing; anything else lists both.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.TemplateFilter
	switch r.URL.Query().Get("kind") {
	case "template":
		v := true
		filter.IsTemplate = &v
	case "drawing":
		v := false
		filter.IsTemplate = &v
	}

	templates, err := h.service.List(r.Context(), filter)
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Draft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req Draft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.service.SaveDrawing(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TemplateID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "templateId is required"})
		return
	}

	var drop *document.Point
	if req.X != nil && req.Y != nil {
		drop = &document.Point{X: *req.X, Y: *req.Y}
	}

	shapes, err := h.service.Insert(r.Context(), mux.Vars(r)["id"], req.TemplateID, drop)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, shapes)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, _ := strconv.ParseFloat(q.Get("width"), 64)
	height, _ := strconv.ParseFloat(q.Get("height"), 64)

	p, err := h.service.Preview(r.Context(), mux.Vars(r)["id"], width, height)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Thumbnail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) SaveShape(w http.ResponseWriter, r *http.Request) {
	var req saveShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.service.SaveShapeAsTemplate(r.Context(), req.Name, req.Shape)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// Stats reports drawing totals for the dashboard.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrEmptyTemplate):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ErrEmptyTemplate.Error()})
	case errors.Is(err, ErrNameRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrNameRequired.Error()})
	case errors.Is(err, document.ErrInvalidShape):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
