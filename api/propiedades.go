package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"propiedades-api/models"
	"propiedades-api/services"
	"propiedades-api/storage"
)

func (s *Server) handleListPropiedades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter storage.ListFilter

	if barrio := q.Get("barrio"); barrio != "" {
		filter.Barrio = &barrio
	}
	if raw := q.Get("ambientes_min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "ambientes_min must be an integer")
			return
		}
		filter.AmbientesMin = &n
	}
	if raw := q.Get("price_max_usd"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "price_max_usd must be a number")
			return
		}
		filter.PriceMaxUSD = &v
	}

	filter.Limit = 10
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 100")
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	props, err := s.store.List(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	if props == nil {
		props = []*models.Property{}
	}
	respondJSON(w, http.StatusOK, props)
}

func (s *Server) handleGetPropiedad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	prop, err := s.store.GetByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "propiedad not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prop)
}

func (s *Server) handleCreatePropiedad(w http.ResponseWriter, r *http.Request) {
	var prop models.Property
	if err := json.NewDecoder(r.Body).Decode(&prop); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	if prop.SourceID == "" {
		respondError(w, http.StatusUnprocessableEntity, "source_id is required")
		return
	}
	if prop.PriceUSD == nil || *prop.PriceUSD <= 10_000 {
		respondError(w, http.StatusUnprocessableEntity, "price_usd must be greater than 10000")
		return
	}
	if prop.Barrio == nil || !services.IsOfficialBarrio(*prop.Barrio) {
		respondError(w, http.StatusUnprocessableEntity, "barrio must be an official CABA barrio")
		return
	}

	id, err := s.store.Create(&prop)
	if errors.Is(err, storage.ErrDuplicate) {
		respondError(w, http.StatusConflict, "a propiedad with that source_id already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	prop.ID = id
	respondJSON(w, http.StatusCreated, &prop)
}

func (s *Server) handleUpdatePropiedad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var update models.PropertyUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if update.IsEmpty() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if update.PriceUSD != nil && *update.PriceUSD <= 10_000 {
		respondError(w, http.StatusUnprocessableEntity, "price_usd must be greater than 10000")
		return
	}

	prop, err := s.store.Update(id, &update)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "propiedad not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prop)
}

func (s *Server) handleDeletePropiedad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.store.Delete(id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "propiedad not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"detail": "propiedad deleted"})
}

func (s *Server) handleBarrioStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.BarrioStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	if stats == nil {
		stats = []models.BarrioStats{}
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMarketEvolution(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.store.MarketEvolution()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []models.MarketSnapshot{}
	}
	respondJSON(w, http.StatusOK, snapshots)
}

// pathID parses the {id} path segment, writing a 422 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}
