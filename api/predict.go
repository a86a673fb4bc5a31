package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"propiedades-api/ml"
	"propiedades-api/models"
	"propiedades-api/services"
)

// validatePredictionRequest enforces the request bounds before the model
// sees the input. The barrio must be one of the canonical names.
func validatePredictionRequest(req *models.PredictionRequest) error {
	if !services.IsOfficialBarrio(req.Barrio) {
		return fmt.Errorf("barrio %q is not an official CABA barrio", req.Barrio)
	}
	if req.Ambientes < 1 || req.Ambientes > 10 {
		return errors.New("ambientes must be between 1 and 10")
	}
	if req.Dormitorios < 0 || req.Dormitorios > 8 {
		return errors.New("dormitorios must be between 0 and 8")
	}
	if req.Dormitorios > req.Ambientes {
		return errors.New("dormitorios cannot exceed ambientes")
	}
	if req.Banos < 1 || req.Banos > 6 {
		return errors.New("banos must be between 1 and 6")
	}
	if req.SuperficieTotalM2 <= 20 || req.SuperficieTotalM2 >= 1000 {
		return errors.New("superficie_total_m2 must be between 20 and 1000 exclusive")
	}
	if req.Cocheras < 0 || req.Cocheras > 4 {
		return errors.New("cocheras must be between 0 and 4")
	}
	return nil
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if err := validatePredictionRequest(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := s.predictor.Predict(&req)
	if errors.Is(err, ml.ErrModelUnavailable) {
		respondError(w, http.StatusServiceUnavailable,
			"prediction model is not available; check server logs")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "prediction failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.predictor.ModelInfo()
	if errors.Is(err, ml.ErrModelUnavailable) {
		respondError(w, http.StatusServiceUnavailable, "prediction model is not available")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}
