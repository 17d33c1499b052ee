package handler

import (
	"errors"
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// PredictHandler handles seat-prediction HTTP requests
type PredictHandler struct {
	predictor *service.Predictor
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(predictor *service.Predictor) *PredictHandler {
	return &PredictHandler{predictor: predictor}
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Invalid request: " + err.Error(),
			Results: []model.PredictionResult{},
		})
		return
	}

	applyDefaults(&req)

	response, err := h.predictor.Predict(&req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrUnknownRound) {
			status = http.StatusBadRequest
		}
		c.JSON(status, model.ErrorResponse{
			Error:   err.Error(),
			Results: []model.PredictionResult{},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// applyDefaults fills unset filter fields with their wildcard or customary
// default values
func applyDefaults(req *model.PredictionRequest) {
	if req.Round == "" {
		req.Round = "6"
	}
	if req.InstituteType == "" {
		req.InstituteType = model.FilterAll
	}
	if req.SeatType == "" {
		req.SeatType = model.FilterAll
	}
	if req.Gender == "" {
		req.Gender = model.FilterAll
	}
	if req.Quota == "" {
		req.Quota = model.FilterAll
	}
	if req.Program == "" {
		req.Program = model.FilterAll
	}
}
