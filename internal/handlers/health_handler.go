package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"jobmate/interview/internal/ai"
	"jobmate/interview/internal/config"
	"jobmate/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

type HealthHandler struct {
	provider ai.Provider
	db       *gorm.DB
	config   *config.Config
}

func NewHealthHandler(provider ai.Provider, db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{provider: provider, db: db, config: cfg}
}

func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (h *HealthHandler) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ReadinessCheck)
	ready := true

	if h.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "AI provider not initialized"}
		ready = false
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok", Message: h.provider.GetProviderName()}
	}

	if h.db == nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "database not initialized"}
		ready = false
	} else if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "database unreachable"}
		ready = false
	} else {
		checks["database"] = ReadinessCheck{Status: "ok"}
	}

	if h.config == nil {
		checks["configuration"] = ReadinessCheck{Status: "failed", Message: "configuration not loaded"}
		ready = false
	} else {
		checks["configuration"] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{Service: "interview", Checks: checks}
	if ready {
		response.Status = "ready"
		utils.WriteJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	utils.WriteJSON(w, http.StatusServiceUnavailable, response)
}
