package handlers

import (
	"net/http"

	"github.com/Benjaminax/camous-taskboard-system/middleware"
	"github.com/Benjaminax/camous-taskboard-system/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) TeamDashboard(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	dashboard, err := h.dashboardService.TeamDashboard(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) UserDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	dashboard, err := h.dashboardService.UserDashboard(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}
