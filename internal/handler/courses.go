package handler

import (
	"context"
	"net/http"

	"github.com/coursechat/coursechat/internal/models"
)

// CourseAnalytics provides catalog-wide statistics.
type CourseAnalytics interface {
	Analytics(ctx context.Context) (models.CourseStats, error)
}

// CoursesHandler handles GET /api/v1/courses
type CoursesHandler struct {
	catalog CourseAnalytics
}

func NewCoursesHandler(catalog CourseAnalytics) *CoursesHandler {
	return &CoursesHandler{catalog: catalog}
}

func (h *CoursesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Analytics(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "course analytics failed: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, stats)
}
