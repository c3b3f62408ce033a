package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/services"
)

const dateLayout = "2006-01-02"

// DashboardStats godoc
// @ID          dashboardStats
// @Summary     Admin dashboard statistics
// @Description Scalar counters, zero-filled daily series and the latest tickets. The range defaults to the last seven days.
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       start_date  query     string  false  "First day (YYYY-MM-DD)"  example(2025-05-01)
// @Param       end_date    query     string  false  "Last day (YYYY-MM-DD)"   example(2025-05-07)
// @Success     200  {object}  services.DashboardStats
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     422  {object}  handlers.ErrorResponse
// @Router      /dashboard/stats [get]
func (h *Handlers) DashboardStats(c *gin.Context) {
	var r services.Range
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start_date", &r.Start}, {"end_date", &r.End}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			failValidation(c, p.name, "must be a date formatted YYYY-MM-DD")
			return
		}
		*p.dst = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		failValidation(c, "end_date", "must not be before start_date")
		return
	}

	stats, err := h.Dashboard.Stats(c.Request.Context(), r)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}
