package gateway

import (
	"net/http"
	"time"

	"github.com/c360/secwatch/health"
	"github.com/c360/secwatch/monitor"
)

// HealthResponse is the aggregate health payload for console dashboards.
type HealthResponse struct {
	Timestamp     time.Time           `json:"timestamp"`
	Status        string              `json:"status"` // "healthy", "degraded", "critical"
	Initialized   bool                `json:"initialized"`
	ActiveChecks  int                 `json:"active_checks"`
	MetricCount   int                 `json:"metric_count"`
	AlertCount    int                 `json:"alert_count"`
	LastCheckID   string              `json:"last_check_id,omitempty"`
	LastCheckTime *time.Time          `json:"last_check_time,omitempty"`
	Checks        []monitor.CheckInfo `json:"checks"`
}

// RunCheckResponse is the payload returned by a manual refresh.
type RunCheckResponse struct {
	CheckID   string          `json:"check_id"`
	Timestamp time.Time       `json:"timestamp"`
	Metrics   []health.Metric `json:"metrics"`
	Alerts    []health.Alert  `json:"alerts"`
	SendOK    bool            `json:"send_ok"`
	SendError string          `json:"send_error,omitempty"`
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleHealth summarizes scheduler state for the dashboard. Overall
// status is driven by the latest result's alerts: any critical alert
// makes the system critical, any high alert degrades it.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	checks := s.mon.ScheduledChecks()

	active := 0
	for _, c := range checks {
		if c.Active {
			active++
		}
	}

	resp := HealthResponse{
		Timestamp:    time.Now().UTC(),
		Status:       "healthy",
		Initialized:  s.mon.Initialized(),
		ActiveChecks: active,
		MetricCount:  len(s.mon.HistoryMetrics()),
		AlertCount:   len(s.mon.HistoryAlerts()),
		Checks:       checks,
	}

	if last := s.mon.LastResult(); last != nil {
		resp.LastCheckID = last.CheckID
		t := last.Timestamp
		resp.LastCheckTime = &t
		resp.Status = overallStatus(last.Alerts)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func overallStatus(alerts []health.Alert) string {
	status := "healthy"
	for _, a := range alerts {
		if a.Status != health.AlertActive {
			continue
		}
		switch a.Severity {
		case health.SeverityCritical:
			return "critical"
		case health.SeverityHigh:
			status = "degraded"
		}
	}
	return status
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mon.HistoryMetrics())
}

func (s *Server) handleAlertsHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mon.HistoryAlerts())
}

func (s *Server) handleChecks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mon.ScheduledChecks())
}

// handleRunCheck is the console's manual refresh action: one full
// evaluation of the current framework snapshot.
func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	if !s.mon.Initialized() {
		s.writeJSONError(w, "monitor not initialized", http.StatusConflict)
		return
	}

	res := s.mon.RunCheck(r.Context(), s.mon.Frameworks())

	resp := RunCheckResponse{
		CheckID:   res.CheckID,
		Timestamp: res.Timestamp,
		Metrics:   res.Metrics,
		Alerts:    res.Alerts,
		SendOK:    res.Err() == nil,
	}
	if err := res.Err(); err != nil {
		resp.SendError = err.Error()
	}

	s.writeJSON(w, http.StatusOK, resp)
}
