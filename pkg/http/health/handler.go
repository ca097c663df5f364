package health

import (
	"net/http"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/health"
	"github.com/bytedance/sonic"
)

type componentView struct {
	Name      string     `json:"name"`
	Ready     bool       `json:"ready"`
	StartedAt time.Time  `json:"startedAt"`
	ReadyAt   *time.Time `json:"readyAt,omitempty"`
}

type statusView struct {
	Ready      bool            `json:"ready"`
	Components []componentView `json:"components"`
}

type healthHandler struct {
	readiness health.ReadinessChecker
}

func newHealthHandler(r health.ReadinessChecker) *healthHandler {
	return &healthHandler{readiness: r}
}

// IsReady answers "ready"/"not ready", or the per-component status as JSON
// when asked with ?format=json or Accept: application/json.
func (h *healthHandler) IsReady(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json" {
		status := h.readiness.Status()
		code := http.StatusOK
		if !status.Ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, toView(status))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.readiness.IsReady() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

func (h *healthHandler) IsLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

func toView(s health.ReadinessStatus) statusView {
	view := statusView{Ready: s.Ready, Components: make([]componentView, 0, len(s.Components))}
	for _, c := range s.Components {
		cv := componentView{Name: c.Name, Ready: c.Ready, StartedAt: c.StartedAt}
		if c.Ready {
			readyAt := c.ReadyAt
			cv.ReadyAt = &readyAt
		}
		view.Components = append(view.Components, cv)
	}
	return view
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
