package httpapi

import (
	"context"
	"errors"
	"net/http"

	"yardwatch/internal/poll"
)

type PollHandler struct {
	RunCycle func(ctx context.Context, trigger string) (poll.Report, error)
	Status   func(ctx context.Context) poll.Status
}

func (h PollHandler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Status(r.Context()))
}

// Run triggers a sweep and blocks until its report is ready. Disconnecting
// cancels the sweep.
func (h PollHandler) Run(w http.ResponseWriter, r *http.Request) {
	rep, err := h.RunCycle(r.Context(), poll.TriggerManual)
	if errors.Is(err, poll.ErrCycleRunning) {
		WriteError(w, r, http.StatusConflict, "cycle_running", "a cycle is already running")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "cycle_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}
