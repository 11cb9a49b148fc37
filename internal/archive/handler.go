package archive

import (
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the sweep to operators. The scheduled trigger is process
// start only, so a long-lived deployment needs this to archive without a
// restart.
type Handler struct {
	sweeper *Sweeper
	logger  apt.Logger
	tlm     *telemetry.HTTP
}

func NewHandler(sweeper *Sweeper, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		sweeper: sweeper,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/archive/sweep", h.RunSweep)
}

func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RunSweep")
	defer finish()

	result, err := h.sweeper.Sweep(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("sweep failed", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Archival sweep failed")
		return
	}

	apt.RespondSuccess(w, result)
}
