package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbgaming/cafedesk/internal/catalog"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	store  *Store
	rate   int
	logger apt.Logger
	config *apt.Config
	tlm    *telemetry.HTTP
}

func NewHandler(store *Store, rate int, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		store:  store,
		rate:   rate,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Post("/estimate", h.EstimateSubtotal)
		r.Get("/export", h.ExportSessions)
		r.Get("/{id}", h.GetSession)
		r.Put("/{id}", h.UpdateSession)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/summary", h.AnalyticsSummary)
		r.Get("/revenue", h.AnalyticsRevenue)
		r.Get("/hourly", h.AnalyticsHourly)
		r.Get("/snacks", h.AnalyticsSnacks)
	})

	r.Get("/catalog", h.GetCatalog)
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

type snackSelection struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type createSessionRequest struct {
	CustomerName  string           `json:"customer_name"`
	PhoneNumber   string           `json:"phone_number"`
	PartySize     int              `json:"party_size"`
	DurationHours float64          `json:"duration_hours"`
	AgeYears      int              `json:"age_years"`
	PaymentMode   string           `json:"payment_mode"`
	Snacks        []snackSelection `json:"snacks"`
}

type updateSessionRequest struct {
	DurationHours float64     `json:"duration_hours"`
	PartySize     int         `json:"party_size"`
	Snacks        SnackOrders `json:"snacks"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateSession")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var req createSessionRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	lines, err := h.resolveSnacks(req.Snacks)
	if err != nil {
		log.Debug("unknown snack in create request", "error", err)
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.CreateSession(ctx, CreateInput{
		CustomerName:  req.CustomerName,
		PhoneNumber:   req.PhoneNumber,
		PartySize:     req.PartySize,
		DurationHours: req.DurationHours,
		Snacks:        lines,
		AgeYears:      req.AgeYears,
		PaymentMode:   req.PaymentMode,
	})
	if err != nil {
		h.respondWriteError(w, log, err, "Could not start session")
		return
	}

	entry, found := h.findInSnapshot(id)
	if !found {
		// Snapshot refresh raced the read; respond with the id alone.
		w.WriteHeader(http.StatusCreated)
		apt.RespondSuccess(w, map[string]string{"id": id.String()})
		return
	}

	links := apt.RESTfulLinksFor(entry)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, entry, links...)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSession")
	defer finish()
	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	entry, found := h.findInSnapshot(id)
	if !found {
		apt.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}

	links := apt.RESTfulLinksFor(entry)
	apt.RespondSuccess(w, entry, links...)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateSession")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req updateSessionRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	err := h.store.UpdateSession(ctx, id, req.DurationHours, req.PartySize, req.Snacks)
	if err != nil {
		h.respondWriteError(w, log, err, "Could not update session")
		return
	}

	entry, found := h.findInSnapshot(id)
	if !found {
		apt.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}

	links := apt.RESTfulLinksFor(entry)
	apt.RespondSuccess(w, entry, links...)
}

// ListSessions serves the dashboard views from the latest snapshot, newest
// first. view=today|active|completed narrows the scope; payment_mode
// narrows further.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListSessions")
	defer finish()

	now := time.Now()
	entries := h.store.Snapshot().Entries()

	switch view := r.URL.Query().Get("view"); view {
	case "", "all":
	case "today":
		entries = SelectToday(entries, now)
	case "active":
		entries = SelectActive(entries, now)
	case "completed":
		entries = SelectCompleted(entries, now)
	default:
		apt.RespondError(w, http.StatusBadRequest, "Invalid view parameter")
		return
	}

	if mode := r.URL.Query().Get("payment_mode"); mode != "" {
		if mode != PaymentModeOffline && mode != PaymentModeOnline {
			apt.RespondError(w, http.StatusBadRequest, "Invalid payment_mode parameter")
			return
		}
		entries = SelectByPaymentMode(entries, mode)
	}

	apt.RespondCollection(w, entries, "session")
}

type estimateResponse struct {
	SubTotal int `json:"sub_total"`
}

// EstimateSubtotal prices a half-filled form without persisting anything.
// It runs on every edit, so it accepts whatever numerics it is given.
func (h *Handler) EstimateSubtotal(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.EstimateSubtotal")
	defer finish()
	log := h.log(r)

	var req createSessionRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	lines, err := h.resolveSnacks(req.Snacks)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	subtotal := ComputeSubtotal(req.DurationHours, req.PartySize, h.rate, lines)
	apt.RespondSuccess(w, estimateResponse{SubTotal: subtotal})
}

func (h *Handler) ExportSessions(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ExportSessions")
	defer finish()
	log := h.log(r)

	entries := h.store.Snapshot().Entries()

	f, err := BuildWorkbook(entries, "Sessions")
	if err != nil {
		log.Error("cannot build sessions workbook", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not generate Excel file")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("SB_Gaming_Sessions_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(w); err != nil {
		log.Error("cannot stream sessions workbook", "error", err)
	}
}

func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AnalyticsSummary")
	defer finish()

	entries, ok := h.scopedEntries(w, r)
	if !ok {
		return
	}

	apt.RespondSuccess(w, Summarize(entries))
}

func (h *Handler) AnalyticsRevenue(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AnalyticsRevenue")
	defer finish()

	entries := h.store.Snapshot().Entries()
	apt.RespondSuccess(w, RevenueByDay(entries, time.Now(), 7))
}

func (h *Handler) AnalyticsHourly(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AnalyticsHourly")
	defer finish()

	entries, ok := h.scopedEntries(w, r)
	if !ok {
		return
	}

	apt.RespondSuccess(w, HourlyDistribution(entries))
}

func (h *Handler) AnalyticsSnacks(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AnalyticsSnacks")
	defer finish()

	entries, ok := h.scopedEntries(w, r)
	if !ok {
		return
	}

	apt.RespondSuccess(w, SnackDistribution(entries))
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCatalog")
	defer finish()

	apt.RespondSuccess(w, map[string]interface{}{
		"categories":      catalog.Categories,
		"per_person_rate": h.rate,
	})
}

// scopedEntries applies the today/lifetime scope shared by the analytics
// endpoints. Default scope is today, matching the dashboard.
func (h *Handler) scopedEntries(w http.ResponseWriter, r *http.Request) ([]Entry, bool) {
	entries := h.store.Snapshot().Entries()

	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "today":
		return SelectToday(entries, time.Now()), true
	case "all":
		return entries, true
	default:
		apt.RespondError(w, http.StatusBadRequest, "Invalid scope parameter")
		return nil, false
	}
}

func (h *Handler) resolveSnacks(selections []snackSelection) (SnackOrders, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	lines := make(SnackOrders, 0, len(selections))
	for _, sel := range selections {
		item, ok := catalog.Lookup(sel.ID)
		if !ok {
			return nil, fmt.Errorf("unknown snack item: %s", sel.ID)
		}
		line := SnackOrder{
			ItemID:    item.ID,
			Name:      item.Name,
			Category:  "general",
			Quantity:  sel.Quantity,
			UnitPrice: item.Price,
		}
		line.Recompute()
		lines = append(lines, line)
	}
	return lines, nil
}

func (h *Handler) findInSnapshot(id EntryID) (*Entry, bool) {
	for _, e := range h.store.Snapshot().Entries() {
		if e.ID == id {
			return &e, true
		}
	}
	return nil, false
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (EntryID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid session id", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}, log apt.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		log.Debug("cannot decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondWriteError(w http.ResponseWriter, log apt.Logger, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		log.Debug("validation failed", "field", verr.Field, "message", verr.Message)
		apt.RespondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrNotFound):
		apt.RespondError(w, http.StatusNotFound, "Session not found")
	default:
		log.Error("session write failed", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, fallback)
	}
}
