package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"unit_booking/internal/app"
	"unit_booking/internal/domain"
)

type Handlers struct {
	Bookings     *app.BookingService
	Availability *app.AvailabilityService
	Units        *app.UnitService
	Sweeper      *app.ExpirySweeper
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Post("/v1/bookings/{id}/pay", h.payBooking)
	s.mux.Post("/v1/bookings/{id}/cancel", h.cancelBooking)
	s.mux.Get("/v1/availability", h.availability)
	s.mux.Post("/v1/units", h.addUnit)
	s.mux.Get("/v1/units", h.searchUnits)
	s.mux.Post("/v1/sweep", h.runSweep)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a downstream failure and surfaces as 502.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeProblem(w, http.StatusBadRequest, "Invalid Range", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeProblem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Unavailable", "temporary failure, try again")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ---- bookings ----

type bookingResponse struct {
	ID        int64  `json:"id"`
	UnitID    int64  `json:"unitId"`
	UserID    int64  `json:"userId"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		UnitID:    b.UnitID,
		UserID:    b.UserID,
		Start:     b.StartDate.Format("2006-01-02"),
		End:       b.EndDate.Format("2006-01-02"),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnitID int64  `json:"unitId"`
		UserID int64  `json:"userId"`
		Start  string `json:"start"`
		End    string `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	start, err := parseDate(req.Start)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end must be YYYY-MM-DD")
		return
	}

	b, err := h.Bookings.Create(r.Context(), req.UnitID, req.UserID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handlers) payBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.Bookings.Pay(r.Context(), id, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "PAID"})
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.Bookings.Cancel(r.Context(), id, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "CANCELLED"})
}

// ---- availability ----

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end must be YYYY-MM-DD")
		return
	}
	n, err := h.Availability.Count(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"availableUnits": n})
}

// ---- units ----

type unitResponse struct {
	ID            int64  `json:"id"`
	OwnerID       int64  `json:"ownerId"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Type          string `json:"type"`
	CostPerDay    string `json:"costPerDay"`
	NumberOfRooms int    `json:"numberOfRooms"`
	Floor         int    `json:"floor"`
}

func toUnitResponse(u domain.Unit) unitResponse {
	return unitResponse{
		ID:            u.ID,
		OwnerID:       u.OwnerID,
		Title:         u.Title,
		Description:   u.Description,
		Type:          string(u.Type),
		CostPerDay:    u.CostPerDay.StringFixed(2),
		NumberOfRooms: u.NumberOfRooms,
		Floor:         u.Floor,
	}
}

func (h *Handlers) addUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID       int64  `json:"ownerId"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		Type          string `json:"type"`
		CostPerDay    string `json:"costPerDay"`
		NumberOfRooms int    `json:"numberOfRooms"`
		Floor         int    `json:"floor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	cost, err := decimal.NewFromString(req.CostPerDay)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Cost", "costPerDay must be a decimal number")
		return
	}
	u, err := h.Units.Add(r.Context(), domain.Unit{
		OwnerID:       req.OwnerID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          domain.UnitType(req.Type),
		CostPerDay:    cost,
		NumberOfRooms: req.NumberOfRooms,
		Floor:         req.Floor,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, err)
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid Unit", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toUnitResponse(u))
}

func (h *Handlers) searchUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.UnitFilter

	if v := q.Get("type"); v != "" {
		t := domain.UnitType(v)
		f.Type = &t
	}
	if v := q.Get("minCost"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "minCost must be a decimal number")
			return
		}
		f.MinCost = &d
	}
	if v := q.Get("maxCost"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "maxCost must be a decimal number")
			return
		}
		f.MaxCost = &d
	}
	if v := q.Get("rooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "rooms must be an integer")
			return
		}
		f.NumberOfRooms = &n
	}
	if v := q.Get("floor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Filter", "floor must be an integer")
			return
		}
		f.Floor = &n
	}
	if v := q.Get("start"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Date", "start must be YYYY-MM-DD")
			return
		}
		end, err := parseDate(q.Get("end"))
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Date", "end must be YYYY-MM-DD")
			return
		}
		f.StartDate, f.EndDate = start, end
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Size, _ = strconv.Atoi(q.Get("size"))

	page, err := h.Units.Search(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]unitResponse, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, toUnitResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": page.Total,
		"page":  page.Page,
		"size":  page.Size,
	})
}

// ---- sweep ----

func (h *Handlers) runSweep(w http.ResponseWriter, r *http.Request) {
	h.Sweeper.RunOnce(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
