package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/schedule"
	"appointment-scheduler/internal/timeslot"
)

// ListSlots returns the 96 selectable start/end times, labelled with the
// user's zone and the offset in effect on the requested date.
func (h *Handler) ListSlots(ctx context.Context, req *api.ListSlotsRequest) (*api.ListSlotsResponse, error) {
	day := timeslot.DateOf(h.now().In(h.loc))
	if req.Date != "" {
		d, err := timeslot.ParseDate(req.Date)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		day = d
	}

	grid := timeslot.Grid()
	slots := make([]api.Slot, 0, len(grid))
	for _, s := range grid {
		at, _ := timeslot.Resolve(day, s, h.loc)
		slots = append(slots, api.Slot{
			Index: int(s),
			Clock: s.String(),
			Label: timeslot.Label(s, h.loc, at),
		})
	}
	return &api.ListSlotsResponse{
		Slots:         slots,
		BusinessHours: h.hours.String(),
		Zone:          h.loc.String(),
	}, nil
}

func parseMode(mode string) (calendar.Mode, error) {
	if mode == "" {
		return calendar.ModeMonth, nil
	}
	m, err := calendar.ParseMode(mode)
	if err != nil {
		return m, status.Error(codes.InvalidArgument, err.Error())
	}
	return m, nil
}

// ViewOptions lists the index choices of a view and the one covering today.
func (h *Handler) ViewOptions(ctx context.Context, req *api.ViewOptionsRequest) (*api.ViewOptionsResponse, error) {
	m, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	nav := calendar.NewNavigator(h.loc, h.now)
	if req.Year != 0 {
		nav.SetYear(req.Year)
	}
	nav.Select(m)
	return &api.ViewOptionsResponse{
		Mode:         nav.Mode().String(),
		Year:         nav.Year(),
		DefaultIndex: nav.Index(),
		Options:      nav.Options(),
	}, nil
}

// window resolves a view request. A zero year means the current one and a
// zero index the month or week covering today.
func (h *Handler) window(req api.WindowRequest) (calendar.Window, error) {
	m, err := parseMode(req.Mode)
	if err != nil {
		return calendar.Window{}, err
	}
	w, err := calendar.Resolve(m, req.Index, req.Year, h.loc, h.now)
	if err != nil {
		return calendar.Window{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return w, nil
}

func (h *Handler) ComputeWindow(ctx context.Context, req *api.WindowRequest) (*api.Window, error) {
	w, err := h.window(*req)
	if err != nil {
		return nil, err
	}
	out := windowToAPI(w)
	return &out, nil
}

// ListAppointments reads the appointments of a view and keeps those
// matching the search query.
func (h *Handler) ListAppointments(ctx context.Context, req *api.ListAppointmentsRequest) (*api.ListAppointmentsResponse, error) {
	w, err := h.window(req.WindowRequest)
	if err != nil {
		return nil, err
	}
	appts, err := h.store.AppointmentsInWindow(ctx, w)
	if err != nil {
		return nil, h.toStatus(storeErr("appointments in window", err))
	}
	h.metrics.WindowSize.Observe(float64(len(appts)))
	appts = schedule.Search(appts, req.Query)
	return &api.ListAppointmentsResponse{
		Window:       windowToAPI(w),
		Appointments: toAPIList(appts, h.loc),
	}, nil
}
