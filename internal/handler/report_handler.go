package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/report"
)

func (h *Handler) ContactSchedule(ctx context.Context, req *api.ContactScheduleRequest) (*api.ContactScheduleResponse, error) {
	if req.ContactID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "contact_id required")
	}
	appts, err := h.store.AppointmentsByContact(ctx, req.ContactID)
	if err != nil {
		return nil, h.toStatus(storeErr("appointments by contact", err))
	}
	report.SortByStart(appts)
	return &api.ContactScheduleResponse{Appointments: toAPIList(appts, h.loc)}, nil
}

func (h *Handler) MonthTypeReport(ctx context.Context, _ *api.MonthTypeReportRequest) (*api.MonthTypeReportResponse, error) {
	appts, err := h.store.AllAppointments(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("all appointments", err))
	}
	counts := report.MonthTypeCounts(appts, h.loc)
	rows := make([]api.MonthTypeCount, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, api.MonthTypeCount{Month: c.Month.String(), Type: c.Type, Count: c.Count})
	}
	return &api.MonthTypeReportResponse{Rows: rows}, nil
}

func (h *Handler) EngagementReport(ctx context.Context, _ *api.EngagementReportRequest) (*api.EngagementReportResponse, error) {
	customers, err := h.store.Customers(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("customers", err))
	}
	appts, err := h.store.AllAppointments(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("all appointments", err))
	}
	rows, noFollowUp := report.Engagements(customers, appts, h.now())
	out := make([]api.Engagement, 0, len(rows))
	for _, r := range rows {
		e := api.Engagement{CustomerID: r.CustomerID, CustomerName: r.CustomerName}
		if r.Last != nil {
			t := r.Last.In(h.loc)
			e.Last = &t
		}
		if r.Next != nil {
			t := r.Next.In(h.loc)
			e.Next = &t
		}
		out = append(out, e)
	}
	return &api.EngagementReportResponse{Rows: out, NoFollowUp: noFollowUp}, nil
}

// ListLookups returns the choices behind the customer, contact, user and
// type selectors.
func (h *Handler) ListLookups(ctx context.Context, _ *api.ListLookupsRequest) (*api.ListLookupsResponse, error) {
	customers, err := h.store.Customers(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("customers", err))
	}
	contacts, err := h.store.Contacts(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("contacts", err))
	}
	users, err := h.store.Users(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("users", err))
	}
	types, err := h.store.AppointmentTypes(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("appointment types", err))
	}

	out := &api.ListLookupsResponse{
		Customers: make([]api.Lookup, 0, len(customers)),
		Contacts:  make([]api.Lookup, 0, len(contacts)),
		Users:     make([]api.Lookup, 0, len(users)),
		Types:     types,
	}
	for _, c := range customers {
		out.Customers = append(out.Customers, api.Lookup{ID: c.ID, Name: c.Name})
	}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, api.Lookup{ID: c.ID, Name: c.Name})
	}
	for _, u := range users {
		out.Users = append(out.Users, api.Lookup{ID: u.ID, Name: u.Name})
	}
	if out.Types == nil {
		out.Types = []string{}
	}
	return out, nil
}
