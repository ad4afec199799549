package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/metrics"
	"appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/schedule"
)

func (h *Handler) GetAppointment(ctx context.Context, req *api.GetAppointmentRequest) (*api.Appointment, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	a, err := h.store.GetAppointment(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(storeErr("get appointment", err))
	}
	out := toAPI(*a, h.loc)
	return &out, nil
}

func excludeID(in *api.AppointmentInput) int64 {
	if in.ID <= 0 {
		return model.NoID
	}
	return in.ID
}

func (h *Handler) validate(ctx context.Context, in *api.AppointmentInput) (schedule.Span, error) {
	span, err := h.validator.Validate(ctx, h.store, in.Candidate, excludeID(in))
	outcome := metrics.OutcomeAccepted
	var v schedule.Violation
	if errors.As(err, &v) {
		outcome = string(v.Reason())
	}
	h.metrics.Validations.WithLabelValues(outcome).Inc()
	return span, err
}

// ValidateAppointment runs every rule without saving.
func (h *Handler) ValidateAppointment(ctx context.Context, in *api.AppointmentInput) (*api.ValidateResponse, error) {
	span, err := h.validate(ctx, in)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &api.ValidateResponse{Start: span.Start.In(h.loc), End: span.End.In(h.loc)}, nil
}

// SaveAppointment validates the input and creates or overwrites the
// appointment. The signed-in user is recorded as its author.
func (h *Handler) SaveAppointment(ctx context.Context, in *api.AppointmentInput) (*api.SaveResponse, error) {
	span, err := h.validate(ctx, in)
	if err != nil {
		return nil, h.toStatus(err)
	}

	author := ""
	if p, ok := middleware.PrincipalFrom(ctx); ok {
		author = p.Name
	}
	c := in.Candidate
	a := &model.Appointment{
		ID:          in.ID,
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		Type:        c.Type,
		Start:       span.Start,
		End:         span.End,
		CustomerID:  c.CustomerID,
		UserID:      c.UserID,
		ContactID:   c.ContactID,
		CreatedBy:   author,
		UpdatedBy:   author,
	}
	kind := "update"
	if a.ID <= 0 {
		kind = "create"
	}
	if _, err := h.store.UpsertAppointment(ctx, a); err != nil {
		return nil, h.toStatus(storeErr("upsert appointment", err))
	}
	h.metrics.Saves.WithLabelValues(kind).Inc()
	h.log.Info("appointment saved",
		zap.Int64("id", a.ID), zap.String("kind", kind), zap.String("by", author),
		zap.Time("start", a.Start), zap.Time("end", a.End))
	return &api.SaveResponse{Appointment: toAPI(*a, h.loc)}, nil
}

// DeleteAppointment removes an appointment. One that has not started yet is
// reported as cancelled.
func (h *Handler) DeleteAppointment(ctx context.Context, req *api.DeleteAppointmentRequest) (*api.DeleteAppointmentResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	a, err := h.store.GetAppointment(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(storeErr("get appointment", err))
	}
	if err := h.store.DeleteAppointment(ctx, req.ID); err != nil {
		return nil, h.toStatus(storeErr("delete appointment", err))
	}
	h.metrics.Deletes.Inc()
	h.log.Info("appointment deleted", zap.Int64("id", a.ID), zap.String("type", a.Type))
	return &api.DeleteAppointmentResponse{
		ID:        a.ID,
		Title:     a.Title,
		Type:      a.Type,
		Cancelled: a.Start.After(h.now()),
	}, nil
}
