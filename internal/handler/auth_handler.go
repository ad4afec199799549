package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/auth"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/report"
	"appointment-scheduler/internal/store"
)

func (h *Handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if len(req.Password) < 8 {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	u := &model.User{Name: name, PasswordHash: hash}
	if err := h.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// don't reveal which names exist
			return nil, status.Error(codes.AlreadyExists, "registration failed")
		}
		return nil, h.toStatus(storeErr("create user", err))
	}

	tok, err := auth.MakeToken(u.ID, u.Name, h.secret, h.ttl)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	h.log.Info("user registered", zap.Int64("user_id", u.ID))
	return &api.RegisterResponse{UserID: u.ID, Token: tok}, nil
}

// Login checks the credentials and reports every appointment beginning in
// the next 15 minutes.
func (h *Handler) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if req.Name == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "name and password required")
	}

	u, err := h.store.UserByName(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, h.toStatus(storeErr("user by name", err))
		}
		h.log.Info("login rejected", zap.String("name", req.Name))
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.log.Info("login rejected", zap.String("name", req.Name))
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := auth.MakeToken(u.ID, u.Name, h.secret, h.ttl)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	now := h.now()
	// one minute past the lead so a start exactly at now+lead is fetched
	soon, err := h.store.AppointmentsInRange(ctx, now, now.Add(report.UpcomingLead+time.Minute))
	if err != nil {
		return nil, h.toStatus(storeErr("appointments in range", err))
	}
	upcoming := report.Upcoming(soon, now, report.UpcomingLead)

	h.log.Info("login", zap.Int64("user_id", u.ID), zap.Int("upcoming", len(upcoming)))
	return &api.LoginResponse{
		Token:    tok,
		UserID:   u.ID,
		Name:     u.Name,
		Upcoming: toAPIList(upcoming, h.loc),
	}, nil
}
