package handler

import (
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/schedule"
	"appointment-scheduler/internal/store"
)

// ErrorDomain is the ErrorInfo domain of rule violations.
const ErrorDomain = "scheduler.v1"

func violationCode(r schedule.Reason) codes.Code {
	switch r {
	case schedule.ReasonBusinessHours:
		return codes.FailedPrecondition
	case schedule.ReasonConflict:
		return codes.AlreadyExists
	case schedule.ReasonRepository:
		return codes.Unavailable
	}
	return codes.InvalidArgument
}

func violationMetadata(err error) map[string]string {
	md := map[string]string{}
	var (
		fe *schedule.EmptyFieldError
		be *schedule.BusinessHoursError
		ce *schedule.ConflictError
	)
	switch {
	case errors.As(err, &fe):
		md["field"] = fe.Field
	case errors.As(err, &be):
		md["endpoint"] = string(be.Endpoint)
		md["bound"] = string(be.Bound)
		md["limit"] = be.Limit.Format(time.RFC3339)
	case errors.As(err, &ce):
		md["conflict_id"] = strconv.FormatInt(ce.Conflict.ID, 10)
		md["conflict_title"] = ce.Conflict.Title
		md["rule"] = ce.Conflict.Rule.String()
	}
	return md
}

// storeErr marks a failed store call as a repository violation. Not-found
// and duplicate errors keep their own codes.
func storeErr(op string, err error) error {
	if err == nil || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDuplicate) {
		return err
	}
	return &schedule.RepositoryError{Op: op, Err: err}
}

// toStatus turns a domain or store error into a gRPC status error.
// Violations carry an ErrorInfo detail naming the reason.
func (h *Handler) toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var v schedule.Violation
	if errors.As(err, &v) {
		code := violationCode(v.Reason())
		msg := v.Error()
		if code == codes.Unavailable {
			h.log.Error("repository failure", zap.Error(err))
			msg = "appointment store unavailable"
		}
		st := status.New(code, msg)
		if ds, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason:   string(v.Reason()),
			Domain:   ErrorDomain,
			Metadata: violationMetadata(err),
		}); derr == nil {
			st = ds
		}
		return st.Err()
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		return status.Error(codes.AlreadyExists, "already exists")
	}
	h.log.Error("internal error", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

// ReasonOf extracts the violation reason from a status error produced by
// this package, or "" when there is none.
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info.GetReason()
		}
	}
	return ""
}
