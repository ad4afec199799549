// Package handler implements the scheduler gRPC service on top of the
// appointment rules and the repository.
package handler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/customer"
	"appointment-scheduler/internal/metrics"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/schedule"
	"appointment-scheduler/internal/timeslot"
)

// Store is the repository the service reads and writes.
type Store interface {
	schedule.Repository
	AllAppointments(ctx context.Context) ([]model.Appointment, error)
	AppointmentsInWindow(ctx context.Context, w calendar.Window) ([]model.Appointment, error)
	AppointmentsByContact(ctx context.Context, contactID int64) ([]model.Appointment, error)
	AppointmentTypes(ctx context.Context) ([]string, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	UpsertAppointment(ctx context.Context, a *model.Appointment) (int64, error)
	DeleteAppointment(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, u *model.User) error
	UserByName(ctx context.Context, name string) (*model.User, error)
	Users(ctx context.Context) ([]model.User, error)
	Contacts(ctx context.Context) ([]model.Contact, error)

	Customers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	UpsertCustomer(ctx context.Context, c *model.Customer) (int64, error)
	DeleteCustomer(ctx context.Context, id int64) (int64, error)
	Countries(ctx context.Context) ([]model.Country, error)
	Divisions(ctx context.Context, countryID int64) ([]model.Division, error)
}

type Options struct {
	Secret   string
	TokenTTL time.Duration
	// Location is the zone users enter and read times in.
	Location *time.Location
	// Hours defaults to 08:00-22:00 US Eastern when Zone is nil.
	Hours   timeslot.BusinessHours
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type Handler struct {
	store     Store
	secret    string
	ttl       time.Duration
	loc       *time.Location
	hours     timeslot.BusinessHours
	validator *schedule.Validator
	customers *customer.Rules
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

var _ api.SchedulerServer = (*Handler)(nil)

// New builds the service. It fails when no business hours are given and
// the default zone cannot be loaded, or when the given hours are empty.
func New(st Store, opts Options) (*Handler, error) {
	h := &Handler{
		store:   st,
		secret:  opts.Secret,
		ttl:     opts.TokenTTL,
		loc:     opts.Location,
		hours:   opts.Hours,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.hours.Zone == nil {
		hours, err := timeslot.DefaultBusinessHours()
		if err != nil {
			return nil, fmt.Errorf("default business hours: %w", err)
		}
		h.hours = hours
	}
	if h.hours.Close <= h.hours.Open {
		return nil, fmt.Errorf("business hours close %s not after open %s", h.hours.Close, h.hours.Open)
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = metrics.New(false)
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.validator = schedule.NewValidator(h.hours, h.loc)
	h.customers = customer.NewRules()
	return h, nil
}

func (h *Handler) Location() *time.Location { return h.loc }

func toAPI(a model.Appointment, loc *time.Location) api.Appointment {
	return api.Appointment{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		Type:        a.Type,
		Start:       a.Start.In(loc),
		End:         a.End.In(loc),
		CustomerID:  a.CustomerID,
		UserID:      a.UserID,
		ContactID:   a.ContactID,
		CreatedAt:   a.CreatedAt.In(loc),
		CreatedBy:   a.CreatedBy,
		UpdatedAt:   a.UpdatedAt.In(loc),
		UpdatedBy:   a.UpdatedBy,
	}
}

func toAPIList(appts []model.Appointment, loc *time.Location) []api.Appointment {
	out := make([]api.Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAPI(a, loc))
	}
	return out
}

func windowToAPI(w calendar.Window) api.Window {
	return api.Window{
		Mode:         w.Mode.String(),
		Start:        w.Start,
		End:          w.End,
		EndInclusive: w.EndInclusive,
		Unfiltered:   w.Unfiltered,
		Label:        w.Label,
	}
}
