package handler_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/customer"
	"appointment-scheduler/internal/handler"
	"appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/schedule"
	"appointment-scheduler/internal/timeslot"
)

const secret = "test-secret"

type harness struct {
	store  *memStore
	client *api.Client
	loc    *time.Location
	now    time.Time
}

// newHarness serves a handler over an in-memory connection with the same
// interceptor chain and codec as the real server.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, time.March, 14, 12, 0, 0, 0, ny)

	st := newMemStore()
	h, err := handler.New(st, handler.Options{
		Secret:   secret,
		TokenTTL: time.Hour,
		Location: ny,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(api.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(zap.NewNop(), nil),
			middleware.Auth(secret),
		),
	)
	api.RegisterSchedulerServer(srv, h)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{store: st, client: api.NewClient(conn), loc: ny, now: now}
}

func (hs *harness) login(t *testing.T, name string) context.Context {
	t.Helper()
	ctx := context.Background()
	_, err := hs.client.Register(ctx, &api.RegisterRequest{Name: name, Password: "password1"})
	require.NoError(t, err)
	lr, err := hs.client.Login(ctx, &api.LoginRequest{Name: name, Password: "password1"})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+lr.Token)
}

func input(t *testing.T, date, start, end string) *api.AppointmentInput {
	t.Helper()
	d, err := timeslot.ParseDate(date)
	require.NoError(t, err)
	s, err := timeslot.ParseClock(start)
	require.NoError(t, err)
	e, err := timeslot.ParseClock(end)
	require.NoError(t, err)
	return &api.AppointmentInput{Candidate: schedule.Candidate{
		Title: "Planning", Description: "quarterly", Location: "Room 4", Type: "Planning Session",
		StartDate: &d, EndDate: &d, StartSlot: &s, EndSlot: &e,
		CustomerID: 1, UserID: 1, ContactID: 2,
	}}
}

func errorInfo(t *testing.T, err error) *errdetails.ErrorInfo {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok)
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	t.Fatalf("no ErrorInfo in %v", err)
	return nil
}

func TestNewBusinessHours(t *testing.T) {
	h, err := handler.New(newMemStore(), handler.Options{Location: time.UTC})
	require.NoError(t, err)
	resp, err := h.ListSlots(context.Background(), &api.ListSlotsRequest{Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "08:00-22:00 America/New_York", resp.BusinessHours)

	_, err = handler.New(newMemStore(), handler.Options{
		Hours: timeslot.BusinessHours{Zone: time.UTC, Open: 40, Close: 40},
	})
	assert.Error(t, err)
}

func TestAuthFlow(t *testing.T) {
	hs := newHarness(t)
	ctx := context.Background()

	rr, err := hs.client.Register(ctx, &api.RegisterRequest{Name: "test", Password: "password1"})
	require.NoError(t, err)
	assert.Positive(t, rr.UserID)
	assert.NotEmpty(t, rr.Token)

	_, err = hs.client.Register(ctx, &api.RegisterRequest{Name: "test", Password: "password1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = hs.client.Register(ctx, &api.RegisterRequest{Name: "short", Password: "pw"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = hs.client.Login(ctx, &api.LoginRequest{Name: "test", Password: "wrong-password"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = hs.client.Login(ctx, &api.LoginRequest{Name: "nobody", Password: "password1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestLoginReportsUpcoming(t *testing.T) {
	hs := newHarness(t)
	hs.store.put(model.Appointment{Title: "soon", Start: hs.now.Add(10 * time.Minute), End: hs.now.Add(40 * time.Minute)})
	hs.store.put(model.Appointment{Title: "edge", Start: hs.now.Add(15 * time.Minute), End: hs.now.Add(time.Hour)})
	hs.store.put(model.Appointment{Title: "later", Start: hs.now.Add(16 * time.Minute), End: hs.now.Add(time.Hour)})
	hs.store.put(model.Appointment{Title: "past", Start: hs.now.Add(-time.Minute), End: hs.now.Add(time.Hour)})

	ctx := context.Background()
	_, err := hs.client.Register(ctx, &api.RegisterRequest{Name: "test", Password: "password1"})
	require.NoError(t, err)
	lr, err := hs.client.Login(ctx, &api.LoginRequest{Name: "test", Password: "password1"})
	require.NoError(t, err)

	var titles []string
	for _, a := range lr.Upcoming {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"soon", "edge"}, titles)
}

func TestSaveAndViolations(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	saved, err := hs.client.SaveAppointment(ctx, input(t, "2024-03-15", "10:00", "11:00"))
	require.NoError(t, err)
	a := saved.Appointment
	assert.Positive(t, a.ID)
	assert.Equal(t, "test", a.CreatedBy)
	assert.True(t, a.Start.Equal(time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)))

	tests := []struct {
		name   string
		in     *api.AppointmentInput
		code   codes.Code
		reason schedule.Reason
		md     map[string]string
	}{
		{"conflict", input(t, "2024-03-15", "10:30", "11:30"), codes.AlreadyExists, schedule.ReasonConflict,
			map[string]string{"rule": "look-behind", "conflict_title": "Planning"}},
		{"before open", input(t, "2024-03-15", "07:00", "09:00"), codes.FailedPrecondition, schedule.ReasonBusinessHours,
			map[string]string{"endpoint": "start", "bound": "open"}},
		{"after close", input(t, "2024-03-15", "21:00", "22:30"), codes.FailedPrecondition, schedule.ReasonBusinessHours,
			map[string]string{"endpoint": "end", "bound": "close"}},
		{"zero length", input(t, "2024-03-15", "12:00", "12:00"), codes.InvalidArgument, schedule.ReasonMinimumDuration, nil},
		{"reversed", input(t, "2024-03-15", "13:00", "12:00"), codes.InvalidArgument, schedule.ReasonOrdering, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hs.client.SaveAppointment(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
			info := errorInfo(t, err)
			assert.Equal(t, string(tt.reason), info.GetReason())
			assert.Equal(t, handler.ErrorDomain, info.GetDomain())
			for k, v := range tt.md {
				assert.Equal(t, v, info.GetMetadata()[k], k)
			}
			assert.Equal(t, string(tt.reason), handler.ReasonOf(err))
		})
	}

	empty := input(t, "2024-03-15", "12:00", "13:00")
	empty.Title = ""
	_, err = hs.client.ValidateAppointment(ctx, empty)
	assert.Equal(t, "title", errorInfo(t, err).GetMetadata()["field"])

	// back-to-back is fine
	_, err = hs.client.ValidateAppointment(ctx, input(t, "2024-03-15", "11:00", "12:00"))
	assert.NoError(t, err)

	// moving an appointment over its own old slot
	edit := input(t, "2024-03-15", "10:30", "11:30")
	edit.ID = a.ID
	edit.Title = "Planning (moved)"
	moved, err := hs.client.SaveAppointment(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.Appointment.ID)
	assert.Equal(t, "test", moved.Appointment.CreatedBy)

	missing := input(t, "2024-03-16", "10:00", "11:00")
	missing.ID = 999
	_, err = hs.client.SaveAppointment(ctx, missing)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRepositoryFailure(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")
	hs.store.rangeErr = errors.New("connection reset")

	_, err := hs.client.ValidateAppointment(ctx, input(t, "2024-03-15", "10:00", "11:00"))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, string(schedule.ReasonRepository), handler.ReasonOf(err))
}

func TestSaveReportsWriteFailure(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")
	hs.store.upsertErr = errors.New("connection reset")

	_, err := hs.client.SaveAppointment(ctx, input(t, "2024-03-15", "10:00", "11:00"))
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, string(schedule.ReasonRepository), handler.ReasonOf(err))
	assert.Equal(t, "appointment store unavailable", status.Convert(err).Message())

	_, err = hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: customerInput()})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, string(schedule.ReasonRepository), handler.ReasonOf(err))
}

func TestListAppointmentsByView(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")
	for _, d := range []string{"2024-03-01", "2024-03-31", "2024-04-01"} {
		_, err := hs.client.SaveAppointment(ctx, input(t, d, "09:00", "10:00"))
		require.NoError(t, err, d)
	}

	resp, err := hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "March, 2024", resp.Window.Label, "defaults to the current month")
	assert.Len(t, resp.Appointments, 2)

	resp, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{
		WindowRequest: api.WindowRequest{Mode: "week", Index: 14, Year: 2024},
	})
	require.NoError(t, err)
	assert.Equal(t, "Week 14 - [April 1, 2024 - April 7, 2024]", resp.Window.Label)
	require.Len(t, resp.Appointments, 1)

	resp, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{
		WindowRequest: api.WindowRequest{Mode: "year", Year: 1998},
	})
	require.NoError(t, err)
	assert.True(t, resp.Window.Unfiltered)
	assert.Equal(t, "All Records", resp.Window.Label)
	assert.Len(t, resp.Appointments, 3)

	resp, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{
		WindowRequest: api.WindowRequest{Mode: "all"},
		Query:         "2",
	})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, int64(2), resp.Appointments[0].ID)

	_, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{
		WindowRequest: api.WindowRequest{Mode: "month", Index: 13},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{
		WindowRequest: api.WindowRequest{Mode: "fortnight"},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestComputeWindowAndOptions(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	w, err := hs.client.ComputeWindow(ctx, &api.WindowRequest{Mode: "month", Index: 2, Year: 2024})
	require.NoError(t, err)
	assert.True(t, w.Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, hs.loc)))
	assert.True(t, w.End.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, hs.loc)))
	assert.False(t, w.EndInclusive)

	opts, err := hs.client.ViewOptions(ctx, &api.ViewOptionsRequest{Mode: "week"})
	require.NoError(t, err)
	assert.Equal(t, 2024, opts.Year)
	assert.Equal(t, 74/7+1, opts.DefaultIndex)
	assert.Len(t, opts.Options, 52)

	opts, err = hs.client.ViewOptions(ctx, &api.ViewOptionsRequest{Mode: "month"})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DefaultIndex)
	assert.Equal(t, "January", opts.Options[0])

	opts, err = hs.client.ViewOptions(ctx, &api.ViewOptionsRequest{Mode: "all"})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, opts.Options)
}

func TestListSlots(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	resp, err := hs.client.ListSlots(ctx, &api.ListSlotsRequest{Date: "2024-01-15"})
	require.NoError(t, err)
	require.Len(t, resp.Slots, timeslot.SlotCount)
	assert.Equal(t, "08:00", resp.Slots[32].Clock)
	assert.Equal(t, "8:00 AM (EST-05:00)", resp.Slots[32].Label)

	resp, err = hs.client.ListSlots(ctx, &api.ListSlotsRequest{Date: "2024-07-15"})
	require.NoError(t, err)
	assert.Equal(t, "10:15 PM (EDT-04:00)", resp.Slots[89].Label)

	_, err = hs.client.ListSlots(ctx, &api.ListSlotsRequest{Date: "15/07/2024"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDeleteAndGet(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	future, err := hs.client.SaveAppointment(ctx, input(t, "2024-03-20", "09:00", "10:00"))
	require.NoError(t, err)
	past, err := hs.client.SaveAppointment(ctx, input(t, "2024-03-01", "09:00", "10:00"))
	require.NoError(t, err)

	got, err := hs.client.GetAppointment(ctx, &api.GetAppointmentRequest{ID: future.Appointment.ID})
	require.NoError(t, err)
	assert.Equal(t, "Planning", got.Title)

	del, err := hs.client.DeleteAppointment(ctx, &api.DeleteAppointmentRequest{ID: future.Appointment.ID})
	require.NoError(t, err)
	assert.True(t, del.Cancelled)
	assert.Equal(t, "Planning Session", del.Type)

	del, err = hs.client.DeleteAppointment(ctx, &api.DeleteAppointmentRequest{ID: past.Appointment.ID})
	require.NoError(t, err)
	assert.False(t, del.Cancelled)

	_, err = hs.client.GetAppointment(ctx, &api.GetAppointmentRequest{ID: future.Appointment.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = hs.client.DeleteAppointment(ctx, &api.DeleteAppointmentRequest{ID: future.Appointment.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = hs.client.GetAppointment(ctx, &api.GetAppointmentRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestReports(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	past := input(t, "2024-03-01", "09:00", "10:00")
	_, err := hs.client.SaveAppointment(ctx, past)
	require.NoError(t, err)
	next := input(t, "2024-03-20", "09:00", "10:00")
	next.Type = "Debrief"
	next.ContactID = 1
	_, err = hs.client.SaveAppointment(ctx, next)
	require.NoError(t, err)
	april := input(t, "2024-04-02", "09:00", "10:00")
	_, err = hs.client.SaveAppointment(ctx, april)
	require.NoError(t, err)

	mt, err := hs.client.MonthTypeReport(ctx, &api.MonthTypeReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, []api.MonthTypeCount{
		{Month: "March", Type: "Debrief", Count: 1},
		{Month: "March", Type: "Planning Session", Count: 1},
		{Month: "April", Type: "Planning Session", Count: 1},
	}, mt.Rows)

	cs, err := hs.client.ContactSchedule(ctx, &api.ContactScheduleRequest{ContactID: 2})
	require.NoError(t, err)
	require.Len(t, cs.Appointments, 2)
	assert.True(t, cs.Appointments[0].Start.Before(cs.Appointments[1].Start))

	eng, err := hs.client.EngagementReport(ctx, &api.EngagementReportRequest{})
	require.NoError(t, err)
	require.Len(t, eng.Rows, 2)
	assert.Equal(t, 1, eng.NoFollowUp, "Globex has nothing booked")
	require.NotNil(t, eng.Rows[0].Last)
	require.NotNil(t, eng.Rows[0].Next)
	assert.True(t, eng.Rows[0].Next.Equal(time.Date(2024, 3, 20, 9, 0, 0, 0, hs.loc)))

	lk, err := hs.client.ListLookups(ctx, &api.ListLookupsRequest{})
	require.NoError(t, err)
	assert.Len(t, lk.Customers, 2)
	assert.Len(t, lk.Contacts, 2)
	assert.Equal(t, []api.Lookup{{ID: 1, Name: "test"}}, lk.Users)
	assert.Equal(t, []string{"Debrief", "Planning Session"}, lk.Types)
}

func customerInput() customer.Input {
	return customer.Input{
		Name:       "Daddy Warbucks",
		Address:    "1919 Boardwalk",
		PostalCode: "01291",
		Phone:      "869-908-1875",
		CountryID:  1,
		DivisionID: 29,
	}
}

func TestCustomers(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	saved, err := hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: customerInput()})
	require.NoError(t, err)
	c := saved.Customer
	assert.Positive(t, c.ID)
	assert.Equal(t, "New Jersey", c.Division)
	assert.Equal(t, "U.S", c.Country)
	assert.Equal(t, "test", c.CreatedBy)

	edit := customerInput()
	edit.ID = c.ID
	edit.CountryID, edit.DivisionID = 3, 64
	moved, err := hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: edit})
	require.NoError(t, err)
	assert.Equal(t, c.ID, moved.Customer.ID)
	assert.Equal(t, "Ontario", moved.Customer.Division)
	assert.Equal(t, "Canada", moved.Customer.Country)

	empty := customerInput()
	empty.Phone = ""
	_, err = hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: empty})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, string(schedule.ReasonEmptyField), handler.ReasonOf(err))
	assert.Equal(t, "phone", errorInfo(t, err).GetMetadata()["field"])

	wrong := customerInput()
	wrong.DivisionID = 64
	_, err = hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: wrong})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "Ontario is not in the U.S.")

	missing := customerInput()
	missing.ID = 999
	_, err = hs.client.SaveCustomer(ctx, &api.SaveCustomerRequest{Input: missing})
	assert.Equal(t, codes.NotFound, status.Code(err))

	list, err := hs.client.ListCustomers(ctx, &api.ListCustomersRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Customers, 3)

	divs, err := hs.client.ListDivisions(ctx, &api.ListDivisionsRequest{CountryID: 2})
	require.NoError(t, err)
	assert.Len(t, divs.Countries, 3)
	assert.Equal(t, []api.Division{{ID: 52, Name: "England", CountryID: 2}}, divs.Divisions)
}

func TestDeleteCustomerRemovesAppointments(t *testing.T) {
	hs := newHarness(t)
	ctx := hs.login(t, "test")

	for _, d := range []string{"2024-03-15", "2024-03-20"} {
		_, err := hs.client.SaveAppointment(ctx, input(t, d, "09:00", "10:00"))
		require.NoError(t, err)
	}
	other := input(t, "2024-03-21", "09:00", "10:00")
	other.CustomerID = 2
	kept, err := hs.client.SaveAppointment(ctx, other)
	require.NoError(t, err)

	del, err := hs.client.DeleteCustomer(ctx, &api.DeleteCustomerRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Acme", del.Name)
	assert.Equal(t, int64(2), del.AppointmentsRemoved)

	resp, err := hs.client.ListAppointments(ctx, &api.ListAppointmentsRequest{WindowRequest: api.WindowRequest{Mode: "all"}})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, kept.Appointment.ID, resp.Appointments[0].ID)

	_, err = hs.client.DeleteCustomer(ctx, &api.DeleteCustomerRequest{ID: 1})
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = hs.client.DeleteCustomer(ctx, &api.DeleteCustomerRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
