// Package api declares the scheduler gRPC service: its method names, the
// message types exchanged as JSON and the service descriptor the server
// registers.
package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "scheduler.v1.Scheduler"

const (
	MethodRegister            = "Register"
	MethodLogin               = "Login"
	MethodListSlots           = "ListSlots"
	MethodViewOptions         = "ViewOptions"
	MethodComputeWindow       = "ComputeWindow"
	MethodListAppointments    = "ListAppointments"
	MethodGetAppointment      = "GetAppointment"
	MethodValidateAppointment = "ValidateAppointment"
	MethodSaveAppointment     = "SaveAppointment"
	MethodDeleteAppointment   = "DeleteAppointment"
	MethodContactSchedule     = "ContactSchedule"
	MethodMonthTypeReport     = "MonthTypeReport"
	MethodEngagementReport    = "EngagementReport"
	MethodListLookups         = "ListLookups"
	MethodListCustomers       = "ListCustomers"
	MethodSaveCustomer        = "SaveCustomer"
	MethodDeleteCustomer      = "DeleteCustomer"
	MethodListDivisions       = "ListDivisions"
)

// FullMethod is the path of method as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type SchedulerServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListSlots(context.Context, *ListSlotsRequest) (*ListSlotsResponse, error)
	ViewOptions(context.Context, *ViewOptionsRequest) (*ViewOptionsResponse, error)
	ComputeWindow(context.Context, *WindowRequest) (*Window, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*Appointment, error)
	ValidateAppointment(context.Context, *AppointmentInput) (*ValidateResponse, error)
	SaveAppointment(context.Context, *AppointmentInput) (*SaveResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error)
	ContactSchedule(context.Context, *ContactScheduleRequest) (*ContactScheduleResponse, error)
	MonthTypeReport(context.Context, *MonthTypeReportRequest) (*MonthTypeReportResponse, error)
	EngagementReport(context.Context, *EngagementReportRequest) (*EngagementReportResponse, error)
	ListLookups(context.Context, *ListLookupsRequest) (*ListLookupsResponse, error)
	ListCustomers(context.Context, *ListCustomersRequest) (*ListCustomersResponse, error)
	SaveCustomer(context.Context, *SaveCustomerRequest) (*SaveCustomerResponse, error)
	DeleteCustomer(context.Context, *DeleteCustomerRequest) (*DeleteCustomerResponse, error)
	ListDivisions(context.Context, *ListDivisionsRequest) (*ListDivisionsResponse, error)
}

func unary[Req, Resp any](method string, call func(SchedulerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SchedulerServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, SchedulerServer.Register),
		unary(MethodLogin, SchedulerServer.Login),
		unary(MethodListSlots, SchedulerServer.ListSlots),
		unary(MethodViewOptions, SchedulerServer.ViewOptions),
		unary(MethodComputeWindow, SchedulerServer.ComputeWindow),
		unary(MethodListAppointments, SchedulerServer.ListAppointments),
		unary(MethodGetAppointment, SchedulerServer.GetAppointment),
		unary(MethodValidateAppointment, SchedulerServer.ValidateAppointment),
		unary(MethodSaveAppointment, SchedulerServer.SaveAppointment),
		unary(MethodDeleteAppointment, SchedulerServer.DeleteAppointment),
		unary(MethodContactSchedule, SchedulerServer.ContactSchedule),
		unary(MethodMonthTypeReport, SchedulerServer.MonthTypeReport),
		unary(MethodEngagementReport, SchedulerServer.EngagementReport),
		unary(MethodListLookups, SchedulerServer.ListLookups),
		unary(MethodListCustomers, SchedulerServer.ListCustomers),
		unary(MethodSaveCustomer, SchedulerServer.SaveCustomer),
		unary(MethodDeleteCustomer, SchedulerServer.DeleteCustomer),
		unary(MethodListDivisions, SchedulerServer.ListDivisions),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduler/v1/scheduler.json",
}

func RegisterSchedulerServer(s grpc.ServiceRegistrar, srv SchedulerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the scheduler service over conn using the JSON codec.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, MethodRegister, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts)
}

func (c *Client) ListSlots(ctx context.Context, in *ListSlotsRequest, opts ...grpc.CallOption) (*ListSlotsResponse, error) {
	return invoke[ListSlotsResponse](ctx, c, MethodListSlots, in, opts)
}

func (c *Client) ViewOptions(ctx context.Context, in *ViewOptionsRequest, opts ...grpc.CallOption) (*ViewOptionsResponse, error) {
	return invoke[ViewOptionsResponse](ctx, c, MethodViewOptions, in, opts)
}

func (c *Client) ComputeWindow(ctx context.Context, in *WindowRequest, opts ...grpc.CallOption) (*Window, error) {
	return invoke[Window](ctx, c, MethodComputeWindow, in, opts)
}

func (c *Client) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c, MethodListAppointments, in, opts)
}

func (c *Client) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*Appointment, error) {
	return invoke[Appointment](ctx, c, MethodGetAppointment, in, opts)
}

func (c *Client) ValidateAppointment(ctx context.Context, in *AppointmentInput, opts ...grpc.CallOption) (*ValidateResponse, error) {
	return invoke[ValidateResponse](ctx, c, MethodValidateAppointment, in, opts)
}

func (c *Client) SaveAppointment(ctx context.Context, in *AppointmentInput, opts ...grpc.CallOption) (*SaveResponse, error) {
	return invoke[SaveResponse](ctx, c, MethodSaveAppointment, in, opts)
}

func (c *Client) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error) {
	return invoke[DeleteAppointmentResponse](ctx, c, MethodDeleteAppointment, in, opts)
}

func (c *Client) ContactSchedule(ctx context.Context, in *ContactScheduleRequest, opts ...grpc.CallOption) (*ContactScheduleResponse, error) {
	return invoke[ContactScheduleResponse](ctx, c, MethodContactSchedule, in, opts)
}

func (c *Client) MonthTypeReport(ctx context.Context, in *MonthTypeReportRequest, opts ...grpc.CallOption) (*MonthTypeReportResponse, error) {
	return invoke[MonthTypeReportResponse](ctx, c, MethodMonthTypeReport, in, opts)
}

func (c *Client) EngagementReport(ctx context.Context, in *EngagementReportRequest, opts ...grpc.CallOption) (*EngagementReportResponse, error) {
	return invoke[EngagementReportResponse](ctx, c, MethodEngagementReport, in, opts)
}

func (c *Client) ListLookups(ctx context.Context, in *ListLookupsRequest, opts ...grpc.CallOption) (*ListLookupsResponse, error) {
	return invoke[ListLookupsResponse](ctx, c, MethodListLookups, in, opts)
}

func (c *Client) ListCustomers(ctx context.Context, in *ListCustomersRequest, opts ...grpc.CallOption) (*ListCustomersResponse, error) {
	return invoke[ListCustomersResponse](ctx, c, MethodListCustomers, in, opts)
}

func (c *Client) SaveCustomer(ctx context.Context, in *SaveCustomerRequest, opts ...grpc.CallOption) (*SaveCustomerResponse, error) {
	return invoke[SaveCustomerResponse](ctx, c, MethodSaveCustomer, in, opts)
}

func (c *Client) DeleteCustomer(ctx context.Context, in *DeleteCustomerRequest, opts ...grpc.CallOption) (*DeleteCustomerResponse, error) {
	return invoke[DeleteCustomerResponse](ctx, c, MethodDeleteCustomer, in, opts)
}

func (c *Client) ListDivisions(ctx context.Context, in *ListDivisionsRequest, opts ...grpc.CallOption) (*ListDivisionsResponse, error) {
	return invoke[ListDivisionsResponse](ctx, c, MethodListDivisions, in, opts)
}
