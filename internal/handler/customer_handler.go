package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/customer"
	"appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/model"
)

func customerToAPI(c model.Customer, loc *time.Location) api.Customer {
	return api.Customer{
		ID:         c.ID,
		Name:       c.Name,
		Address:    c.Address,
		PostalCode: c.PostalCode,
		Phone:      c.Phone,
		DivisionID: c.DivisionID,
		Division:   c.Division,
		CountryID:  c.CountryID,
		Country:    c.Country,
		CreatedAt:  c.CreatedAt.In(loc),
		CreatedBy:  c.CreatedBy,
		UpdatedAt:  c.UpdatedAt.In(loc),
		UpdatedBy:  c.UpdatedBy,
	}
}

func (h *Handler) ListCustomers(ctx context.Context, _ *api.ListCustomersRequest) (*api.ListCustomersResponse, error) {
	customers, err := h.store.Customers(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("customers", err))
	}
	out := make([]api.Customer, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerToAPI(c, h.loc))
	}
	return &api.ListCustomersResponse{Customers: out}, nil
}

// SaveCustomer checks the form and creates or overwrites the customer. The
// signed-in user is recorded as its author.
func (h *Handler) SaveCustomer(ctx context.Context, req *api.SaveCustomerRequest) (*api.SaveCustomerResponse, error) {
	var divisions []model.Division
	if req.CountryID > 0 {
		var err error
		if divisions, err = h.store.Divisions(ctx, req.CountryID); err != nil {
			return nil, h.toStatus(storeErr("divisions", err))
		}
	}
	c, err := h.customers.Check(req.Input, divisions)
	var de *customer.DivisionError
	if errors.As(err, &de) {
		return nil, status.Error(codes.InvalidArgument, de.Error())
	}
	if err != nil {
		return nil, h.toStatus(err)
	}

	author := ""
	if p, ok := middleware.PrincipalFrom(ctx); ok {
		author = p.Name
	}
	c.CreatedBy, c.UpdatedBy = author, author
	kind := "update"
	if c.ID <= 0 {
		kind = "create"
	}
	if _, err := h.store.UpsertCustomer(ctx, &c); err != nil {
		return nil, h.toStatus(storeErr("upsert customer", err))
	}
	saved, err := h.store.GetCustomer(ctx, c.ID)
	if err != nil {
		return nil, h.toStatus(storeErr("get customer", err))
	}
	h.log.Info("customer saved", zap.Int64("id", c.ID), zap.String("kind", kind), zap.String("by", author))
	return &api.SaveCustomerResponse{Customer: customerToAPI(*saved, h.loc)}, nil
}

// DeleteCustomer removes a customer together with its appointments.
func (h *Handler) DeleteCustomer(ctx context.Context, req *api.DeleteCustomerRequest) (*api.DeleteCustomerResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	c, err := h.store.GetCustomer(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(storeErr("get customer", err))
	}
	removed, err := h.store.DeleteCustomer(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(storeErr("delete customer", err))
	}
	h.metrics.Deletes.Add(float64(removed))
	h.log.Info("customer deleted", zap.Int64("id", c.ID), zap.Int64("appointments", removed))
	return &api.DeleteCustomerResponse{ID: c.ID, Name: c.Name, AppointmentsRemoved: removed}, nil
}

// ListDivisions returns the countries and the divisions of one country, or
// of all of them.
func (h *Handler) ListDivisions(ctx context.Context, req *api.ListDivisionsRequest) (*api.ListDivisionsResponse, error) {
	countries, err := h.store.Countries(ctx)
	if err != nil {
		return nil, h.toStatus(storeErr("countries", err))
	}
	divisions, err := h.store.Divisions(ctx, req.CountryID)
	if err != nil {
		return nil, h.toStatus(storeErr("divisions", err))
	}
	out := &api.ListDivisionsResponse{
		Countries: make([]api.Lookup, 0, len(countries)),
		Divisions: make([]api.Division, 0, len(divisions)),
	}
	for _, c := range countries {
		out.Countries = append(out.Countries, api.Lookup{ID: c.ID, Name: c.Name})
	}
	for _, d := range divisions {
		out.Divisions = append(out.Divisions, api.Division{ID: d.ID, Name: d.Name, CountryID: d.CountryID})
	}
	return out, nil
}
