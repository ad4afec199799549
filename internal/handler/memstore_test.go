package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/store"
)

// memStore is an in-memory handler.Store.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	appts     map[int64]model.Appointment
	users     map[string]model.User
	customers []model.Customer
	divisions []model.Division
	contacts  []model.Contact
	rangeErr  error
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		appts:     make(map[int64]model.Appointment),
		users:     make(map[string]model.User),
		customers: []model.Customer{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}},
		divisions: []model.Division{
			{ID: 29, Name: "New Jersey", CountryID: 1},
			{ID: 52, Name: "England", CountryID: 2},
			{ID: 64, Name: "Ontario", CountryID: 3},
		},
		contacts:  []model.Contact{{ID: 1, Name: "Anika Costa"}, {ID: 2, Name: "Li Lee"}},
	}
}

func (m *memStore) sorted(keep func(model.Appointment) bool) []model.Appointment {
	var out []model.Appointment
	for _, a := range m.appts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) AppointmentsInRange(_ context.Context, from, to time.Time) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return m.sorted(func(a model.Appointment) bool {
		return !a.Start.Before(from) && a.Start.Before(to)
	}), nil
}

func (m *memStore) AllAppointments(context.Context) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Appointment) bool { return true }), nil
}

func (m *memStore) AppointmentsInWindow(ctx context.Context, w calendar.Window) ([]model.Appointment, error) {
	if w.Unfiltered {
		return m.AllAppointments(ctx)
	}
	from, to := w.Bounds()
	return m.AppointmentsInRange(ctx, from, to)
}

func (m *memStore) AppointmentsByContact(_ context.Context, contactID int64) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a model.Appointment) bool { return a.ContactID == contactID }), nil
}

func (m *memStore) AppointmentTypes(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, a := range m.appts {
		if !seen[a.Type] {
			seen[a.Type] = true
			out = append(out, a.Type)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) UpsertAppointment(_ context.Context, a *model.Appointment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	now := time.Now()
	if a.ID <= 0 {
		m.nextID++
		a.ID = m.nextID
		a.CreatedAt, a.UpdatedAt = now, now
		a.UpdatedBy = a.CreatedBy
	} else {
		old, ok := m.appts[a.ID]
		if !ok {
			return 0, store.ErrNotFound
		}
		a.CreatedAt, a.CreatedBy, a.UpdatedAt = old.CreatedAt, old.CreatedBy, now
	}
	m.appts[a.ID] = *a
	return a.ID, nil
}

func (m *memStore) DeleteAppointment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Name]; ok {
		return store.ErrDuplicate
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Name] = *u
	return nil
}

func (m *memStore) UserByName(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) Users(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Contacts(context.Context) ([]model.Contact, error) { return m.contacts, nil }

func (m *memStore) Customers(context.Context) ([]model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Customer(nil), m.customers...), nil
}

func (m *memStore) GetCustomer(_ context.Context, id int64) (*model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpsertCustomer(_ context.Context, c *model.Customer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	c.Country = countryNames[c.CountryID]
	if c.ID <= 0 {
		c.ID = int64(len(m.customers) + 100)
		m.customers = append(m.customers, *c)
		return c.ID, nil
	}
	for i, old := range m.customers {
		if old.ID == c.ID {
			c.CreatedBy = old.CreatedBy
			m.customers[i] = *c
			return c.ID, nil
		}
	}
	return 0, store.ErrNotFound
}

func (m *memStore) DeleteCustomer(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.customers {
		if c.ID != id {
			continue
		}
		m.customers = append(m.customers[:i], m.customers[i+1:]...)
		var removed int64
		for aid, a := range m.appts {
			if a.CustomerID == id {
				delete(m.appts, aid)
				removed++
			}
		}
		return removed, nil
	}
	return 0, store.ErrNotFound
}

var countryNames = map[int64]string{1: "U.S", 2: "UK", 3: "Canada"}

func (m *memStore) Countries(context.Context) ([]model.Country, error) {
	return []model.Country{{ID: 1, Name: "U.S"}, {ID: 2, Name: "UK"}, {ID: 3, Name: "Canada"}}, nil
}

func (m *memStore) Divisions(_ context.Context, countryID int64) ([]model.Division, error) {
	var out []model.Division
	for _, d := range m.divisions {
		if countryID == 0 || d.CountryID == countryID {
			out = append(out, d)
		}
	}
	return out, nil
}

// put stores a directly, skipping validation.
func (m *memStore) put(a model.Appointment) int64 {
	id, _ := m.UpsertAppointment(context.Background(), &a)
	return id
}
