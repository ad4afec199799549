package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/model"
)

const appointmentColumns = `id, title, description, location, type, start_time, end_time,
	customer_id, user_id, contact_id, created_at, created_by, updated_at, updated_by`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Location, &a.Type, &a.Start, &a.End,
		&a.CustomerID, &a.UserID, &a.ContactID, &a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy,
	)
	return a, err
}

func (s *Store) queryAppointments(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppointmentsInRange returns appointments starting in [from, to), ordered
// by start.
func (s *Store) AppointmentsInRange(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+`
		 FROM appointments
		 WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time, id`, from, to,
	)
}

func (s *Store) AllAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY start_time, id`)
}

// AppointmentsInWindow reads the appointments visible in w. An unfiltered
// window reads the whole table.
func (s *Store) AppointmentsInWindow(ctx context.Context, w calendar.Window) ([]model.Appointment, error) {
	if w.Unfiltered {
		return s.AllAppointments(ctx)
	}
	from, to := w.Bounds()
	return s.AppointmentsInRange(ctx, from, to)
}

func (s *Store) AppointmentsByContact(ctx context.Context, contactID int64) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+`
		 FROM appointments WHERE contact_id = $1
		 ORDER BY start_time, id`, contactID,
	)
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertAppointment inserts a when it has no id yet and updates the row
// otherwise. It returns the id of the stored row and fills in the
// timestamps the database assigned.
func (s *Store) UpsertAppointment(ctx context.Context, a *model.Appointment) (int64, error) {
	if a.ID <= 0 {
		err := s.pool.QueryRow(ctx,
			`INSERT INTO appointments
			   (title, description, location, type, start_time, end_time,
			    customer_id, user_id, contact_id, created_by, updated_by)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
			 RETURNING id, created_at, updated_at`,
			a.Title, a.Description, a.Location, a.Type, a.Start, a.End,
			a.CustomerID, a.UserID, a.ContactID, a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return 0, err
		}
		a.UpdatedBy = a.CreatedBy
		return a.ID, nil
	}

	err := s.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET title=$1, description=$2, location=$3, type=$4, start_time=$5, end_time=$6,
		     customer_id=$7, user_id=$8, contact_id=$9, updated_by=$10, updated_at=NOW()
		 WHERE id=$11
		 RETURNING created_at, created_by, updated_at`,
		a.Title, a.Description, a.Location, a.Type, a.Start, a.End,
		a.CustomerID, a.UserID, a.ContactID, a.UpdatedBy, a.ID,
	).Scan(&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppointmentTypes lists the distinct types in use.
func (s *Store) AppointmentTypes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT type FROM appointments ORDER BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
