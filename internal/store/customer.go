package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"appointment-scheduler/internal/model"
)

const customerSelect = `SELECT c.id, c.name, c.address, c.postal_code, c.phone,
	COALESCE(c.division_id, 0), COALESCE(d.name, ''), COALESCE(d.country_id, 0), COALESCE(k.name, ''),
	c.created_at, c.created_by, c.updated_at, c.updated_by
	FROM customers c
	LEFT JOIN first_level_divisions d ON d.id = c.division_id
	LEFT JOIN countries k ON k.id = d.country_id`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Address, &c.PostalCode, &c.Phone,
		&c.DivisionID, &c.Division, &c.CountryID, &c.Country,
		&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt, &c.UpdatedBy,
	)
	return c, err
}

// Customers lists every customer with its division and country names.
func (s *Store) Customers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.pool.Query(ctx, customerSelect+` ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, customerSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts c and fills in its id and timestamps.
func (s *Store) CreateCustomer(ctx context.Context, c *model.Customer) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (name, address, postal_code, phone, division_id, created_by, updated_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Address, c.PostalCode, c.Phone, c.DivisionID, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return referenceErr(err)
	}
	c.UpdatedBy = c.CreatedBy
	return nil
}

// UpsertCustomer creates c when it has no id yet and overwrites the row
// otherwise.
func (s *Store) UpsertCustomer(ctx context.Context, c *model.Customer) (int64, error) {
	if c.ID <= 0 {
		if err := s.CreateCustomer(ctx, c); err != nil {
			return 0, err
		}
		return c.ID, nil
	}

	err := s.pool.QueryRow(ctx,
		`UPDATE customers
		 SET name=$1, address=$2, postal_code=$3, phone=$4, division_id=$5,
		     updated_by=$6, updated_at=NOW()
		 WHERE id=$7
		 RETURNING created_at, created_by, updated_at`,
		c.Name, c.Address, c.PostalCode, c.Phone, c.DivisionID, c.UpdatedBy, c.ID,
	).Scan(&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, referenceErr(err)
	}
	return c.ID, nil
}

// DeleteCustomer removes the customer and every appointment booked for it
// in one transaction. It returns how many appointments went with it.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM appointments WHERE customer_id=$1`, id)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()
		tag, err = tx.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) Countries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM countries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Divisions lists the first-level divisions of a country, or of every
// country when countryID is zero.
func (s *Store) Divisions(ctx context.Context, countryID int64) ([]model.Division, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, country_id FROM first_level_divisions
		 WHERE $1::bigint = 0 OR country_id = $1
		 ORDER BY id`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Division
	for rows.Next() {
		var d model.Division
		if err := rows.Scan(&d.ID, &d.Name, &d.CountryID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// referenceErr reports a foreign key violation as ErrNotFound.
func referenceErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}
