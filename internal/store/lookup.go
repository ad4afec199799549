package store

import (
	"context"

	"appointment-scheduler/internal/model"
)

func (s *Store) Contacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, email FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
