package postgres

import (
	"context"
	"fmt"

	"github.com/redmath/phonebook/internal/core/domain"
)

// ContactRepository implements ports.ContactRepository on the contacts table.
type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `INSERT INTO contacts (name, number, email)
		VALUES ($1, $2, $3)
		RETURNING id`

	created := *contact
	if err := r.db.QueryRowContext(ctx, query, contact.Name, contact.Number, contact.Email).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	n, ok := parseID(contact.ID)
	if !ok {
		return domain.ErrContactNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET name = $1, number = $2, email = $3 WHERE id = $4`,
		contact.Name, contact.Number, contact.Email, n,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *ContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, number, email FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Contact, 0)
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Number, &c.Email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return domain.ErrContactNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *ContactRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func requireAffected(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
