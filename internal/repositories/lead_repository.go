package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"realtycrm/internal/models"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// ListAll returns every lead, oldest first.
func (r *LeadRepository) ListAll(ctx context.Context) ([]models.Lead, error) {
	const query = `
		SELECT id, name, phone, email, source, project_id, status, priority, created_at, next_follow_up
		FROM leads
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := []models.Lead{}
	for rows.Next() {
		var (
			l        models.Lead
			email    sql.NullString
			created  sql.NullTime
			followUp sql.NullTime
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &email, &l.Source, &l.ProjectID,
			&l.Status, &l.Priority, &created, &followUp); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		if email.Valid {
			l.Email = &email.String
		}
		if created.Valid {
			l.CreatedAt = created.Time
		}
		if followUp.Valid {
			t := followUp.Time
			l.NextFollowUp = &t
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}
