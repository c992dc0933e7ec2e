package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"realtycrm/internal/models"
)

type OpportunityRepository struct {
	db *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) ListAll(ctx context.Context) ([]models.Opportunity, error) {
	const query = `
		SELECT id, lead_id, project_id, stage, value, probability, visit_date
		FROM opportunities
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	out := []models.Opportunity{}
	for rows.Next() {
		var (
			o     models.Opportunity
			visit sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.LeadID, &o.ProjectID, &o.Stage, &o.Value, &o.Probability, &visit); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		if visit.Valid {
			t := visit.Time
			o.VisitDate = &t
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}
	return out, nil
}
