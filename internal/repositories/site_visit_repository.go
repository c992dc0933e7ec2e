package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"realtycrm/internal/models"
)

type SiteVisitRepository struct {
	db *sql.DB
}

func NewSiteVisitRepository(db *sql.DB) *SiteVisitRepository {
	return &SiteVisitRepository{db: db}
}

func (r *SiteVisitRepository) ListAll(ctx context.Context) ([]models.SiteVisit, error) {
	const query = `
		SELECT id, lead_id, opportunity_id, project_id, visit_date, status
		FROM site_visits
		ORDER BY visit_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list site visits: %w", err)
	}
	defer rows.Close()

	out := []models.SiteVisit{}
	for rows.Next() {
		var (
			v      models.SiteVisit
			leadID sql.NullInt64
			oppID  sql.NullInt64
			date   sql.NullTime
		)
		if err := rows.Scan(&v.ID, &leadID, &oppID, &v.ProjectID, &date, &v.Status); err != nil {
			return nil, fmt.Errorf("scan site visit: %w", err)
		}
		if leadID.Valid {
			id := int(leadID.Int64)
			v.LeadID = &id
		}
		if oppID.Valid {
			id := int(oppID.Int64)
			v.OpportunityID = &id
		}
		if date.Valid {
			v.VisitDate = date.Time
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site visits: %w", err)
	}
	return out, nil
}
