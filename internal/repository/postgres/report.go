package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// ReportRepository persists finished screening reports. The full report is
// stored as JSONB next to the columns analysts filter on.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ReportSummary is the list-view projection of a stored report.
type ReportSummary struct {
	ID             string    `json:"id" db:"id"`
	Chain          string    `json:"chain" db:"chain"`
	Address        string    `json:"address" db:"address"`
	Level          string    `json:"level" db:"level"`
	Score          int       `json:"score" db:"score"`
	Recommendation string    `json:"recommendation" db:"recommendation"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (r *ReportRepository) Save(ctx context.Context, report *domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "failed to serialize report")
	}

	query := `
		INSERT INTO reports (
			id, chain, address, level, score, recommendation, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.Input.Chain, report.Input.Address,
		report.Decision.Level, report.Decision.Score, report.Decision.Recommendation,
		payload, report.Timestamp,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save report")
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT payload FROM reports WHERE id = $1`

	var payload []byte
	err := r.db.GetContext(ctx, &payload, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrReportNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get report")
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, errors.Wrap(err, "failed to decode stored report")
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]ReportSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `
		SELECT id, chain, address, level, score, recommendation, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var summaries []ReportSummary
	if err := r.db.SelectContext(ctx, &summaries, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to list reports")
	}
	return summaries, nil
}

// ListByAddress returns prior screenings of one address, newest first.
func (r *ReportRepository) ListByAddress(ctx context.Context, chain, address string) ([]ReportSummary, error) {
	query := `
		SELECT id, chain, address, level, score, recommendation, created_at
		FROM reports
		WHERE chain = $1 AND lower(address) = lower($2)
		ORDER BY created_at DESC
		LIMIT 50
	`

	var summaries []ReportSummary
	if err := r.db.SelectContext(ctx, &summaries, query, chain, address); err != nil {
		return nil, errors.Wrap(err, "failed to list reports by address")
	}
	return summaries, nil
}
