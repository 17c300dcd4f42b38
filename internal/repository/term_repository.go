package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mhs-edu/scheduler-api/internal/models"
	appErrors "github.com/mhs-edu/scheduler-api/pkg/errors"
)

// TermRepository handles persistence for academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository constructs the repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns every term, most recent first.
func (r *TermRepository) List(ctx context.Context) ([]models.Term, error) {
	query := `SELECT id, name, academic_year, start_date, end_date, is_active
		FROM terms ORDER BY start_date DESC`
	terms := []models.Term{}
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByID loads a single term.
func (r *TermRepository) FindByID(ctx context.Context, termID string) (*models.Term, error) {
	query := `SELECT id, name, academic_year, start_date, end_date, is_active
		FROM terms WHERE id = $1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find term %s: %w", termID, err)
	}
	return &term, nil
}
