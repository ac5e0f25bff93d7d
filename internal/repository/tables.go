package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SchemaTables are the tables created by the migrations.
var SchemaTables = []string{"users", "posts", "reactions", "comments", "remember_tokens", "community_notes"}

type tablesRepository struct {
	db *sqlx.DB
}

func NewTablesRepository(db *sqlx.DB) TablesRepository {
	return &tablesRepository{db: db}
}

// CountTablesDB counts how many of SchemaTables exist in the public schema.
func (r *tablesRepository) CountTablesDB(ctx context.Context) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ANY($1)`
	if err := r.db.GetContext(ctx, &count, query, pq.Array(SchemaTables)); err != nil {
		return 0, fmt.Errorf("failed to count schema tables: %w", err)
	}

	return count, nil
}
