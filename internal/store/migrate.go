package store

import (
	"context"

	"github.com/KamalSai3/KS-Events/internal/models"
)

// Reset drops and recreates the tables from the bun models. Production
// schemas (foreign keys, CHECK constraints) come from the SQL
// migrations; this path serves the in-memory test databases.
func (s *Store) Reset(ctx context.Context) error {
	return s.Bun.ResetModel(ctx,
		(*models.Event)(nil),
		(*models.Student)(nil),
		(*models.Registration)(nil),
	)
}
