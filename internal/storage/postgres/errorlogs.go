package postgres

import (
	"context"
	"fmt"

	"tutor-service/internal/models"
)

func (s *Storage) InsertErrorLog(ctx context.Context, e *models.ErrorLog) error {
	const op = "storage.postgres.InsertErrorLog"

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO error_logs (error_code, module, function_name, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.ErrorCode, e.Module, e.FunctionName, e.Details, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
