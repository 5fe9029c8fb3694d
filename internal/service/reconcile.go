package service

import (
	"context"
	"fmt"
)

// ReconcileAggregates recomputes every teacher-student counter and every
// teacher total from the lessons table.
func (s *Service) ReconcileAggregates(ctx context.Context) (int64, error) {
	const op = "service.ReconcileAggregates"

	fixed, err := s.store.ReconcileAggregates(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return fixed, nil
}
