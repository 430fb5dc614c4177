package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/danieljhkim/roboplan/internal/history"
)

// ListPlans returns recorded cycles, newest first, optionally only failures.
func (e *Engine) ListPlans(ctx context.Context, failedOnly bool) ([]*history.Record, error) {
	records, err := e.history.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if !failedOnly {
		return records, nil
	}
	failed := make([]*history.Record, 0, len(records))
	for _, r := range records {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed, nil
}

// GetPlan loads a recorded cycle by ID or unique ID prefix.
func (e *Engine) GetPlan(ctx context.Context, id string) (*history.Record, error) {
	rec, err := e.history.Load(id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	records, err := e.history.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	var matches []*history.Record
	for _, r := range records {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: plan '%s'", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: '%s' matches %d plans", ErrAmbiguousID, id, len(matches))
	}
}

// DeletePlan removes a recorded cycle by ID or unique ID prefix and returns
// the full ID that was removed.
func (e *Engine) DeletePlan(ctx context.Context, id string) (string, error) {
	rec, err := e.GetPlan(ctx, id)
	if err != nil {
		return "", err
	}
	if err := e.history.Delete(rec.ID); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: plan '%s'", ErrNotFound, id)
		}
		return "", fmt.Errorf("failed to delete plan: %w", err)
	}
	return rec.ID, nil
}
