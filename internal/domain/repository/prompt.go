package repository

import "context"

// PromptRepository persists the set of order ids a rider has already been prompted about.
type PromptRepository interface {
	Load(ctx context.Context, riderID string) ([]string, error)
	Add(ctx context.Context, riderID, orderID string) error
	Remove(ctx context.Context, riderID, orderID string) error
}
