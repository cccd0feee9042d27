package provider

import "context"

type Repository interface {
	GetSettings(ctx context.Context, providerID int) (*Settings, error)
	UpsertSettings(ctx context.Context, s *Settings) (*Settings, error)
}
