package availability

import (
	"context"
	"time"

	"psicanalise/internal/provider"
)

type Repository interface {
	ReplaceRules(ctx context.Context, providerID int, rules []Rule) ([]Rule, error)
	ListRules(ctx context.Context, providerID int) ([]Rule, error)
	ListActiveRules(ctx context.Context, providerID, weekday int, sessionType provider.SessionType) ([]Rule, error)

	CreateBlock(ctx context.Context, b *Block) (*Block, error)
	DeleteBlock(ctx context.Context, providerID, blockID int) error
	ListBlocks(ctx context.Context, providerID int) ([]Block, error)
	ListBlocksInRange(ctx context.Context, providerID int, from, to time.Time) ([]Block, error)
}
