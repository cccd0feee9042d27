package credits

import (
	"context"
	"errors"
	"fmt"

	"psicanalise/internal/logger"
	"psicanalise/internal/metrics"
	"psicanalise/internal/provider"
)

var ErrInvalidGrant = errors.New("invalid credit grant")

type Service interface {
	AddCredits(ctx context.Context, req AddCreditsRequest) (*Credit, bool, error)
	ListBalances(ctx context.Context, clientID int) ([]BalanceResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddCredits(ctx context.Context, req AddCreditsRequest) (*Credit, bool, error) {
	if !provider.ValidSessionType(req.SessionType) {
		return nil, false, fmt.Errorf("%w: unknown session type %q", ErrInvalidGrant, req.SessionType)
	}

	credit, granted, err := s.repo.AddCredits(ctx, req.OrderID, req.ClientID, req.ProviderID, req.SessionType, req.Quantity)
	if err != nil {
		return nil, false, err
	}

	if granted {
		metrics.CreditsGrantedTotal.WithLabelValues(string(req.SessionType)).Add(float64(req.Quantity))
		logger.Info("Credits granted",
			"order_id", req.OrderID,
			"client_id", req.ClientID,
			"session_type", req.SessionType,
			"quantity", req.Quantity,
		)
	} else {
		logger.Info("Duplicate credit order ignored", "order_id", req.OrderID)
	}

	return credit, granted, nil
}

func (s *service) ListBalances(ctx context.Context, clientID int) ([]BalanceResponse, error) {
	credits, err := s.repo.ListBalances(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]BalanceResponse, 0, len(credits))
	for _, c := range credits {
		out = append(out, BalanceResponse{
			ProviderID:  c.ProviderID,
			SessionType: c.SessionType,
			Available:   c.Available(),
		})
	}
	return out, nil
}
