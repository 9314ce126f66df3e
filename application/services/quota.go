package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"
)

// QuotaStatus is the result of a daily limit check
type QuotaStatus struct {
	Allowed   bool
	Remaining int
	Count     int
}

// QuotaService enforces the per-day submission quota by counting the user's
// item creations in the current local day. There is no reservation step:
// two concurrent submissions can both observe a free slot, which is an
// accepted race documented alongside the track capacity check.
type QuotaService struct {
	items  ports.ItemRepository
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewQuotaService creates a new quota service
func NewQuotaService(items ports.ItemRepository, cfg *config.DomainConfig, logger *zap.Logger) *QuotaService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &QuotaService{
		items:  items,
		cfg:    cfg,
		logger: logger,
	}
}

// CheckDailyLimit reports whether the user may submit right now and how many
// submissions remain today
func (s *QuotaService) CheckDailyLimit(ctx context.Context, userID string) (*QuotaStatus, error) {
	from, to := utils.DayWindow(time.Now())

	count, err := s.items.CountCreatedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	remaining := s.cfg.DailyPostLimit - count
	if remaining < 0 {
		remaining = 0
	}

	status := &QuotaStatus{
		Allowed:   count < s.cfg.DailyPostLimit,
		Remaining: remaining,
		Count:     count,
	}

	if !status.Allowed {
		s.logger.Info("Daily submission limit reached",
			zap.String("userID", userID),
			zap.Int("count", count),
			zap.Int("limit", s.cfg.DailyPostLimit),
		)
	}

	return status, nil
}

// Limit returns the configured daily quota
func (s *QuotaService) Limit() int {
	return s.cfg.DailyPostLimit
}
