package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
)

func seedItem(t *testing.T, env *testEnv, userID string) {
	t.Helper()
	content, err := valueobjects.NewTextContent("an entry", "")
	require.NoError(t, err)
	item, err := entities.NewContentItem(userID, content, "")
	require.NoError(t, err)
	require.NoError(t, env.items.Save(context.Background(), item))
}

func TestQuotaService_CheckDailyLimit(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.DailyPostLimit = 3
	env := newTestEnv(cfg)
	ctx := context.Background()

	status, err := env.quota.CheckDailyLimit(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 3, status.Remaining)
	assert.Zero(t, status.Count)

	seedItem(t, env, "user-1")
	seedItem(t, env, "user-1")

	status, err = env.quota.CheckDailyLimit(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 1, status.Remaining)

	seedItem(t, env, "user-1")

	status, err = env.quota.CheckDailyLimit(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Zero(t, status.Remaining)
	assert.Equal(t, 3, status.Count)
}

func TestQuotaService_PerUser(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.DailyPostLimit = 1
	env := newTestEnv(cfg)
	ctx := context.Background()

	seedItem(t, env, "user-1")

	status, err := env.quota.CheckDailyLimit(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 1, status.Remaining)
}
