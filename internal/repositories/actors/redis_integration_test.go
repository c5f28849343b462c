//go:build integration

package actors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
)

func TestRedisRepository_Integration(t *testing.T) {
	ctx := context.Background()
	client := testutils.StartRedisContainer(t)

	repo, err := NewRedis(&RedisRepoConfig{Client: client})
	require.NoError(t, err)

	actor := testutils.CreateTestCharacter("char-1", "Merisiel", 4,
		testutils.CreateTestEquipment("item-1", "Ring of Energy Resistance", true,
			`{"key":"Resistance","type":"fire","value":5}`))
	require.NoError(t, repo.Put(ctx, actor))

	got, err := repo.Get(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, "Merisiel", got.Name)
	require.Len(t, got.Items, 1)
	assert.Len(t, got.Items[0].Rules(), 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "char-1"))
	_, err = repo.Get(ctx, "char-1")
	assert.True(t, dnderr.IsNotFound(err))
}
