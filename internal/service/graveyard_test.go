package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"molt-core/internal/model"
	"molt-core/pkg/errno"
)

func TestGraveyardDeclare(t *testing.T) {
	db := newTestDB(t)
	g := NewGraveyard(db)
	ctx := context.Background()

	require.NoError(t, g.Declare(ctx, "doge", 1))
	// 符号大小写规整后是同一个币
	require.NoError(t, g.Declare(ctx, "DOGE", 2))
	require.NoError(t, g.Declare(ctx, " Doge ", 3))

	var coin model.Coin
	require.NoError(t, db.First(&coin, "symbol = ?", "DOGE").Error)
	assert.Equal(t, int64(3), coin.DeathCount)
	assert.Equal(t, "dead", coin.Status)
	assert.Equal(t, int64(3), coin.LastDeclaredBy)

	// 空符号拒绝
	assert.ErrorIs(t, g.Declare(ctx, "   ", 1), errno.ErrBind)
}

func TestGraveyardTop(t *testing.T) {
	db := newTestDB(t)
	g := NewGraveyard(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Declare(ctx, "PEPE", 1))
	}
	require.NoError(t, g.Declare(ctx, "DOGE", 1))

	top, err := g.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "PEPE", top[0].Symbol)
	assert.Equal(t, int64(3), top[0].DeathCount)

	top, err = g.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
