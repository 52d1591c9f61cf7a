package game_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"casino_platform/internal/db"
	"casino_platform/internal/game"
)

func setupRepo(t *testing.T) (*gorm.DB, game.Repository, *game.Game) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	repo := game.NewRepository(conn)
	g := &game.Game{
		Name:     "Lucky Sevens",
		Slug:     "lucky-sevens",
		Provider: "TestProvider",
		MinBet:   decimal.NewFromInt(1),
		MaxBet:   decimal.NewFromInt(100),
		IsActive: true,
	}
	require.NoError(t, repo.Create(context.Background(), g))
	return conn, repo, g
}

func TestCatalogMissPopulatesCache(t *testing.T) {
	_, repo, g := setupRepo(t)
	ctx := context.Background()

	stored, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	key := fmt.Sprintf("game:%d", g.ID)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

	catalog := game.NewCatalog(repo, rdb, time.Minute)
	got, err := catalog.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)
	require.Equal(t, "lucky-sevens", got.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogHitSkipsRepository(t *testing.T) {
	_, repo, _ := setupRepo(t)
	ctx := context.Background()

	cached := game.Game{ID: 9999, Name: "Ghost Game", Slug: "ghost-game", IsActive: true}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("game:9999").SetVal(string(payload))

	catalog := game.NewCatalog(repo, rdb, time.Minute)

	// id 9999 has no database row; a result proves the cache served it
	got, err := catalog.GetGame(ctx, 9999)
	require.NoError(t, err)
	require.Equal(t, "ghost-game", got.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogNilClientReadsThrough(t *testing.T) {
	_, repo, g := setupRepo(t)

	catalog := game.NewCatalog(repo, nil, time.Minute)
	got, err := catalog.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)

	_, err = catalog.GetGame(context.Background(), 12345)
	require.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestCatalogInvalidate(t *testing.T) {
	_, repo, g := setupRepo(t)

	rdb, mock := redismock.NewClientMock()
	key := fmt.Sprintf("game:%d", g.ID)
	mock.ExpectDel(key).SetVal(1)

	catalog := game.NewCatalog(repo, rdb, time.Minute)
	catalog.Invalidate(context.Background(), g.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate(t *testing.T) {
	_, repo, g := setupRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, g.ID, map[string]interface{}{
		"is_active": false,
		"max_bet":   decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.True(t, updated.MaxBet.Equal(decimal.NewFromInt(50)))

	_, err = repo.Update(ctx, 9999, map[string]interface{}{"is_active": true})
	require.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestRepositoryRejectsDuplicateSlug(t *testing.T) {
	_, repo, g := setupRepo(t)

	dup := &game.Game{Name: "Copy", Slug: g.Slug, Provider: "TestProvider"}
	err := repo.Create(context.Background(), dup)
	require.ErrorIs(t, err, game.ErrSlugTaken)
}
