package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"casino_platform/internal/account"
	"casino_platform/internal/bonus"
	"casino_platform/internal/db"
	"casino_platform/internal/ledger"
	"casino_platform/internal/worker"
)

func TestSweepExpiresLapsedClaims(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	accts := account.NewRepository(conn)
	svc := bonus.NewService(conn, bonus.NewRepository(conn), accts, ledger.NewMutator(conn))

	acct := &account.Account{
		Email:        uuid.NewString() + "@test.local",
		Username:     uuid.NewString(),
		PasswordHash: "x",
		Status:       account.StatusActive,
	}
	require.NoError(t, conn.Create(acct).Error)

	offer := &bonus.Offer{
		Name:       "Flash Bonus",
		Code:       "FLASH" + uuid.NewString()[:8],
		Type:       bonus.OfferTypeWelcome,
		Amount:     decimal.NewFromInt(10),
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, conn.Create(offer).Error)

	claim, _, err := svc.Claim(context.Background(), acct.ID, offer.Code)
	require.NoError(t, err)

	require.NoError(t, conn.Model(&bonus.Claim{}).Where("id = ?", claim.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	sweeper := worker.NewExpirySweeper(svc, time.Minute)
	sweeper.Sweep(context.Background())

	var fresh bonus.Claim
	require.NoError(t, conn.First(&fresh, claim.ID).Error)
	require.Equal(t, bonus.ClaimStatusExpired, fresh.Status)

	// a second pass finds nothing to do
	sweeper.Sweep(context.Background())
	require.NoError(t, conn.First(&fresh, claim.ID).Error)
	require.Equal(t, bonus.ClaimStatusExpired, fresh.Status)
}

func TestSweeperStartStop(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	svc := bonus.NewService(conn, bonus.NewRepository(conn), account.NewRepository(conn), ledger.NewMutator(conn))

	sweeper := worker.NewExpirySweeper(svc, time.Hour)
	require.NoError(t, sweeper.Start())
	require.NoError(t, sweeper.Stop())
}
