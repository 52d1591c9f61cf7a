package bet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4/testutils/assert"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"casino_platform/internal/account"
	"casino_platform/internal/bet"
	"casino_platform/internal/db"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

type fixture struct {
	conn *gorm.DB
	svc  *bet.Service
	acct *account.Account
	game *game.Game
}

func setup(t *testing.T, balance decimal.Decimal) *fixture {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	acct := &account.Account{
		Email:        uuid.NewString() + "@test.local",
		Username:     uuid.NewString(),
		PasswordHash: "x",
		Balance:      balance,
		Status:       account.StatusActive,
	}
	require.NoError(t, conn.Create(acct).Error)

	g := &game.Game{
		Name:     "Mega Spinner",
		Slug:     "mega-spinner-" + uuid.NewString()[:8],
		Provider: "TestProvider",
		MinBet:   decimal.NewFromInt(1),
		MaxBet:   decimal.NewFromInt(500),
		IsActive: true,
	}
	require.NoError(t, conn.Create(g).Error)

	accts := account.NewRepository(conn)
	games := game.NewRepository(conn)
	catalog := game.NewCatalog(games, nil, time.Minute)
	mutator := ledger.NewMutator(conn)
	svc := bet.NewService(conn, bet.NewRepository(conn), accts, catalog, games, mutator, nil)

	return &fixture{conn: conn, svc: svc, acct: acct, game: g}
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	var fresh account.Account
	require.NoError(t, f.conn.First(&fresh, f.acct.ID).Error)
	return fresh.Balance
}

func TestPlaceDebitsStakeAtomically(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	b, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(60)})
	assert.NoError(t, err)
	require.Equal(t, bet.StatusPending, b.Status)
	require.NotZero(t, b.LedgerEntryID)
	require.True(t, f.balance(t).Equal(decimal.NewFromInt(40)))

	var entry ledger.Entry
	require.NoError(t, f.conn.First(&entry, b.LedgerEntryID).Error)
	require.Equal(t, ledger.KindBet, entry.Kind)
	require.True(t, entry.Amount.Equal(decimal.NewFromInt(-60)))
	require.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(40)))

	// the remaining 40 cannot cover another 60
	_, err = f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(60)})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	require.True(t, f.balance(t).Equal(decimal.NewFromInt(40)), "rejected bet leaves balance intact")

	var betCount int64
	require.NoError(t, f.conn.Model(&bet.Bet{}).Where("account_id = ?", f.acct.ID).Count(&betCount).Error)
	require.Equal(t, int64(1), betCount, "rejected bet writes no row")
}

func TestPlaceValidationRunsBeforeMutation(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	cases := []struct {
		name string
		req  bet.PlaceRequest
		want error
	}{
		{"zero stake", bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.Zero}, bet.ErrStakeRequired},
		{"below min", bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromFloat(0.5)}, bet.ErrStakeBelowMin},
		{"above max", bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(501)}, bet.ErrStakeAboveMax},
		{"bad status", bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10), Status: "maybe"}, bet.ErrInvalidBetStatus},
		{"bad bet data", bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10), BetData: "{not json"}, bet.ErrInvalidBetData},
		{"unknown game", bet.PlaceRequest{GameID: 9999, Stake: decimal.NewFromInt(10)}, game.ErrGameNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Place(ctx, f.acct.ID, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}

	neg := decimal.NewFromInt(-5)
	_, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10), WinAmount: &neg})
	require.ErrorIs(t, err, bet.ErrNegativeWin)
	_, err = f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10), Multiplier: &neg})
	require.ErrorIs(t, err, bet.ErrNegativeMult)

	require.True(t, f.balance(t).Equal(decimal.NewFromInt(100)), "no mutation on any rejection")
}

func TestPlaceRejectsInactiveGame(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	require.NoError(t, f.conn.Model(&game.Game{}).Where("id = ?", f.game.ID).Update("is_active", false).Error)

	_, err := f.svc.Place(context.Background(), f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, bet.ErrGameInactive)
}

func TestPlaceRejectsSuspendedAccount(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	require.NoError(t, f.conn.Model(&account.Account{}).Where("id = ?", f.acct.ID).
		Update("status", account.StatusSuspended).Error)

	_, err := f.svc.Place(context.Background(), f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, bet.ErrAccountSuspended)
}

func TestPlaceBumpsPlayCount(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))

	_, err := f.svc.Place(context.Background(), f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	assert.NoError(t, err)

	var fresh game.Game
	require.NoError(t, f.conn.First(&fresh, f.game.ID).Error)
	require.Equal(t, int64(1), fresh.PlayCount)
}

func TestConcurrentPlacementsSerialize(t *testing.T) {
	f := setup(t, decimal.NewFromInt(50))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 5, successCount)
	require.True(t, f.balance(t).Equal(decimal.Zero))
}

func TestSettleWinCreditsOnce(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	b, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(40)})
	require.NoError(t, err)

	settled, err := f.svc.Settle(ctx, b.ID, bet.SettleRequest{Outcome: bet.StatusWin, WinAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.Equal(t, bet.StatusWin, settled.Status)
	require.True(t, settled.WinAmount.Equal(decimal.NewFromInt(100)))
	require.True(t, settled.Multiplier.Equal(decimal.NewFromFloat(2.5)), "multiplier derived from stake")
	require.NotNil(t, settled.SettledAt)
	require.True(t, f.balance(t).Equal(decimal.NewFromInt(160)), "60 after stake + 100 payout")

	// second settlement must not pay again
	_, err = f.svc.Settle(ctx, b.ID, bet.SettleRequest{Outcome: bet.StatusWin, WinAmount: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, bet.ErrBetAlreadySettled)
	require.True(t, f.balance(t).Equal(decimal.NewFromInt(160)))

	var entryCount int64
	require.NoError(t, f.conn.Model(&ledger.Entry{}).
		Where("account_id = ? AND kind = ?", f.acct.ID, ledger.KindWin).Count(&entryCount).Error)
	require.Equal(t, int64(1), entryCount)
}

func TestSettleLossCreditsNothing(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	b, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(40)})
	require.NoError(t, err)

	settled, err := f.svc.Settle(ctx, b.ID, bet.SettleRequest{Outcome: bet.StatusLoss})
	require.NoError(t, err)
	require.Equal(t, bet.StatusLoss, settled.Status)
	require.True(t, settled.WinAmount.Equal(decimal.Zero))
	require.True(t, f.balance(t).Equal(decimal.NewFromInt(60)))

	var entryCount int64
	require.NoError(t, f.conn.Model(&ledger.Entry{}).Where("account_id = ?", f.acct.ID).Count(&entryCount).Error)
	require.Equal(t, int64(1), entryCount, "only the stake debit is ledgered")
}

func TestSettleValidation(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	b, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, b.ID, bet.SettleRequest{Outcome: "void"})
	require.ErrorIs(t, err, bet.ErrInvalidOutcome)

	_, err = f.svc.Settle(ctx, b.ID, bet.SettleRequest{Outcome: bet.StatusWin, WinAmount: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, bet.ErrNegativeWin)

	_, err = f.svc.Settle(ctx, 9999, bet.SettleRequest{Outcome: bet.StatusLoss})
	require.ErrorIs(t, err, bet.ErrBetNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	f := setup(t, decimal.NewFromInt(100))
	ctx := context.Background()

	first, err := f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = f.svc.Place(ctx, f.acct.ID, bet.PlaceRequest{GameID: f.game.ID, Stake: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, first.ID, bet.SettleRequest{Outcome: bet.StatusLoss})
	require.NoError(t, err)

	pending, err := f.svc.List(ctx, f.acct.ID, bet.StatusPending, 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	all, err := f.svc.List(ctx, f.acct.ID, "", 50)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = f.svc.List(ctx, f.acct.ID, "maybe", 50)
	require.ErrorIs(t, err, bet.ErrInvalidBetStatus)
}
