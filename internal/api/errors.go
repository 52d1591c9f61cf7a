package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"casino_platform/internal/account"
	"casino_platform/internal/bet"
	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

type apiError struct {
	status int
	code   string
}

// errorTable maps domain errors to HTTP status and stable code strings.
// Precondition failures and uniqueness races answer 409; the response body
// names the violated rule.
var errorTable = []struct {
	err error
	api apiError
}{
	{bonus.ErrEmptyCode, apiError{http.StatusBadRequest, "MISSING_BONUS_CODE"}},
	{bonus.ErrOfferNotFound, apiError{http.StatusBadRequest, "INVALID_BONUS_CODE"}},
	{bonus.ErrInvalidWindow, apiError{http.StatusBadRequest, "INVALID_DATE_RANGE"}},
	{bet.ErrStakeRequired, apiError{http.StatusBadRequest, "INVALID_BET_AMOUNT"}},
	{bet.ErrStakeBelowMin, apiError{http.StatusBadRequest, "BET_AMOUNT_TOO_LOW"}},
	{bet.ErrStakeAboveMax, apiError{http.StatusBadRequest, "BET_AMOUNT_TOO_HIGH"}},
	{bet.ErrNegativeWin, apiError{http.StatusBadRequest, "INVALID_WIN_AMOUNT"}},
	{bet.ErrNegativeMult, apiError{http.StatusBadRequest, "INVALID_MULTIPLIER"}},
	{bet.ErrInvalidBetStatus, apiError{http.StatusBadRequest, "INVALID_STATUS"}},
	{bet.ErrInvalidBetData, apiError{http.StatusBadRequest, "INVALID_BET_DATA"}},
	{bet.ErrInvalidOutcome, apiError{http.StatusBadRequest, "INVALID_OUTCOME"}},
	{ledger.ErrInvalidKind, apiError{http.StatusBadRequest, "INVALID_TRANSACTION_TYPE"}},
	{ledger.ErrInvalidAmount, apiError{http.StatusBadRequest, "INVALID_AMOUNT"}},
	{ledger.ErrInvalidFilter, apiError{http.StatusBadRequest, "INVALID_FILTER"}},

	{account.ErrAccountNotFound, apiError{http.StatusNotFound, "USER_NOT_FOUND"}},
	{game.ErrGameNotFound, apiError{http.StatusNotFound, "GAME_NOT_FOUND"}},
	{bet.ErrBetNotFound, apiError{http.StatusNotFound, "BET_NOT_FOUND"}},
	{bonus.ErrClaimNotFound, apiError{http.StatusNotFound, "CLAIM_NOT_FOUND"}},

	{bonus.ErrAlreadyClaimed, apiError{http.StatusConflict, "BONUS_ALREADY_CLAIMED"}},
	{bonus.ErrOfferInactive, apiError{http.StatusConflict, "BONUS_INACTIVE"}},
	{bonus.ErrOfferNotStarted, apiError{http.StatusConflict, "BONUS_NOT_STARTED"}},
	{bonus.ErrOfferExpired, apiError{http.StatusConflict, "BONUS_EXPIRED"}},
	{bonus.ErrCodeTaken, apiError{http.StatusConflict, "BONUS_CODE_TAKEN"}},
	{ledger.ErrInsufficientBalance, apiError{http.StatusConflict, "INSUFFICIENT_BALANCE"}},
	{ledger.ErrOptimisticLock, apiError{http.StatusConflict, "CONFLICT"}},
	{bet.ErrBetAlreadySettled, apiError{http.StatusConflict, "BET_ALREADY_SETTLED"}},
	{bet.ErrAccountSuspended, apiError{http.StatusConflict, "ACCOUNT_SUSPENDED"}},
	{bet.ErrGameInactive, apiError{http.StatusConflict, "GAME_INACTIVE"}},
	{account.ErrEmailTaken, apiError{http.StatusConflict, "EMAIL_TAKEN"}},
	{game.ErrSlugTaken, apiError{http.StatusConflict, "GAME_SLUG_TAKEN"}},
}

// respondError writes the structured {error, code} body for a domain error.
// Unrecognized errors become opaque 500s carrying only a correlation id.
func respondError(c *gin.Context, err error) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			c.JSON(entry.api.status, gin.H{"error": err.Error(), "code": entry.api.code})
			return
		}
	}

	correlationID := uuid.NewString()
	logrus.WithError(err).WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"path":           c.FullPath(),
	}).Error("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":          "internal server error",
		"code":           "INTERNAL_ERROR",
		"correlation_id": correlationID,
	})
}

func respondBadRequest(c *gin.Context, msg, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": code})
}
