package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"casino_platform/internal/auth"
	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

type createGameRequest struct {
	Name     string          `json:"name" binding:"required"`
	Slug     string          `json:"slug" binding:"required"`
	Provider string          `json:"provider" binding:"required"`
	MinBet   decimal.Decimal `json:"min_bet"`
	MaxBet   decimal.Decimal `json:"max_bet"`
	RTP      decimal.Decimal `json:"rtp"`
	IsActive *bool           `json:"is_active,omitempty"`
}

func (h *Handler) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}
	if req.MinBet.IsNegative() || req.MaxBet.IsNegative() || req.MinBet.GreaterThan(req.MaxBet) {
		respondBadRequest(c, "min_bet must be non-negative and not exceed max_bet", "INVALID_BET_RANGE")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	g := &game.Game{
		Name:      req.Name,
		Slug:      req.Slug,
		Provider:  req.Provider,
		MinBet:    req.MinBet,
		MaxBet:    req.MaxBet,
		RTP:       req.RTP,
		IsActive:  active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.games.Create(c.Request.Context(), g); err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), auth.AccountID(c), "create", "game", g.ID, g, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, g)
}

type updateGameRequest struct {
	Name       *string          `json:"name,omitempty"`
	Provider   *string          `json:"provider,omitempty"`
	MinBet     *decimal.Decimal `json:"min_bet,omitempty"`
	MaxBet     *decimal.Decimal `json:"max_bet,omitempty"`
	RTP        *decimal.Decimal `json:"rtp,omitempty"`
	IsFeatured *bool            `json:"is_featured,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

// updateGame patches catalog fields and drops the cached copy, so players
// never bet against stale limits.
func (h *Handler) updateGame(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "id must be a valid integer", "INVALID_GAME_ID")
		return
	}

	var req updateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Provider != nil {
		updates["provider"] = *req.Provider
	}
	if req.MinBet != nil {
		updates["min_bet"] = *req.MinBet
	}
	if req.MaxBet != nil {
		updates["max_bet"] = *req.MaxBet
	}
	if req.RTP != nil {
		updates["rtp"] = *req.RTP
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields supplied", "EMPTY_UPDATE")
		return
	}
	if req.MinBet != nil && req.MinBet.IsNegative() || req.MaxBet != nil && req.MaxBet.IsNegative() {
		respondBadRequest(c, "min_bet and max_bet must be non-negative", "INVALID_BET_RANGE")
		return
	}

	g, err := h.games.Update(c.Request.Context(), id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context(), id)

	h.auditor.Record(c.Request.Context(), auth.AccountID(c), "update", "game", g.ID, req, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, g)
}

type createOfferRequest struct {
	Name               string          `json:"name" binding:"required"`
	Code               string          `json:"code" binding:"required"`
	Type               string          `json:"type" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
	Percentage         int             `json:"percentage"`
	MaxAmount          decimal.Decimal `json:"max_amount"`
	WageringMultiplier int             `json:"wagering_multiplier"`
	ValidFrom          time.Time       `json:"valid_from" binding:"required"`
	ValidUntil         time.Time       `json:"valid_until" binding:"required"`
	IsActive           *bool           `json:"is_active,omitempty"`
	Description        string          `json:"description,omitempty"`
}

func (h *Handler) createOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}
	if req.Amount.IsNegative() || req.Percentage < 0 || req.WageringMultiplier < 0 {
		respondBadRequest(c, "amount, percentage and wagering_multiplier must be non-negative", "INVALID_REWARD_TERMS")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	offer := &bonus.Offer{
		Name:               req.Name,
		Code:               req.Code,
		Type:               req.Type,
		Amount:             req.Amount,
		Percentage:         req.Percentage,
		MaxAmount:          req.MaxAmount,
		WageringMultiplier: req.WageringMultiplier,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           active,
		Description:        req.Description,
		CreatedAt:          time.Now(),
	}
	if err := h.bonuses.CreateOffer(c.Request.Context(), offer); err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), auth.AccountID(c), "create", "bonus_offer", offer.ID, offer, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) createAdjustment(c *gin.Context) {
	var req ledger.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	resp, err := h.adjustments.ProcessAdjustment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), auth.AccountID(c), "adjust", "ledger_entry", resp.EntryID, req, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) adminListTransactions(c *gin.Context) {
	accountID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.entries.List(c.Request.Context(), ledger.ListFilter{
		AccountID: accountID,
		Kind:      c.Query("type"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

func (h *Handler) adminListLogs(c *gin.Context) {
	adminID, _ := strconv.ParseUint(c.Query("admin_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.auditor.List(c.Request.Context(), adminID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// listTransactions serves the player's own ledger history.
func (h *Handler) listTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.entries.List(c.Request.Context(), ledger.ListFilter{
		AccountID: auth.AccountID(c),
		Kind:      c.Query("type"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}
