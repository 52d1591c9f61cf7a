package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/auth"
	"casino_platform/internal/bet"
)

func (h *Handler) placeBet(c *gin.Context) {
	var req bet.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}
	if req.GameID == 0 {
		respondBadRequest(c, "game_id is required", "MISSING_GAME_ID")
		return
	}

	b, err := h.bets.Place(c.Request.Context(), auth.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) listBets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	bets, err := h.bets.List(c.Request.Context(), auth.AccountID(c), c.Query("status"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (h *Handler) settleBet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "id must be a valid integer", "INVALID_BET_ID")
		return
	}

	var req bet.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	b, err := h.bets.Settle(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), auth.AccountID(c), "settle", "bet", b.ID, req, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, b)
}
