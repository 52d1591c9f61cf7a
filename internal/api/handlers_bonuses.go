package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/auth"
	"casino_platform/internal/bonus"
)

type claimRequest struct {
	Code string `json:"code"`
}

type claimResponse struct {
	*bonus.Claim
	Offer *bonus.Offer `json:"bonus"`
}

func (h *Handler) listOffers(c *gin.Context) {
	offers, err := h.bonuses.ListOffers(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bonuses": offers})
}

func (h *Handler) claimBonus(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	claim, offer, err := h.bonuses.Claim(c.Request.Context(), auth.AccountID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claimResponse{Claim: claim, Offer: offer})
}

func (h *Handler) listClaims(c *gin.Context) {
	claims, err := h.bonuses.ListClaims(c.Request.Context(), auth.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (h *Handler) bonusProgress(c *gin.Context) {
	claimID, _ := strconv.ParseUint(c.Query("claim_id"), 10, 64)
	progress, err := h.bonuses.GetProgress(c.Request.Context(), auth.AccountID(c), claimID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// bonusUpdates streams wagering progress updates as server-sent events until
// the client disconnects.
func (h *Handler) bonusUpdates(c *gin.Context) {
	accountID := auth.AccountID(c)
	ch := h.bonuses.Subscribe(accountID)
	defer h.bonuses.Unsubscribe(accountID, ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case update, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("progress", update)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
