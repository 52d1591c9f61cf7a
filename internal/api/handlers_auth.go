package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"casino_platform/internal/account"
	"casino_platform/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token   string           `json:"token"`
	Account *account.Account `json:"account"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	acct := &account.Account{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Status:       account.StatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.accounts.Create(c.Request.Context(), acct); err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, acct.ID, acct.Username, auth.RolePlayer, h.tokenExpiry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: token, Account: acct})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error(), "INVALID_REQUEST")
		return
	}

	acct, err := h.accounts.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
		return
	}

	if err := h.accounts.TouchLastLogin(c.Request.Context(), acct.ID); err != nil {
		respondError(c, err)
		return
	}

	role := auth.RolePlayer
	if isAdminEmail(acct.Email) {
		role = auth.RoleAdmin
	}
	token, err := auth.GenerateToken(h.jwtSecret, acct.ID, acct.Username, role, h.tokenExpiry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, Account: acct})
}

// isAdminEmail marks back-office operators. Role storage is deliberately
// minimal; operators live on a reserved domain.
func isAdminEmail(email string) bool {
	const adminDomain = "@casino.internal"
	return len(email) > len(adminDomain) && email[len(email)-len(adminDomain):] == adminDomain
}

func (h *Handler) getBalance(c *gin.Context) {
	balance, err := h.accounts.GetBalance(c.Request.Context(), auth.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
