package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"casino_platform/internal/account"
	"casino_platform/internal/audit"
	"casino_platform/internal/auth"
	"casino_platform/internal/bet"
	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

type Handler struct {
	jwtSecret   string
	tokenExpiry time.Duration

	accounts    account.Repository
	games       game.Repository
	catalog     *game.Catalog
	bets        *bet.Service
	bonuses     *bonus.Service
	adjustments *ledger.Service
	entries     ledger.Repository
	auditor     *audit.Recorder
}

type Deps struct {
	JWTSecret   string
	TokenExpiry time.Duration

	Accounts    account.Repository
	Games       game.Repository
	Catalog     *game.Catalog
	Bets        *bet.Service
	Bonuses     *bonus.Service
	Adjustments *ledger.Service
	Entries     ledger.Repository
	Auditor     *audit.Recorder
}

// NewRouter wires the HTTP surface: public catalog and auth endpoints, the
// authenticated player area, and the admin back office.
func NewRouter(deps Deps) *gin.Engine {
	h := &Handler{
		jwtSecret:   deps.JWTSecret,
		tokenExpiry: deps.TokenExpiry,
		accounts:    deps.Accounts,
		games:       deps.Games,
		catalog:     deps.Catalog,
		bets:        deps.Bets,
		bonuses:     deps.Bonuses,
		adjustments: deps.Adjustments,
		entries:     deps.Entries,
		auditor:     deps.Auditor,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/games", h.listGames)
		api.GET("/games/:id", h.getGame)
		api.GET("/bonuses", h.listOffers)
	}

	user := api.Group("/user", auth.Middleware(deps.JWTSecret))
	{
		user.GET("/balance", h.getBalance)
		user.GET("/transactions", h.listTransactions)
		user.GET("/bets", h.listBets)
		user.POST("/bets", h.placeBet)
		user.GET("/bonuses", h.listClaims)
		user.POST("/bonuses/claim", h.claimBonus)
		user.GET("/bonuses/progress", h.bonusProgress)
		user.GET("/bonuses/updates", h.bonusUpdates)
	}

	admin := api.Group("/admin", auth.Middleware(deps.JWTSecret), auth.RequireAdmin())
	{
		admin.POST("/games", h.createGame)
		admin.PUT("/games/:id", h.updateGame)
		admin.POST("/bonuses", h.createOffer)
		admin.POST("/adjustments", h.createAdjustment)
		admin.POST("/bets/:id/settle", h.settleBet)
		admin.GET("/transactions", h.adminListTransactions)
		admin.GET("/logs", h.adminListLogs)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
