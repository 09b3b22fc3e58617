package http

import (
	"net/http"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/config"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/db"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	attest   *usecase.AttestationService
	tokens   *usecase.TokenIssuer
	payments *usecase.PaymentService
	catalog  usecase.ResourceCatalog

	adminAPIKey string

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

// ServerDeps carries every collaborator as an explicit reference; nothing is
// reached through package-level state.
type ServerDeps struct {
	Attest      *usecase.AttestationService
	Tokens      *usecase.TokenIssuer
	Payments    *usecase.PaymentService
	Catalog     usecase.ResourceCatalog
	Store       *db.Store
	AdminAPIKey string
	RateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:                 cfg,
		store:               deps.Store,
		r:                   r,
		attest:              deps.Attest,
		tokens:              deps.Tokens,
		payments:            deps.Payments,
		catalog:             deps.Catalog,
		adminAPIKey:         deps.AdminAPIKey,
		rateLimiter:         deps.RateLimiter,
		rateLimitRequests:   cfg.RateLimitRequests,
		rateLimitWindow:     cfg.RateLimitWindow(),
		rateLimitFailClosed: cfg.RateLimitFailClosed,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "memory"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/challenge", s.handleChallenge)
		v1.POST("/token", s.handleToken)
		v1.POST("/attest", s.handleAttest)
		v1.POST("/payment/initiate", s.handleInitiate)
		v1.POST("/payment/confirm", s.handleConfirm)

		v1.POST("/resources", s.handleRegisterResource)
		v1.GET("/resources/:id", s.handleGetResource)
	}
}

// Engine exposes the router for httptest-driven tests.
func (s *Server) Engine() *gin.Engine {
	return s.r
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
