package main

import (
	"context"
	"log"
	"net/http"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/config"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/auditmem"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/catalogmem"
	cryptoinfra "github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/crypto"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/db"
	httpinfra "github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/http"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/ledgermem"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/policyopa"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/ratelimit"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/infra/settlement"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	signer, err := cryptoinfra.NewAttestationSigner(cfg.AttestationKeyHex)
	if err != nil {
		log.Fatalf("attestation signer unavailable: %v", err)
	}
	log.Printf("attestation authority address: %s", signer.Address().Hex())

	var (
		store   *db.Store
		ledger  usecase.ReferenceLedger
		catalog usecase.ResourceCatalog
		audit   usecase.AuditSink
	)
	if cfg.PostgresDSN != "" {
		store, err = db.NewStore(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to init store: %v", err)
		}
		ledger = db.NewReferenceRepository(store.DB)
		catalog = db.NewResourceRepository(store.DB)
		audit = db.NewAuditEventRepository(store.DB)
	} else {
		log.Printf("POSTGRES_DSN not set; using in-memory stores")
		ledger = ledgermem.New()
		catalog = catalogmem.New()
		audit = auditmem.New()
	}

	tokens, err := usecase.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL(), cfg.ChallengeTTL(), audit)
	if err != nil {
		log.Fatalf("token issuer unavailable: %v", err)
	}

	var policy usecase.PolicyGate
	if cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(context.Background(), cfg.PolicyBundlePath)
		if err != nil {
			log.Fatalf("failed to load policy bundle: %v", err)
		}
		policy = engine
	}

	var payments *usecase.PaymentService
	if cfg.SettlementBaseURL != "" {
		client, err := settlement.NewHTTPClient(cfg.SettlementBaseURL, cfg.SettlementAPIKey, &http.Client{Timeout: cfg.SettlementTimeout()})
		if err != nil {
			log.Fatalf("settlement client unavailable: %v", err)
		}
		payments, err = usecase.NewPaymentService(ledger, client, policy, audit, cfg.SettlementTimeout())
		if err != nil {
			log.Fatalf("payment service unavailable: %v", err)
		}
	} else {
		log.Printf("SETTLEMENT_BASE_URL not set; payment endpoints disabled")
	}

	var limiter domain.RateLimiter
	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				log.Fatalf("failed to init redis rate limiter: %v", err)
			}
		} else {
			limiter = ratelimit.NewMemoryLimiter(nil)
		}
	}

	attest := usecase.NewAttestationService(signer, catalog, audit)

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Attest:      attest,
		Tokens:      tokens,
		Payments:    payments,
		Catalog:     catalog,
		Store:       store,
		AdminAPIKey: cfg.AdminAPIKey,
		RateLimiter: limiter,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
