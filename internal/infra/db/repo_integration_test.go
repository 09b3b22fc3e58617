//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN_TEST"))
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&PaymentReferenceModel{}, &ResourceModel{}, &AuditEventModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gdb.Exec("TRUNCATE payment_references, resources, audit_events").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return gdb
}

func TestReferenceRepository_Lifecycle(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewReferenceRepository(gdb)

	id, err := repo.Create(context.Background(), domain.PaymentReference{
		Amount:    decimal.RequireFromString("10"),
		Recipient: "0xabc",
		Asset:     "SIT",
		SubjectID: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(id) != 32 {
		t.Fatalf("expected 32-char reference id, got %q", id)
	}

	ref, err := repo.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ref.Status != domain.PaymentPending || !ref.Amount.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("unexpected record: %+v", ref)
	}

	if err := repo.Complete(context.Background(), id, domain.PaymentConfirmed, "tx-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.Complete(context.Background(), id, domain.PaymentConfirmed, "tx-1"); !errors.Is(err, domain.ErrReplay) {
		t.Fatalf("second complete: expected ErrReplay, got %v", err)
	}
	if err := repo.Complete(context.Background(), "0000", domain.PaymentFailed, "tx-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown reference: expected ErrNotFound, got %v", err)
	}
}

func TestReferenceRepository_ConcurrentComplete(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewReferenceRepository(gdb)

	id, err := repo.Create(context.Background(), domain.PaymentReference{Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 4
	start := make(chan struct{})
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- repo.Complete(context.Background(), id, domain.PaymentConfirmed, "tx-race")
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, domain.ErrReplay) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
}

func TestResourceRepository_RegisterAndFetch(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewResourceRepository(gdb)

	res := domain.Resource{
		ID:          12,
		Owner:       "0x1111111111111111111111111111111111111111",
		ContentHash: "bafy-test",
		Labels:      []string{"health", "open"},
		Price:       decimal.RequireFromString("2.5"),
		Active:      true,
	}
	if err := repo.Register(context.Background(), res); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := repo.Register(context.Background(), res); !errors.Is(err, domain.ErrReplay) {
		t.Fatalf("duplicate register: expected ErrReplay, got %v", err)
	}

	got, err := repo.GetByID(context.Background(), 12)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.ContentHash != res.ContentHash || len(got.Labels) != 2 {
		t.Fatalf("unexpected resource: %+v", got)
	}

	list, err := repo.GetByIDs(context.Background(), []uint64{12, 99})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one known resource, got %d", len(list))
	}

	if err := repo.Deactivate(context.Background(), 12); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err = repo.GetByID(context.Background(), 12)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got.Active {
		t.Fatal("expected resource to be inactive")
	}
}

func TestAuditEventRepository_AppendAndList(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewAuditEventRepository(gdb)

	err := repo.Append(context.Background(), domain.AuditEvent{
		EventType:   domain.AuditEventPaymentInitiated,
		ReferenceID: "ref-1",
		Payload:     map[string]any{"amount": "10"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	err = repo.Append(context.Background(), domain.AuditEvent{
		EventType:   domain.AuditEventPaymentConfirmed,
		ReferenceID: "ref-1",
		TxID:        "tx-1",
		Outcome:     string(domain.OutcomeVerified),
	})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	events, err := repo.ListByReference(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != domain.AuditEventPaymentInitiated {
		t.Fatalf("unexpected order: %+v", events)
	}
}
