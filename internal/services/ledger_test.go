package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

func TestLedgerGetOrCreateUser(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()

	profile := models.TelegramProfile{ID: 1001, Username: "ann", FirstName: "Ann"}

	user, created, err := ledger.GetOrCreateUser(ctx, profile, "")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if !created {
		t.Fatal("First contact should create the user")
	}
	if user.Balance != 0 || user.TotalEarned != 0 || user.TotalWithdrawn != 0 || user.AdsWatchedToday != 0 {
		t.Errorf("New user should have zeroed counters: %+v", user)
	}
	if len(user.TasksCompleted) != 0 {
		t.Errorf("New user should have no completed tasks, got %v", user.TasksCompleted)
	}

	again, created, err := ledger.GetOrCreateUser(ctx, models.TelegramProfile{ID: 1001, FirstName: "Changed"}, "55")
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if created {
		t.Error("Second contact must not recreate the user")
	}
	if again.FirstName != "Ann" {
		t.Errorf("Existing record should be returned unchanged, got first name %q", again.FirstName)
	}
	if again.ReferredBy != nil {
		t.Errorf("Referrer is set once at creation, got %q", *again.ReferredBy)
	}
	if !again.JoinDate.Equal(user.JoinDate) {
		t.Errorf("Join date must not change: %v vs %v", again.JoinDate, user.JoinDate)
	}
}

func TestLedgerGetOrCreateUserConcurrent(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ledger := services.NewLedger(redisService)

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := ledger.GetOrCreateUser(context.Background(), models.TelegramProfile{ID: 42}, "")
			if err != nil {
				t.Errorf("GetOrCreateUser failed: %v", err)
				return
			}
			if created {
				mu.Lock()
				creates++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if creates != 1 {
		t.Errorf("Expected exactly one creation, got %d", creates)
	}
}

func TestLedgerRecordReferral(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()

	tests := []struct {
		name       string
		referrer   string
		referred   string
		isNew      bool
		wantRecord bool
	}{
		{name: "self referral", referrer: "10", referred: "10", isNew: true},
		{name: "existing user", referrer: "10", referred: "11", isNew: false},
		{name: "no referrer", referrer: "", referred: "12", isNew: true},
		{name: "new referral", referrer: "10", referred: "13", isNew: true, wantRecord: true},
		{name: "repeated pair", referrer: "10", referred: "13", isNew: true},
		{name: "second referral", referrer: "10", referred: "14", isNew: true, wantRecord: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorded, err := ledger.RecordReferral(ctx, tt.referrer, tt.referred, tt.isNew)
			if err != nil {
				t.Fatalf("RecordReferral failed: %v", err)
			}
			if recorded != tt.wantRecord {
				t.Errorf("RecordReferral() = %v, want %v", recorded, tt.wantRecord)
			}
		})
	}

	stats, err := ledger.GetReferralStats(ctx, "10")
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.ReferredCount != 2 {
		t.Errorf("Expected referred count 2, got %d", stats.ReferredCount)
	}
	if stats.ReferralCode != "10" {
		t.Errorf("Expected referral code 10, got %q", stats.ReferralCode)
	}
	if stats.ReferralEarnings != 0 {
		t.Errorf("Signup must not touch earnings, got %f", stats.ReferralEarnings)
	}

	referred, err := ledger.ListReferredUsers(ctx, "10", 10)
	if err != nil {
		t.Fatalf("Failed to list referred users: %v", err)
	}
	if len(referred) != 2 {
		t.Fatalf("Expected 2 referred users, got %d", len(referred))
	}
	for _, edge := range referred {
		if edge.BonusGiven {
			t.Errorf("Bonus flag should default to false for %s", edge.UserID)
		}
		if edge.JoinedAt.IsZero() {
			t.Errorf("Join time missing for %s", edge.UserID)
		}
	}

	selfStats, err := ledger.GetReferralStats(ctx, "11")
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if selfStats.ReferredCount != 0 {
		t.Errorf("Untouched referrer should have zero count, got %d", selfStats.ReferredCount)
	}
}

func TestLedgerCreditReferralEarnings(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()

	if _, err := ledger.RecordReferral(ctx, "20", "21", true); err != nil {
		t.Fatalf("RecordReferral failed: %v", err)
	}

	total, err := ledger.CreditReferralEarnings(ctx, "20", 2.5)
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if total != 2.5 {
		t.Errorf("Expected total 2.5, got %f", total)
	}

	total, err = ledger.CreditReferralEarnings(ctx, "20", 1)
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if total != 3.5 {
		t.Errorf("Expected total 3.5, got %f", total)
	}

	stats, err := ledger.GetReferralStats(ctx, "20")
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.ReferredCount != 1 {
		t.Errorf("Credit must not change referred count, got %d", stats.ReferredCount)
	}

	for _, amount := range []float64{0, -1} {
		if _, err := ledger.CreditReferralEarnings(ctx, "20", amount); !errors.Is(err, services.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for %f, got %v", amount, err)
		}
	}

	if _, err := ledger.CreditReferralEarnings(ctx, "not-a-user", 1); err == nil {
		t.Error("Expected error for invalid user id")
	}
}

func TestLedgerGetUserNotFound(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ledger := services.NewLedger(redisService)

	if _, err := ledger.GetUser(context.Background(), "999"); !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "10", want: 10},
		{raw: " 0.25 ", want: 0.25},
		{raw: "ten", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "-3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := services.ParseAmount(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %f, want %f", tt.raw, got, tt.want)
		}
	}
}
