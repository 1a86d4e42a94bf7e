package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
)

func TestClaimIssue_HappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)
	f.seedPlan(t, user.ID, "pune")

	code, remaining, err := f.issuer.Issue(ctx, user.ID, cafe.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if code == "" {
		t.Fatalf("expected a claim code")
	}
	if remaining != model.ClaimAllowance-1 {
		t.Fatalf("expected remaining %d, got %d", model.ClaimAllowance-1, remaining)
	}

	claim, err := f.claims.FindByCode(ctx, nil, code)
	if err != nil {
		t.Fatalf("claim not recorded: %v", err)
	}
	if claim.Redeemed {
		t.Fatalf("fresh claim must not be redeemed")
	}
	if claim.CafeID != cafe.ID || claim.UserID != user.ID {
		t.Fatalf("claim recorded against wrong parties: %+v", claim)
	}
}

func TestClaimIssue_NoPlan(t *testing.T) {
	t.Parallel()

	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)

	_, _, err := f.issuer.Issue(context.Background(), user.ID, cafe.ID)
	if !errors.Is(err, domain.ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
}

func TestClaimIssue_ExpiryDominatesBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)

	// Expired window but five claims left: expiry wins.
	plan := f.seedPlan(t, user.ID, "pune")
	plan.ExpiresAt = time.Now().Add(-time.Hour)
	plan.RemainingClaims = 5
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	_, _, err := f.issuer.Issue(ctx, user.ID, cafe.ID)
	if !errors.Is(err, domain.ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan for expired plan, got %v", err)
	}
}

func TestClaimIssue_InactivePlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)
	plan := f.seedPlan(t, user.ID, "pune")
	plan.Active = false
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	_, _, err := f.issuer.Issue(ctx, user.ID, cafe.ID)
	if !errors.Is(err, domain.ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan for inactive plan, got %v", err)
	}
}

func TestClaimIssue_BalanceExhausted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)
	plan := f.seedPlan(t, user.ID, "pune")
	plan.RemainingClaims = 0
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	_, _, err := f.issuer.Issue(ctx, user.ID, cafe.ID)
	if !errors.Is(err, domain.ErrBalanceExhausted) {
		t.Fatalf("expected ErrBalanceExhausted, got %v", err)
	}
}

func TestClaimIssue_CafeNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)

	_, _, err := f.issuer.Issue(context.Background(), user.ID, "no-such-cafe")
	if !errors.Is(err, domain.ErrCafeNotFound) {
		t.Fatalf("expected ErrCafeNotFound, got %v", err)
	}
}

func TestClaimIssue_DuplicateOutstanding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafe := f.seedCafe(t, "Corner Brew", "pune", owner.ID)
	f.seedPlan(t, user.ID, "pune")

	code, _, err := f.issuer.Issue(ctx, user.ID, cafe.ID)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}

	// Reissuing while one QR is outstanding is rejected and does not touch
	// the balance.
	_, _, err = f.issuer.Issue(ctx, user.ID, cafe.ID)
	if !errors.Is(err, domain.ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}
	plan, _ := f.plans.FindByUserAndLocation(ctx, nil, user.ID, "pune")
	if plan.RemainingClaims != model.ClaimAllowance-1 {
		t.Fatalf("duplicate attempt changed balance: %d", plan.RemainingClaims)
	}

	// Once redeemed, the same cafe can be claimed again.
	if _, err := f.redeemer.Redeem(ctx, code, owner.ID); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, _, err := f.issuer.Issue(ctx, user.ID, cafe.ID); err != nil {
		t.Fatalf("issue after redemption: %v", err)
	}
}

func TestClaimIssue_ConcurrentNoOverdraw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	f.seedPlan(t, user.ID, "pune")

	// Distinct cafes so the duplicate-claim policy never interferes; only
	// the balance limits the outcome.
	const attempts = 25
	cafeIDs := make([]string, attempts)
	for i := range cafeIDs {
		cafeIDs[i] = f.seedCafe(t, fmt.Sprintf("cafe-%d", i), "pune", owner.ID).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	codes := make([]string, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _, errs[i] = f.issuer.Issue(ctx, user.ID, cafeIDs[i])
		}(i)
	}
	wg.Wait()

	succeeded, exhausted := 0, 0
	seen := map[string]bool{}
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
			if seen[codes[i]] {
				t.Fatalf("duplicate claim code issued: %s", codes[i])
			}
			seen[codes[i]] = true
		case errors.Is(err, domain.ErrBalanceExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if succeeded != model.ClaimAllowance {
		t.Fatalf("expected exactly %d successful issuances, got %d", model.ClaimAllowance, succeeded)
	}
	if exhausted != attempts-model.ClaimAllowance {
		t.Fatalf("expected %d exhausted, got %d", attempts-model.ClaimAllowance, exhausted)
	}

	plan, _ := f.plans.FindByUserAndLocation(ctx, nil, user.ID, "pune")
	if plan.RemainingClaims != 0 {
		t.Fatalf("balance must end at exactly zero, got %d", plan.RemainingClaims)
	}
}

func TestClaimIssue_LastClaimRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	user := f.seedUser(t, "asha", model.RoleUser)
	owner := f.seedUser(t, "owner", model.RoleCafe)
	cafeA := f.seedCafe(t, "Cafe A", "pune", owner.ID)
	cafeB := f.seedCafe(t, "Cafe B", "pune", owner.ID)
	plan := f.seedPlan(t, user.ID, "pune")
	plan.RemainingClaims = 1
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, cafeID := range []string{cafeA.ID, cafeB.ID} {
		wg.Add(1)
		go func(i int, cafeID string) {
			defer wg.Done()
			_, _, results[i] = f.issuer.Issue(ctx, user.ID, cafeID)
		}(i, cafeID)
	}
	wg.Wait()

	ok, exhausted := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrBalanceExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exhausted != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d exhausted=%d", ok, exhausted)
	}
}
