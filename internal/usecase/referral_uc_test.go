package usecase

import (
	"context"
	"errors"
	"testing"

	"cafe-passport/internal/domain"
)

func TestReferral_CreateAndVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewReferralUseCase(newMemReferralRepo())

	rc, err := uc.Create(ctx, "welcome", 100, 2)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rc.Code != "WELCOME" {
		t.Fatalf("codes are stored upper-case, got %q", rc.Code)
	}

	// Lookup is case-insensitive on the caller side.
	discount, err := uc.Verify(ctx, "Welcome")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if discount != 100 {
		t.Fatalf("expected discount 100, got %d", discount)
	}
}

func TestReferral_DuplicateCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewReferralUseCase(newMemReferralRepo())
	if _, err := uc.Create(ctx, "WELCOME", 100, 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uc.Create(ctx, "welcome", 50, 1); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestReferral_UsageCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemReferralRepo()
	uc := NewReferralUseCase(repo)
	rc, err := uc.Create(ctx, "WELCOME", 100, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.IncrementUsage(ctx, nil, rc.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := uc.Verify(ctx, "WELCOME"); !errors.Is(err, domain.ErrCodeExhausted) {
		t.Fatalf("expected ErrCodeExhausted, got %v", err)
	}
	if err := repo.IncrementUsage(ctx, nil, rc.ID); !errors.Is(err, domain.ErrCodeExhausted) {
		t.Fatalf("expected ErrCodeExhausted on over-increment, got %v", err)
	}
}

func TestReferral_UnknownCode(t *testing.T) {
	t.Parallel()

	uc := NewReferralUseCase(newMemReferralRepo())
	if _, err := uc.Verify(context.Background(), "NOPE"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
