package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain/model"
)

type fixture struct {
	users     *memUserRepo
	plans     *memPlanRepo
	claims    *memClaimRepo
	cafes     *memCafeRepo
	referrals *memReferralRepo
	payments  *memPaymentRepo
	tm        *memTxManager
	pub       *memPublisher

	entitlements EntitlementUseCase
	issuer       ClaimUseCase
	redeemer     RedeemUseCase
}

func newFixture() *fixture {
	log := zerolog.Nop()
	f := &fixture{
		users:     newMemUserRepo(),
		plans:     newMemPlanRepo(),
		cafes:     newMemCafeRepo(),
		referrals: newMemReferralRepo(),
		payments:  newMemPaymentRepo(),
		tm:        &memTxManager{},
		pub:       &memPublisher{},
	}
	f.claims = newMemClaimRepo(f.users)
	f.entitlements = NewEntitlementUseCase(f.users, f.plans, f.claims, f.payments, f.referrals, f.tm, "razorpay", &log)
	f.issuer = NewClaimUseCase(f.cafes, f.plans, f.claims, f.tm, &log)
	f.redeemer = NewRedeemUseCase(f.users, f.cafes, f.claims, f.tm, f.pub, &log)
	return f
}

func (f *fixture) seedUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u, err := model.NewUser(uuid.NewString(), name, name+"@example.com", "", role)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := f.users.Save(context.Background(), nil, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func (f *fixture) seedCafe(t *testing.T, name, location, ownerID string) *model.Cafe {
	t.Helper()
	c, err := model.NewCafe(uuid.NewString(), name, "1 High Street", location, "", ownerID)
	if err != nil {
		t.Fatalf("new cafe: %v", err)
	}
	if err := f.cafes.Save(context.Background(), nil, c); err != nil {
		t.Fatalf("save cafe: %v", err)
	}
	return c
}

func (f *fixture) seedPlan(t *testing.T, userID, location string) *model.LocationPlan {
	t.Helper()
	p, err := model.NewLocationPlan(uuid.NewString(), userID, location, "order-1", time.Now())
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	if err := f.plans.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	return p
}
