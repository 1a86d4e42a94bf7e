package api

import (
	"context"
	"time"

	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/usecase"
)

// Function-backed stubs so each test overrides only what it exercises.

type stubUserUC struct {
	login   func(ctx context.Context, email, password string) (*model.User, error)
	current func(ctx context.Context, userID string) (*model.User, []*model.LocationPlan, error)
	byRole  func(ctx context.Context, role model.Role) ([]*model.User, error)
}

var _ usecase.UserUseCase = (*stubUserUC)(nil)

func (s *stubUserUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	return s.login(ctx, email, password)
}

func (s *stubUserUC) Current(ctx context.Context, userID string) (*model.User, []*model.LocationPlan, error) {
	return s.current(ctx, userID)
}

func (s *stubUserUC) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	return s.byRole(ctx, role)
}

type stubEntitlementUC struct {
	settle func(ctx context.Context, n adapter.SettlementNotice) (*model.LocationPlan, error)
}

var _ usecase.EntitlementUseCase = (*stubEntitlementUC)(nil)

func (s *stubEntitlementUC) Settle(ctx context.Context, n adapter.SettlementNotice) (*model.LocationPlan, error) {
	return s.settle(ctx, n)
}

func (s *stubEntitlementUC) PlansForUser(context.Context, string) ([]*model.LocationPlan, error) {
	return nil, nil
}

type stubClaimUC struct {
	issue func(ctx context.Context, userID, cafeID string) (string, int, error)
}

var _ usecase.ClaimUseCase = (*stubClaimUC)(nil)

func (s *stubClaimUC) Issue(ctx context.Context, userID, cafeID string) (string, int, error) {
	return s.issue(ctx, userID, cafeID)
}

type stubRedeemUC struct {
	redeem func(ctx context.Context, code, actorID string) (*usecase.Redemption, error)
}

var _ usecase.RedeemUseCase = (*stubRedeemUC)(nil)

func (s *stubRedeemUC) Redeem(ctx context.Context, code, actorID string) (*usecase.Redemption, error) {
	return s.redeem(ctx, code, actorID)
}

type stubCafeUC struct {
	list func(ctx context.Context) ([]*model.Cafe, error)
	get  func(ctx context.Context, id string) (*model.Cafe, error)
	log  func(ctx context.Context, cafeID, actorID string, actorRole model.Role) ([]*model.RedemptionLogEntry, error)
}

var _ usecase.CafeUseCase = (*stubCafeUC)(nil)

func (s *stubCafeUC) Create(ctx context.Context, name, address, location, createdBy, ownerID string) (*model.Cafe, error) {
	return model.NewCafe("cafe-new", name, address, location, createdBy, ownerID)
}

func (s *stubCafeUC) Update(context.Context, string, string, string, string) (*model.Cafe, error) {
	return nil, nil
}

func (s *stubCafeUC) Delete(context.Context, string) error { return nil }

func (s *stubCafeUC) Get(ctx context.Context, id string) (*model.Cafe, error) {
	return s.get(ctx, id)
}

func (s *stubCafeUC) List(ctx context.Context) ([]*model.Cafe, error) { return s.list(ctx) }

func (s *stubCafeUC) RedemptionLog(ctx context.Context, cafeID, actorID string, actorRole model.Role) ([]*model.RedemptionLogEntry, error) {
	return s.log(ctx, cafeID, actorID, actorRole)
}

type stubReferralUC struct {
	verify func(ctx context.Context, code string) (int64, error)
}

var _ usecase.ReferralUseCase = (*stubReferralUC)(nil)

func (s *stubReferralUC) Create(context.Context, string, int64, int) (*model.ReferralCode, error) {
	return nil, nil
}

func (s *stubReferralUC) Verify(ctx context.Context, code string) (int64, error) {
	return s.verify(ctx, code)
}

func (s *stubReferralUC) List(context.Context) ([]*model.ReferralCode, error) { return nil, nil }

type stubStatsUC struct{}

var _ usecase.StatsUseCase = (*stubStatsUC)(nil)

func (*stubStatsUC) Totals(context.Context) (int, map[string]int, error) {
	return 3, map[string]int{"pune": 2}, nil
}

func (*stubStatsUC) Revenue(context.Context) (int64, int64, int64, error) {
	return 100, 400, 4800, nil
}

type stubGateway struct {
	verify func(ctx context.Context, n adapter.SettlementNotice) error
}

var _ adapter.PaymentGateway = (*stubGateway)(nil)

func (*stubGateway) Name() string { return "stub" }

func (s *stubGateway) VerifyNotice(ctx context.Context, n adapter.SettlementNotice) error {
	return s.verify(ctx, n)
}

func testPlan(userID, location string) *model.LocationPlan {
	p, _ := model.NewLocationPlan("plan-1", userID, location, "order-1", time.Now())
	return p
}
