package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

// memTxManager serializes every "transaction" behind one mutex, which gives
// unit tests the same effect the row-locked Postgres transaction gives
// production: concurrent issuance/redemption for one entitlement runs one at
// a time.
type memTxManager struct {
	mu sync.Mutex
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, memTxToken{})
}

type memTxToken struct{}

// --- users ---

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) ListByRole(_ context.Context, _ repository.Tx, role model.Role) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUserRepo) CountUsers(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// --- plans ---

type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.LocationPlan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.LocationPlan)}
}

func (m *memPlanRepo) Save(_ context.Context, _ repository.Tx, p *model.LocationPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.LocationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) FindByUserAndLocation(_ context.Context, _ repository.Tx, userID, location string) (*model.LocationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.UserID == userID && p.Location == location {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlanRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.LocationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.LocationPlan
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPlanRepo) DecrementRemaining(_ context.Context, _ repository.Tx, planID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[planID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !p.Active || !p.ExpiresAt.After(time.Now()) {
		return 0, domain.ErrNoActivePlan
	}
	if p.RemainingClaims <= 0 {
		return 0, domain.ErrBalanceExhausted
	}
	p.RemainingClaims--
	return p.RemainingClaims, nil
}

func (m *memPlanRepo) DeactivateExpired(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for _, p := range m.store {
		if p.Active && !p.ExpiresAt.After(now) {
			p.Active = false
			n++
		}
	}
	return n, nil
}

func (m *memPlanRepo) CountActiveByLocation(_ context.Context, _ repository.Tx) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]int{}
	for _, p := range m.store {
		if p.Active {
			out[p.Location]++
		}
	}
	return out, nil
}

// --- claims ---

type memClaimRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Claim // by ID
	users *memUserRepo            // for the derived cafe log
}

func newMemClaimRepo(users *memUserRepo) *memClaimRepo {
	return &memClaimRepo{store: make(map[string]*model.Claim), users: users}
}

func (m *memClaimRepo) Save(_ context.Context, _ repository.Tx, c *model.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Code == c.Code {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memClaimRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (m *memClaimRepo) FindOutstanding(_ context.Context, _ repository.Tx, planID, cafeID string) (*model.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.PlanID == planID && c.CafeID == cafeID && !c.Redeemed {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memClaimRepo) CodeExists(_ context.Context, _ repository.Tx, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memClaimRepo) MarkRedeemed(_ context.Context, _ repository.Tx, claimID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[claimID]
	if !ok {
		return domain.ErrCodeNotFound
	}
	if c.Redeemed {
		return domain.ErrAlreadyRedeemed
	}
	now := time.Now()
	c.Redeemed = true
	c.RedeemedAt = &now
	return nil
}

func (m *memClaimRepo) ListByPlan(_ context.Context, _ repository.Tx, planID string) ([]*model.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Claim
	for _, c := range m.store {
		if c.PlanID == planID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memClaimRepo) ListByCafe(ctx context.Context, tx repository.Tx, cafeID string) ([]*model.RedemptionLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.RedemptionLogEntry
	for _, c := range m.store {
		if c.CafeID != cafeID {
			continue
		}
		entry := &model.RedemptionLogEntry{
			UserID:   c.UserID,
			Code:     c.Code,
			IssuedAt: c.IssuedAt,
			Redeemed: c.Redeemed,
		}
		if u, err := m.users.FindByID(ctx, tx, c.UserID); err == nil {
			entry.UserName = u.Name
			entry.UserEmail = u.Email
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *memClaimRepo) DeleteByPlan(_ context.Context, _ repository.Tx, planID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.store {
		if c.PlanID == planID {
			delete(m.store, id)
		}
	}
	return nil
}

// --- cafes ---

type memCafeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Cafe
}

func newMemCafeRepo() *memCafeRepo {
	return &memCafeRepo{store: make(map[string]*model.Cafe)}
}

func (m *memCafeRepo) Save(_ context.Context, _ repository.Tx, c *model.Cafe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCafeRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Cafe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCafeRepo) List(_ context.Context, _ repository.Tx) ([]*model.Cafe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Cafe, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCafeRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// --- referral codes ---

type memReferralRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ReferralCode
}

func newMemReferralRepo() *memReferralRepo {
	return &memReferralRepo{store: make(map[string]*model.ReferralCode)}
}

func (m *memReferralRepo) Save(_ context.Context, _ repository.Tx, rc *model.ReferralCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rc
	m.store[rc.ID] = &cp
	return nil
}

func (m *memReferralRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.ReferralCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rc := range m.store {
		if rc.Code == strings.ToUpper(code) {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memReferralRepo) IncrementUsage(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rc.UsageCount >= rc.MaxUsage {
		return domain.ErrCodeExhausted
	}
	rc.UsageCount++
	return nil
}

func (m *memReferralRepo) List(_ context.Context, _ repository.Tx) ([]*model.ReferralCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ReferralCode, 0, len(m.store))
	for _, rc := range m.store {
		cp := *rc
		out = append(out, &cp)
	}
	return out, nil
}

// --- payments ---

type memPaymentRepo struct {
	mu    sync.RWMutex
	store []*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (m *memPaymentRepo) Save(_ context.Context, _ repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store = append(m.store, &cp)
	return nil
}

func (m *memPaymentRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) SumByPeriod(_ context.Context, _ repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cutoff time.Time
	now := time.Now()
	switch period {
	case "week":
		cutoff = now.AddDate(0, 0, -7)
	case "month":
		cutoff = now.AddDate(0, -1, 0)
	default:
		cutoff = now.AddDate(-1, 0, 0)
	}
	var sum int64
	for _, p := range m.store {
		if p.CreatedAt.After(cutoff) {
			sum += p.Amount
		}
	}
	return sum, nil
}

// --- events ---

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Subject string
	Payload interface{}
}

func (m *memPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{Subject: subject, Payload: payload})
	return nil
}

func (m *memPublisher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedEvent, len(m.events))
	copy(out, m.events)
	return out
}
