package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/infra/logging"
	"cafe-passport/internal/infra/metrics"
	red "cafe-passport/internal/infra/redis"
)

// ===== Views =====

type userView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toUserView(u *model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type planView struct {
	ID              string    `json:"id"`
	Location        string    `json:"location"`
	Active          bool      `json:"active"`
	ExpiresAt       time.Time `json:"expires_at"`
	RemainingClaims int       `json:"remaining_claims"`
	Usable          bool      `json:"usable"`
}

func toPlanView(p *model.LocationPlan, now time.Time) planView {
	return planView{
		ID:              p.ID,
		Location:        p.Location,
		Active:          p.Active,
		ExpiresAt:       p.ExpiresAt,
		RemainingClaims: p.RemainingClaims,
		Usable:          p.IsUsable(now),
	}
}

type cafeView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Location string `json:"location"`
	OwnerID  string `json:"owner_id,omitempty"`
}

func toCafeView(c *model.Cafe) cafeView {
	return cafeView{ID: c.ID, Name: c.Name, Address: c.Address, Location: c.Location, OwnerID: c.OwnerID}
}

// ===== Auth =====

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	user, err := s.userUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(user.ID, user.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string   `json:"token"`
		User  userView `json:"user"`
	}{Token: token, User: toUserView(user)})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	user, plans, err := s.userUC.Current(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, toPlanView(p, now))
	}
	writeJSON(w, http.StatusOK, struct {
		User  userView   `json:"user"`
		Plans []planView `json:"plans"`
	}{User: toUserView(user), Plans: views})
}

// ===== Cafes =====

type cafeUpsertRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Location string `json:"location"`
	OwnerID  string `json:"owner_id"`
}

func (s *Server) listCafes(w http.ResponseWriter, r *http.Request) {
	cafes, err := s.cafeUC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]cafeView, 0, len(cafes))
	for _, c := range cafes {
		views = append(views, toCafeView(c))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []cafeView `json:"data"`
	}{Data: views})
}

func (s *Server) getCafe(w http.ResponseWriter, r *http.Request) {
	cafe, err := s.cafeUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCafeView(cafe))
}

func (s *Server) createCafe(w http.ResponseWriter, r *http.Request) {
	var req cafeUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	id, _ := identityFrom(r.Context())
	cafe, err := s.cafeUC.Create(r.Context(), req.Name, req.Address, req.Location, id.UserID, req.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCafeView(cafe))
}

func (s *Server) updateCafe(w http.ResponseWriter, r *http.Request) {
	var req cafeUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	cafe, err := s.cafeUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Address, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCafeView(cafe))
}

func (s *Server) deleteCafe(w http.ResponseWriter, r *http.Request) {
	if err := s.cafeUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) redemptionLog(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	cafeID := chi.URLParam(r, "id")
	ctx := logging.WithCafeID(r.Context(), cafeID)
	log, err := s.cafeUC.RedemptionLog(ctx, cafeID, id.UserID, id.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.RedemptionLogEntry `json:"data"`
	}{Data: log})
}

// ===== Claims =====

type claimRequest struct {
	CafeID string `json:"cafe_id"`
}

func (s *Server) issueClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	id, _ := identityFrom(r.Context())

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.ClaimIssueKey(id.UserID), s.claimRate, time.Minute)
		if err != nil {
			// Redis being down must not take issuance with it.
			s.log.Warn().Err(err).Msg("claim rate limiter unavailable")
		} else if !ok {
			metrics.IncClaimIssued("rate_limited")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many claim requests"})
			return
		}
	}

	code, remaining, err := s.claimUC.Issue(r.Context(), id.UserID, req.CafeID)
	if err != nil {
		metrics.IncClaimIssued(claimResult(err))
		writeError(w, err)
		return
	}
	metrics.IncClaimIssued("issued")
	writeJSON(w, http.StatusCreated, struct {
		Code      string `json:"code"`
		Remaining int    `json:"remaining"`
	}{Code: code, Remaining: remaining})
}

func claimResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoActivePlan):
		return "no_plan"
	case errors.Is(err, domain.ErrBalanceExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrDuplicateClaim):
		return "duplicate"
	case errors.Is(err, domain.ErrCafeNotFound):
		return "cafe_not_found"
	default:
		return "error"
	}
}

func (s *Server) redeemClaim(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	res, err := s.redeemUC.Redeem(r.Context(), chi.URLParam(r, "code"), id.UserID)
	if err != nil {
		metrics.IncRedemption(redeemResult(err))
		writeError(w, err)
		return
	}
	metrics.IncRedemption("redeemed")
	writeJSON(w, http.StatusOK, struct {
		CafeID   string           `json:"cafe_id"`
		CafeName string           `json:"cafe_name"`
		User     model.PublicInfo `json:"user"`
		IssuedAt time.Time        `json:"issued_at"`
	}{CafeID: res.CafeID, CafeName: res.CafeName, User: res.User, IssuedAt: res.IssuedAt})
}

func redeemResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}

// ===== Referral codes =====

type referralCreateRequest struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
	MaxUsage       int    `json:"max_usage"`
}

func (s *Server) createReferral(w http.ResponseWriter, r *http.Request) {
	var req referralCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	rc, err := s.referralUC.Create(r.Context(), req.Code, req.DiscountAmount, req.MaxUsage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, referralView(rc))
}

func (s *Server) listReferrals(w http.ResponseWriter, r *http.Request) {
	codes, err := s.referralUC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]map[string]interface{}, 0, len(codes))
	for _, rc := range codes {
		views = append(views, referralView(rc))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []map[string]interface{} `json:"data"`
	}{Data: views})
}

func referralView(rc *model.ReferralCode) map[string]interface{} {
	return map[string]interface{}{
		"id":              rc.ID,
		"code":            rc.Code,
		"discount_amount": rc.DiscountAmount,
		"max_usage":       rc.MaxUsage,
		"usage_count":     rc.UsageCount,
		"active":          rc.Active,
	}
}

func (s *Server) verifyReferral(w http.ResponseWriter, r *http.Request) {
	discount, err := s.referralUC.Verify(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Valid          bool  `json:"valid"`
		DiscountAmount int64 `json:"discount_amount"`
	}{Valid: true, DiscountAmount: discount})
}

// ===== Payments =====

type paymentCallbackRequest struct {
	UserID    string `json:"user_id"`
	Location  string `json:"location"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	Amount    int64  `json:"amount"`
	Referral  string `json:"referral,omitempty"`
	Coupon    string `json:"coupon,omitempty"`
}

func (s *Server) paymentCallback(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	notice := adapter.SettlementNotice{
		UserID:    req.UserID,
		Location:  req.Location,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Amount:    req.Amount,
		Referral:  req.Referral,
		Coupon:    req.Coupon,
	}

	if err := s.gateway.VerifyNotice(r.Context(), notice); err != nil {
		metrics.IncPayment("rejected")
		writeError(w, err)
		return
	}

	plan, err := s.entUC.Settle(r.Context(), notice)
	if err != nil {
		metrics.IncPayment("failed")
		writeError(w, err)
		return
	}
	metrics.IncPayment("settled")
	metrics.AddPaymentRevenue(req.Location, req.Amount)
	writeJSON(w, http.StatusOK, toPlanView(plan, time.Now()))
}

// ===== Admin =====

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = model.RoleUser
	}
	users, err := s.userUC.ListByRole(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []userView `json:"data"`
	}{Data: views})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	users, activeByLocation, err := s.statsUC.Totals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	week, month, year, err := s.statsUC.Revenue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TotalUsers            int            `json:"total_users"`
		ActivePlansByLocation map[string]int `json:"active_plans_by_location"`
		Revenue               struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue"`
	}{
		TotalUsers:            users,
		ActivePlansByLocation: activeByLocation,
		Revenue: struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		}{Week: week, Month: month, Year: year},
	})
}
