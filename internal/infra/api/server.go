package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/infra/relay"
	red "cafe-passport/internal/infra/redis"
	"cafe-passport/internal/usecase"
)

type Server struct {
	userUC     usecase.UserUseCase
	entUC      usecase.EntitlementUseCase
	claimUC    usecase.ClaimUseCase
	redeemUC   usecase.RedeemUseCase
	cafeUC     usecase.CafeUseCase
	referralUC usecase.ReferralUseCase
	statsUC    usecase.StatsUseCase
	gateway    adapter.PaymentGateway
	auth       *AuthManager
	hub        *relay.Hub
	limiter    *red.RateLimiter
	claimRate  int           // claims per user per minute
	reqTimeout time.Duration // per-request deadline, SSE excepted
	log        *zerolog.Logger
}

func NewServer(
	userUC usecase.UserUseCase,
	entUC usecase.EntitlementUseCase,
	claimUC usecase.ClaimUseCase,
	redeemUC usecase.RedeemUseCase,
	cafeUC usecase.CafeUseCase,
	referralUC usecase.ReferralUseCase,
	statsUC usecase.StatsUseCase,
	gateway adapter.PaymentGateway,
	auth *AuthManager,
	hub *relay.Hub,
	limiter *red.RateLimiter,
	claimRate int,
	reqTimeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		userUC:     userUC,
		entUC:      entUC,
		claimUC:    claimUC,
		redeemUC:   redeemUC,
		cafeUC:     cafeUC,
		referralUC: referralUC,
		statsUC:    statsUC,
		gateway:    gateway,
		auth:       auth,
		hub:        hub,
		limiter:    limiter,
		claimRate:  claimRate,
		reqTimeout: reqTimeout,
		log:        &l,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		// The SSE stream lives outside the request deadline; everything else
		// runs in the timed group below. Routes come first here, so the group
		// is the only place the deadline middleware may attach.
		r.With(s.auth.RequireAuth).Get("/events", s.events)

		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.reqTimeout))
			r.Post("/auth/login", s.login)
			// Provider callback authenticates by signature, not session.
			r.Post("/payments/callback", s.paymentCallback)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAuth)

				r.Get("/me", s.me)
				r.Get("/cafes", s.listCafes)
				r.Get("/cafes/{id}", s.getCafe)
				r.Get("/cafes/{id}/redemptions", s.redemptionLog)
				r.Get("/referral-codes/{code}/verify", s.verifyReferral)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(model.RoleUser))
					r.Post("/claims", s.issueClaim)
				})

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(model.RoleCafe, model.RoleAdmin))
					r.Get("/claims/{code}/verify", s.redeemClaim)
					r.Post("/claims/{code}/verify", s.redeemClaim)
				})

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(model.RoleAdmin))
					r.Post("/cafes", s.createCafe)
					r.Put("/cafes/{id}", s.updateCafe)
					r.Delete("/cafes/{id}", s.deleteCafe)
					r.Get("/referral-codes", s.listReferrals)
					r.Post("/referral-codes", s.createReferral)
					r.Get("/users", s.listUsers)
					r.Get("/stats", s.stats)
				})
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
