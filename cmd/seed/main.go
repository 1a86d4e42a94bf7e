package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cafe-passport/internal/config"
	"cafe-passport/internal/domain/model"
	pg "cafe-passport/internal/infra/db/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  phone         TEXT NOT NULL DEFAULT '',
  role          TEXT NOT NULL DEFAULT 'user',
  referral_name TEXT NOT NULL DEFAULT '',
  coupon_stage  TEXT NOT NULL DEFAULT 'none',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cafes (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  address    TEXT NOT NULL,
  location   TEXT NOT NULL,
  created_by TEXT NOT NULL DEFAULT '',
  owner_id   TEXT NOT NULL REFERENCES users(id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS location_plans (
  id               TEXT PRIMARY KEY,
  user_id          TEXT NOT NULL REFERENCES users(id),
  location         TEXT NOT NULL,
  active           BOOLEAN NOT NULL DEFAULT TRUE,
  order_id         TEXT NOT NULL DEFAULT '',
  purchased_at     TIMESTAMPTZ NOT NULL,
  expires_at       TIMESTAMPTZ NOT NULL,
  remaining_claims INT NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, location)
);

CREATE TABLE IF NOT EXISTS claims (
  id          TEXT PRIMARY KEY,
  plan_id     TEXT NOT NULL REFERENCES location_plans(id) ON DELETE CASCADE,
  user_id     TEXT NOT NULL REFERENCES users(id),
  cafe_id     TEXT NOT NULL,
  code        TEXT NOT NULL UNIQUE,
  issued_at   TIMESTAMPTZ NOT NULL,
  redeemed    BOOLEAN NOT NULL DEFAULT FALSE,
  redeemed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS claims_cafe_idx ON claims (cafe_id);
CREATE INDEX IF NOT EXISTS claims_plan_idx ON claims (plan_id);

CREATE TABLE IF NOT EXISTS referral_codes (
  id              TEXT PRIMARY KEY,
  code            TEXT NOT NULL UNIQUE,
  discount_amount BIGINT NOT NULL,
  max_usage       INT NOT NULL,
  usage_count     INT NOT NULL DEFAULT 0,
  active          BOOLEAN NOT NULL DEFAULT TRUE,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS payments (
  id         TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL REFERENCES users(id),
  location   TEXT NOT NULL,
  provider   TEXT NOT NULL,
  order_id   TEXT NOT NULL,
  payment_id TEXT NOT NULL,
  amount     BIGINT NOT NULL,
  status     TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	userRepo := pg.NewPostgresUserRepo(pool)
	cafeRepo := pg.NewPostgresCafeRepo(pool)

	// If users already exist, do nothing.
	n, err := userRepo.CountUsers(ctx, nil)
	if err != nil {
		log.Fatalf("count users: %v", err)
	}
	if n > 0 {
		fmt.Printf("%d users already present. No changes.\n", n)
		return
	}

	seedUsers := []struct {
		Name     string
		Email    string
		Password string
		Role     model.Role
	}{
		{"Admin", "admin@example.com", "admin123", model.RoleAdmin},
		{"Asha", "asha@example.com", "user123", model.RoleUser},
		{"Corner Brew Owner", "corner@example.com", "cafe123", model.RoleCafe},
		{"Beanstalk Owner", "beanstalk@example.com", "cafe123", model.RoleCafe},
	}

	ids := map[string]string{}
	for _, s := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		u, err := model.NewUser(uuid.NewString(), s.Name, s.Email, string(hash), s.Role)
		if err != nil {
			log.Fatalf("new user %q: %v", s.Email, err)
		}
		if err := userRepo.Save(ctx, nil, u); err != nil {
			log.Fatalf("save user %q: %v", s.Email, err)
		}
		ids[s.Email] = u.ID
		fmt.Printf("seeded user: %s (%s, role=%s)\n", s.Name, s.Email, s.Role)
	}

	seedCafes := []struct {
		Name     string
		Address  string
		Location string
		Owner    string
	}{
		{"Corner Brew", "12 FC Road", "pune", "corner@example.com"},
		{"Beanstalk", "4 MG Road", "bangalore", "beanstalk@example.com"},
	}
	for _, s := range seedCafes {
		c, err := model.NewCafe(uuid.NewString(), s.Name, s.Address, s.Location, ids["admin@example.com"], ids[s.Owner])
		if err != nil {
			log.Fatalf("new cafe %q: %v", s.Name, err)
		}
		if err := cafeRepo.Save(ctx, nil, c); err != nil {
			log.Fatalf("save cafe %q: %v", s.Name, err)
		}
		fmt.Printf("seeded cafe: %s (%s)\n", s.Name, s.Location)
	}

	fmt.Println("Seeding complete.")
}
