package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
	"github.com/edvin/buildcrm/internal/platform"
)

// Session is a resolved request identity: the principal carried by the
// token plus the live state of its tenant (nil for platform principals).
type Session struct {
	Principal *model.Principal
	Tenant    *model.Tenant
}

// IdentityService issues and resolves bearer tokens.
type IdentityService struct {
	db           DB
	tenants      *TenantService
	entitlements *EntitlementService
	events       Publisher
	secret       []byte
	issuer       string
	ttl          time.Duration
	now          func() time.Time
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(db DB, tenants *TenantService, entitlements *EntitlementService, events Publisher, secret, issuer string, ttl time.Duration) *IdentityService {
	return &IdentityService{
		db:           db,
		tenants:      tenants,
		entitlements: entitlements,
		events:       events,
		secret:       []byte(secret),
		issuer:       issuer,
		ttl:          ttl,
		now:          time.Now,
	}
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token  string
	User   *model.User
	Tenant *model.Tenant
}

// Login verifies email and password and issues a token. Logging in to a
// paused tenant succeeds; its calls are rejected by the guard instead.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, unauthenticated("Invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	res := &AuthResult{Token: token, User: user}
	if user.TenantID != nil {
		t, err := s.tenants.Get(ctx, *user.TenantID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		res.Tenant = t
	}
	return res, nil
}

// RegisterParams describes a new tenant sign-up.
type RegisterParams struct {
	BusinessName string
	Email        string
	Password     string
	Phone        string
	PlanID       string
}

// Register creates a tenant and its owner account in one statement and
// returns a token for the owner.
func (s *IdentityService) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	p.BusinessName = strings.TrimSpace(p.BusinessName)
	p.Email = strings.TrimSpace(p.Email)
	if p.BusinessName == "" || p.Email == "" || p.Password == "" {
		return nil, validation("Business name, email and password are required")
	}
	if p.PlanID == "" {
		p.PlanID = "basic"
	}

	if _, err := s.entitlements.Plan(ctx, p.PlanID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, validation("unknown plan %q", p.PlanID)
		}
		return nil, err
	}

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, p.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, validation("Email already registered")
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	tenantID := platform.NewID()
	user := &model.User{
		ID:           platform.NewID(),
		TenantID:     &tenantID,
		Email:        p.Email,
		PasswordHash: hash,
		Name:         p.BusinessName,
		Role:         model.RoleClientOwner,
	}

	tenant, err := scanTenantAndUserTimes(s.db.QueryRow(ctx,
		`WITH t AS (
			INSERT INTO tenants (id, business_name, email, phone, plan_id, subscription_end_date)
			VALUES ($1, $2, $3, $4, $5, now() + interval '30 days')
			RETURNING `+tenantColumns+`
		), u AS (
			INSERT INTO users (id, tenant_id, email, password_hash, name, role)
			SELECT $6, t.id, $3, $7, $2, 'client_owner' FROM t
			RETURNING created_at, updated_at
		)
		SELECT t.*, u.created_at, u.updated_at FROM t, u`,
		tenantID, p.BusinessName, p.Email, p.Phone, p.PlanID, user.ID, hash,
	), user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, validation("Email already registered")
		}
		return nil, fmt.Errorf("register tenant: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.TenantRegistered, map[string]any{
		"clientId": tenant.ID,
		"planId":   tenant.PlanID,
	})
	return &AuthResult{Token: token, User: user, Tenant: tenant}, nil
}

func scanTenantAndUserTimes(row pgx.Row, user *model.User) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.BusinessName, &t.Email, &t.Phone, &t.PlanID, &t.Active,
		&t.SubscriptionStartDate, &t.SubscriptionEndDate, &t.CreatedAt, &t.UpdatedAt,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IssueToken creates a signed HS256 JWT for the given user.
func (s *IdentityService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := model.JWTClaims{
		Role:     user.Role,
		TenantID: user.TenantID,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates a token and returns the principal it carries. It
// does not touch the database.
func (s *IdentityService) ParseToken(tokenStr string) (*model.Principal, error) {
	var claims model.JWTClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, &Error{Kind: ErrUnauthenticated, Message: "token expired", Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Message: "invalid token", Err: err}
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, unauthenticated("invalid token")
	}
	hasTenant := claims.TenantID != nil && *claims.TenantID != ""
	if (claims.Role == model.RoleSuperAdmin) == hasTenant {
		return nil, unauthenticated("invalid token")
	}

	return &model.Principal{
		ID:       claims.Subject,
		Role:     claims.Role,
		TenantID: claims.TenantID,
		Email:    claims.Email,
	}, nil
}

// Resolve trusts the token for identity and re-reads only the volatile
// tenant fields (active, plan) from the database.
func (s *IdentityService) Resolve(ctx context.Context, tokenStr string) (*Session, error) {
	p, err := s.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if p.TenantID == nil {
		return &Session{Principal: p}, nil
	}

	t, err := s.tenants.Get(ctx, *p.TenantID)
	if errors.Is(err, ErrNotFound) {
		return nil, unauthenticated("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return &Session{Principal: p, Tenant: t}, nil
}

// Me returns the stored user behind a principal and its tenant.
func (s *IdentityService) Me(ctx context.Context, session *Session) (*model.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, session.Principal.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", session.Principal.ID, err)
	}
	return user, nil
}

// SeedSuperAdmin creates the platform administrator if no account with
// that email exists yet.
func (s *IdentityService) SeedSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO users (id, tenant_id, email, password_hash, name, role)
		 VALUES ($1, NULL, $2, $3, 'Super Admin', 'super_admin')
		 ON CONFLICT (email) DO NOTHING`,
		platform.NewID(), email, hash)
	if err != nil {
		return false, fmt.Errorf("seed super admin: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
