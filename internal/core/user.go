package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/buildcrm/internal/model"
	"github.com/edvin/buildcrm/internal/platform"
)

// UserService manages the users of a tenant. Every query is keyed by the
// tenant ID so a caller can never reach another tenant's users.
type UserService struct {
	db    DB
	plans TenantPlans
}

// TenantPlans resolves the current plan of a tenant.
type TenantPlans interface {
	PlanOf(ctx context.Context, tenantID string) (*model.Plan, error)
}

// NewUserService creates a new UserService.
func NewUserService(db DB, plans TenantPlans) *UserService {
	return &UserService{db: db, plans: plans}
}

func (s *UserService) List(ctx context.Context, tenantID string) ([]model.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// CreateUserParams describes a new tenant user.
type CreateUserParams struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
}

// Create adds a user to a tenant, enforcing the plan's user limit while
// holding a lock on the tenant row.
func (s *UserService) Create(ctx context.Context, tenantID string, p CreateUserParams) (*model.User, error) {
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" || p.Password == "" {
		return nil, validation("Email and password are required")
	}
	if p.Role == "" {
		p.Role = model.RoleTenantUser
	}
	if p.Role != model.RoleTenantUser && p.Role != model.RoleClientOwner {
		return nil, validation("invalid role %q", p.Role)
	}

	plan, err := s.plans.PlanOf(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           platform.NewID(),
		TenantID:     &tenantID,
		Email:        p.Email,
		PasswordHash: hash,
		Name:         p.Name,
		Role:         p.Role,
	}

	err = inTx(ctx, s.db, func(db DB) error {
		// Concurrent creates for the same tenant serialize on the tenant row,
		// so the count below cannot be stale.
		if _, err := db.Exec(ctx, `SELECT 1 FROM tenants WHERE id = $1 FOR UPDATE`, tenantID); err != nil {
			return fmt.Errorf("lock tenant %s: %w", tenantID, err)
		}
		return db.QueryRow(ctx,
			`INSERT INTO users (id, tenant_id, email, password_hash, name, role)
			 SELECT $1, $2, $3, $4, $5, $6
			 WHERE $7 < 0 OR (SELECT count(*) FROM users WHERE tenant_id = $2) < $7
			 RETURNING created_at, updated_at`,
			u.ID, tenantID, u.Email, u.PasswordHash, u.Name, string(u.Role), plan.UserLimit,
		).Scan(&u.CreatedAt, &u.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation("User limit reached. Your plan allows %d users.", plan.UserLimit)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, validation("Email already registered")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UpdateUserParams holds optional changes; nil fields are left unchanged.
type UpdateUserParams struct {
	Name *string
	Role *model.Role
}

func (s *UserService) Update(ctx context.Context, tenantID, userID string, p UpdateUserParams) (*model.User, error) {
	var role *string
	if p.Role != nil {
		if *p.Role != model.RoleTenantUser && *p.Role != model.RoleClientOwner {
			return nil, validation("invalid role %q", *p.Role)
		}
		r := string(*p.Role)
		role = &r
	}

	u, err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users SET name = COALESCE($3, name), role = COALESCE($4, role), updated_at = now()
		 WHERE id = $1 AND tenant_id = $2
		 RETURNING `+userColumns,
		userID, tenantID, p.Name, role))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", userID, err)
	}
	return u, nil
}

// Delete removes a user of the caller's tenant. Principals cannot delete
// themselves.
func (s *UserService) Delete(ctx context.Context, p *model.Principal, userID string) error {
	if p.ID == userID {
		return validation("Cannot delete your own account")
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1 AND tenant_id = $2`, userID, p.Tenant())
	if err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("User not found")
	}
	return nil
}
