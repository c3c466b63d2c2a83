package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/buildcrm/internal/model"
)

func TestUserService_List(t *testing.T) {
	db := &mockDB{}
	db.On("Query", mock.Anything, sqlContains("WHERE tenant_id = $1"), []any{"tenant-1"}).Return(newMockRows(
		userScan(model.User{ID: "u1", TenantID: strPtr("tenant-1"), Email: "a@acme.test", Role: model.RoleClientOwner}),
		userScan(model.User{ID: "u2", TenantID: strPtr("tenant-1"), Email: "b@acme.test", Role: model.RoleTenantUser}),
	), nil)

	users, err := NewUserService(db, newFakePlans()).List(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, model.RoleTenantUser, users[1].Role)
}

func TestUserService_List_Empty(t *testing.T) {
	db := &mockDB{}
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(newEmptyMockRows(), nil)

	users, err := NewUserService(db, newFakePlans()).List(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserService_Create(t *testing.T) {
	plans := newFakePlans()
	plans.tenantPlan["tenant-1"] = "basic"

	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("FOR UPDATE"), []any{"tenant-1"}).Return(pgconn.NewCommandTag("SELECT 1"), nil)
	db.On("QueryRow", mock.Anything, sqlContains("INSERT INTO users"), mock.MatchedBy(func(args []any) bool {
		return args[1] == "tenant-1" && args[5] == string(model.RoleTenantUser) && args[6] == 5
	})).Return(&mockRow{scanFunc: func(dest ...any) error { return nil }})

	u, err := NewUserService(db, plans).Create(context.Background(), "tenant-1", CreateUserParams{
		Email: "crew@acme.test", Password: "hunter22", Name: "Crew",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenantUser, u.Role)
	assert.Equal(t, "tenant-1", *u.TenantID)
	assert.True(t, VerifyPassword("hunter22", u.PasswordHash))
	db.AssertExpectations(t)
}

func TestUserService_Create_LimitReached(t *testing.T) {
	plans := newFakePlans()
	plans.tenantPlan["tenant-1"] = "basic"

	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("FOR UPDATE"), []any{"tenant-1"}).Return(pgconn.NewCommandTag("SELECT 1"), nil)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow(pgx.ErrNoRows))

	_, err := NewUserService(db, plans).Create(context.Background(), "tenant-1", CreateUserParams{
		Email: "sixth@acme.test", Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "User limit reached. Your plan allows 5 users.", PublicMessage(err))
}

func TestUserService_Create_Errors(t *testing.T) {
	plans := newFakePlans()
	plans.tenantPlan["tenant-1"] = "basic"
	ctx := context.Background()

	svc := NewUserService(&mockDB{}, plans)

	_, err := svc.Create(ctx, "tenant-1", CreateUserParams{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "tenant-1", CreateUserParams{Email: "x@acme.test", Password: "x", Role: model.RoleSuperAdmin})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "tenant-x", CreateUserParams{Email: "x@acme.test", Password: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("FOR UPDATE"), []any{"tenant-1"}).Return(pgconn.NewCommandTag("SELECT 1"), nil)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow(&pgconn.PgError{Code: "23505"}))
	_, err = NewUserService(db, plans).Create(ctx, "tenant-1", CreateUserParams{Email: "dup@acme.test", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Email already registered", PublicMessage(err))
}

func TestUserService_Update(t *testing.T) {
	db := &mockDB{}
	name := "Renamed"
	db.On("QueryRow", mock.Anything, sqlContains("UPDATE users"), mock.MatchedBy(func(args []any) bool {
		return args[0] == "u2" && args[1] == "tenant-1"
	})).Return(&mockRow{scanFunc: userScan(model.User{ID: "u2", TenantID: strPtr("tenant-1"), Name: name, Role: model.RoleTenantUser})})
	db.On("QueryRow", mock.Anything, sqlContains("UPDATE users"), mock.Anything).Return(errRow(pgx.ErrNoRows))

	svc := NewUserService(db, newFakePlans())

	u, err := svc.Update(context.Background(), "tenant-1", "u2", UpdateUserParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)

	_, err = svc.Update(context.Background(), "tenant-2", "u2", UpdateUserParams{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	bad := model.RoleSuperAdmin
	_, err = svc.Update(context.Background(), "tenant-1", "u2", UpdateUserParams{Role: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Delete(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("DELETE FROM users"), []any{"u2", "tenant-1"}).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	err := NewUserService(db, newFakePlans()).Delete(context.Background(), ownerPrincipal, "u2")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestUserService_Delete_OtherTenant(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("DELETE FROM users"), []any{"foreign-user", "tenant-1"}).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := NewUserService(db, newFakePlans()).Delete(context.Background(), ownerPrincipal, "foreign-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Delete_Self(t *testing.T) {
	err := NewUserService(&mockDB{}, newFakePlans()).Delete(context.Background(), ownerPrincipal, ownerPrincipal.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Cannot delete your own account", PublicMessage(err))
}
