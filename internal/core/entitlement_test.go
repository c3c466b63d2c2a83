package core

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
)

func approvedRows(ids ...string) *mockRows {
	fns := make([]func(dest ...any) error, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, stringScan(id))
	}
	return newMockRows(fns...)
}

func TestEntitlementService_Plans_Cached(t *testing.T) {
	db := &mockDB{}
	db.On("Query", mock.Anything, sqlContains("FROM plans ORDER BY price"), []any(nil)).
		Return(newMockRows(planScan(basicPlan), planScan(professionalPlan), planScan(enterprisePlan)), nil).Once()

	svc := NewEntitlementService(db, newMapCache(), nil)

	plans, err := svc.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "basic", plans[0].ID)

	again, err := svc.Plans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plans, again)
	db.AssertNumberOfCalls(t, "Query", 1)
}

func TestEntitlementService_Plan_NotFound(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"platinum"}).Return(errRow(pgx.ErrNoRows))

	_, err := NewEntitlementService(db, nil, nil).Plan(context.Background(), "platinum")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntitlementService_PlanOf(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), []any{"tenant-1"}).
		Return(&mockRow{scanFunc: stringScan("professional")})
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), []any{"professional"}).
		Return(&mockRow{scanFunc: planScan(professionalPlan)})
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), []any{"tenant-x"}).
		Return(errRow(pgx.ErrNoRows))

	svc := NewEntitlementService(db, nil, nil)

	plan, err := svc.PlanOf(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "Professional", plan.Name)

	_, err = svc.PlanOf(context.Background(), "tenant-x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "client not found", PublicMessage(err))
}

func TestEntitlementService_QualifyingPlan(t *testing.T) {
	db := &mockDB{}
	db.On("Query", mock.Anything, sqlContains("FROM plans ORDER BY price"), mock.Anything).
		Return(newMockRows(planScan(basicPlan), planScan(professionalPlan), planScan(enterprisePlan)), nil)

	plan, err := NewEntitlementService(db, nil, nil).QualifyingPlan(context.Background(), model.FeatureWhiteLabel)
	require.NoError(t, err)
	assert.Equal(t, "Enterprise", plan.Name)
}

func TestEntitlementService_EffectiveModules(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), []any{"tenant-1"}).
		Return(&mockRow{scanFunc: stringScan("basic")})
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), []any{"basic"}).
		Return(&mockRow{scanFunc: planScan(basicPlan)})
	db.On("Query", mock.Anything, sqlContains("status = 'approved'"), []any{"tenant-1"}).
		Return(approvedRows("wooden-flooring", "contractors"), nil)

	modules, err := NewEntitlementService(db, nil, nil).EffectiveModules(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"contractors", "wooden-flooring"}, modules)
}

func TestEntitlementService_EffectiveModules_IncludesEveryBaseModule(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), mock.Anything).
		Return(&mockRow{scanFunc: stringScan("enterprise")})
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), mock.Anything).
		Return(&mockRow{scanFunc: planScan(enterprisePlan)})
	db.On("Query", mock.Anything, sqlContains("status = 'approved'"), mock.Anything).
		Return(newEmptyMockRows(), nil)

	modules, err := NewEntitlementService(db, nil, nil).EffectiveModules(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Subset(t, modules, enterprisePlan.BaseModules)
	assert.Len(t, modules, len(enterprisePlan.BaseModules))
}

func TestEntitlementService_EffectiveModules_QueryError(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), mock.Anything).
		Return(&mockRow{scanFunc: stringScan("basic")})
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), mock.Anything).
		Return(&mockRow{scanFunc: planScan(basicPlan)})
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewEntitlementService(db, nil, nil).EffectiveModules(context.Background(), "tenant-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestEntitlementService_TenantModules(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("SELECT plan_id FROM tenants"), mock.Anything).
		Return(&mockRow{scanFunc: stringScan("basic")})
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), mock.Anything).
		Return(&mockRow{scanFunc: planScan(basicPlan)})
	db.On("Query", mock.Anything, sqlContains("status = 'approved'"), mock.Anything).
		Return(approvedRows("wooden-flooring"), nil)
	db.On("Query", mock.Anything, sqlContains("FROM modules ORDER BY name"), mock.Anything).
		Return(newMockRows(moduleScan(contractors), moduleScan(woodenFlooring)), nil)

	modules, err := NewEntitlementService(db, nil, nil).TenantModules(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "Contractors", modules[0].Name)
	assert.Equal(t, "Wooden Flooring", modules[1].Name)
	for _, m := range modules {
		assert.True(t, m.Enabled)
	}
}

func TestEntitlementService_PublicModules(t *testing.T) {
	db := &mockDB{}
	db.On("Query", mock.Anything, sqlContains("FROM modules ORDER BY name"), mock.Anything).
		Return(newMockRows(moduleScan(contractors), moduleScan(woodenFlooring)), nil)

	modules, err := NewEntitlementService(db, nil, nil).PublicModules(context.Background())
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "wooden-flooring", modules[0].ID)
}

func TestEntitlementService_Module_NotFound(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("FROM modules WHERE id = $1"), []any{"spaceships"}).
		Return(errRow(pgx.ErrNoRows))

	_, err := NewEntitlementService(db, nil, nil).Module(context.Background(), "spaceships")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "module not found", PublicMessage(err))
}

func TestEntitlementService_ChangePlan(t *testing.T) {
	db := &mockDB{}
	pub := &recordingPublisher{}
	db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), []any{"enterprise"}).
		Return(&mockRow{scanFunc: planScan(enterprisePlan)})
	db.On("QueryRow", mock.Anything, sqlContains("UPDATE tenants SET plan_id"), []any{"tenant-1", "enterprise"}).
		Return(tenantRow(model.Tenant{ID: "tenant-1", PlanID: "enterprise", Active: true}))

	tenant, err := NewEntitlementService(db, nil, pub).ChangePlan(context.Background(), "tenant-1", "enterprise")
	require.NoError(t, err)
	assert.Equal(t, "enterprise", tenant.PlanID)
	assert.Equal(t, []string{events.TenantPlanChanged}, pub.Subjects())
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestEntitlementService_ChangePlan_Errors(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), mock.Anything).Return(errRow(pgx.ErrNoRows))

		_, err := NewEntitlementService(db, nil, nil).ChangePlan(context.Background(), "tenant-1", "platinum")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, sqlContains("FROM plans WHERE id = $1"), mock.Anything).
			Return(&mockRow{scanFunc: planScan(basicPlan)})
		db.On("QueryRow", mock.Anything, sqlContains("UPDATE tenants"), mock.Anything).Return(errRow(pgx.ErrNoRows))

		_, err := NewEntitlementService(db, nil, nil).ChangePlan(context.Background(), "tenant-x", "basic")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEntitlementService_SeedCatalog_ClearsCache(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, sqlContains("INSERT INTO modules"), mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)
	db.On("Exec", mock.Anything, sqlContains("INSERT INTO plans"), mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	cache := newMapCache()
	cache.Set("plans", []byte(`[]`))

	err := NewEntitlementService(db, cache, nil).SeedCatalog(context.Background(),
		[]model.Plan{basicPlan, enterprisePlan}, []model.Module{contractors, woodenFlooring})
	require.NoError(t, err)

	db.AssertNumberOfCalls(t, "Exec", 4)
	_, ok := cache.Get("plans")
	assert.False(t, ok)
}
