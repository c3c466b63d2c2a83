package handler

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements core.DB so handlers can run against real services.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func sqlContains(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

// ---------- Rows ----------

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error { return m.scanFunc(dest...) }

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

type mockRows struct {
	idx   int
	scans []func(dest ...any) error
}

func newMockRows(scans ...func(dest ...any) error) *mockRows {
	return &mockRows{scans: scans}
}

func (m *mockRows) Next() bool { return m.idx < len(m.scans) }

func (m *mockRows) Scan(dest ...any) error {
	fn := m.scans[m.idx]
	m.idx++
	return fn(dest...)
}

func (m *mockRows) Err() error                                   { return nil }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

var testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func tenantRow(t model.Tenant) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = t.ID
		*(dest[1].(*string)) = t.BusinessName
		*(dest[2].(*string)) = t.Email
		*(dest[3].(*string)) = t.Phone
		*(dest[4].(*string)) = t.PlanID
		*(dest[5].(*bool)) = t.Active
		*(dest[6].(*time.Time)) = testTime
		*(dest[7].(**time.Time)) = nil
		*(dest[8].(*time.Time)) = testTime
		*(dest[9].(*time.Time)) = testTime
		return nil
	}}
}

func planScan(p model.Plan) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = p.ID
		*(dest[1].(*string)) = p.Name
		*(dest[2].(*int64)) = p.Price
		*(dest[3].(*string)) = p.BillingCycle
		*(dest[4].(*int)) = p.UserLimit
		*(dest[5].(*[]string)) = p.Features
		*(dest[6].(*[]string)) = p.BaseModules
		*(dest[7].(*bool)) = p.AllowsWhiteLabel
		*(dest[8].(*bool)) = p.AllowsCustomDomain
		*(dest[9].(*int)) = p.SortOrder
		return nil
	}
}

// timeRow scans a single RETURNING timestamp.
func timeRow() *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		switch d := dest[0].(type) {
		case *time.Time:
			*d = testTime
		case **time.Time:
			t := testTime
			*d = &t
		}
		return nil
	}}
}

// ---------- Plan catalog ----------

var (
	professionalPlan = model.Plan{ID: "professional", Name: "Professional", Price: 299, UserLimit: 10, AllowsWhiteLabel: true}
	enterprisePlan   = model.Plan{ID: "enterprise", Name: "Enterprise", Price: 999, UserLimit: -1, AllowsWhiteLabel: true, AllowsCustomDomain: true}
)

// staticPlans serves the guard's plan lookups from memory.
type staticPlans map[string]model.Plan

func (s staticPlans) Plan(_ context.Context, id string) (*model.Plan, error) {
	p, ok := s[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (s staticPlans) QualifyingPlan(_ context.Context, f model.Feature) (*model.Plan, error) {
	var best *model.Plan
	for _, p := range s {
		if p.Grants(f) && (best == nil || p.Price < best.Price) {
			best = &p
		}
	}
	if best == nil {
		return nil, core.ErrNotFound
	}
	return best, nil
}

func testGuard() *core.Guard {
	g, err := core.NewGuard(staticPlans{
		professionalPlan.ID: professionalPlan,
		enterprisePlan.ID:   enterprisePlan,
	})
	if err != nil {
		panic(err)
	}
	return g
}
