package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/buildcrm/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
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

// sqlContains matches a query string containing fragment.
func sqlContains(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

// newEmptyMockRows returns a mockRows that yields zero rows.
func newEmptyMockRows() *mockRows {
	return &mockRows{}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Row scanners ----------

func strPtr(s string) *string { return &s }

var testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func tenantScan(t model.Tenant) func(dest ...any) error {
	return func(dest ...any) error {
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
	}
}

func tenantRow(t model.Tenant) *mockRow {
	return &mockRow{scanFunc: tenantScan(t)}
}

func userScan(u model.User) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = u.ID
		*(dest[1].(**string)) = u.TenantID
		*(dest[2].(*string)) = u.Email
		*(dest[3].(*string)) = u.PasswordHash
		*(dest[4].(*string)) = u.Name
		*(dest[5].(*string)) = string(u.Role)
		*(dest[6].(*time.Time)) = testTime
		*(dest[7].(*time.Time)) = testTime
		return nil
	}
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

func moduleScan(m model.Module) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = m.ID
		*(dest[1].(*string)) = m.Name
		*(dest[2].(*string)) = m.Description
		*(dest[3].(*int64)) = m.Price
		*(dest[4].(*string)) = m.Icon
		*(dest[5].(*bool)) = m.Public
		return nil
	}
}

func moduleRequestScan(r model.ModuleRequest) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = r.ID
		*(dest[1].(*string)) = r.TenantID
		*(dest[2].(*string)) = r.ModuleID
		*(dest[3].(*string)) = r.RequestedBy
		*(dest[4].(*string)) = r.Message
		*(dest[5].(*string)) = r.Status
		*(dest[6].(*string)) = r.AdminMessage
		*(dest[7].(**string)) = r.DecidedBy
		*(dest[8].(*time.Time)) = testTime
		*(dest[9].(**time.Time)) = r.DecidedAt
		*(dest[10].(*time.Time)) = testTime
		return nil
	}
}

func stringScan(v string) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = v
		return nil
	}
}

// ---------- Catalog fixtures ----------

var (
	basicPlan = model.Plan{
		ID: "basic", Name: "Basic", Price: 2999, BillingCycle: "monthly", UserLimit: 5,
		BaseModules: []string{"contractors"},
	}
	professionalPlan = model.Plan{
		ID: "professional", Name: "Professional", Price: 5999, BillingCycle: "monthly", UserLimit: 15,
		BaseModules: []string{"contractors", "painting", "plumbing", "electrical"},
	}
	enterprisePlan = model.Plan{
		ID: "enterprise", Name: "Enterprise", Price: 9999, BillingCycle: "monthly", UserLimit: -1,
		BaseModules:      []string{"contractors", "painting", "plumbing", "electrical", "tiles"},
		AllowsWhiteLabel: true, AllowsCustomDomain: true,
	}
	woodenFlooring = model.Module{ID: "wooden-flooring", Name: "Wooden Flooring", Price: 999, Public: true}
	contractors    = model.Module{ID: "contractors", Name: "Contractors", Price: 999, Public: false}
)

// ---------- Fakes ----------

// fakePlans implements PlanCatalog and TenantPlans over fixed data.
type fakePlans struct {
	plans        map[string]model.Plan
	tenantPlan   map[string]string
	planErr      error
	qualifyingOK bool
}

func newFakePlans() *fakePlans {
	return &fakePlans{
		plans: map[string]model.Plan{
			basicPlan.ID:        basicPlan,
			professionalPlan.ID: professionalPlan,
			enterprisePlan.ID:   enterprisePlan,
		},
		tenantPlan:   map[string]string{},
		qualifyingOK: true,
	}
}

func (f *fakePlans) Plan(_ context.Context, id string) (*model.Plan, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	p, ok := f.plans[id]
	if !ok {
		return nil, notFound("plan %q not found", id)
	}
	return &p, nil
}

func (f *fakePlans) QualifyingPlan(_ context.Context, feature model.Feature) (*model.Plan, error) {
	if !f.qualifyingOK {
		return nil, notFound("no plan grants %s", feature)
	}
	for _, id := range []string{"basic", "professional", "enterprise"} {
		if p := f.plans[id]; p.Grants(feature) {
			return &p, nil
		}
	}
	return nil, notFound("no plan grants %s", feature)
}

func (f *fakePlans) PlanOf(ctx context.Context, tenantID string) (*model.Plan, error) {
	id, ok := f.tenantPlan[tenantID]
	if !ok {
		return nil, notFound("client not found")
	}
	return f.Plan(ctx, id)
}

// fakeModules implements ModuleCatalog.
type fakeModules map[string]model.Module

func (f fakeModules) Module(_ context.Context, id string) (*model.Module, error) {
	m, ok := f[id]
	if !ok {
		return nil, notFound("module not found")
	}
	return &m, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

// mapCache implements CatalogCache with a plain map.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *mapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
}
