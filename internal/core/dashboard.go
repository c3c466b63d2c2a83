package core

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/buildcrm/internal/model"
)

// DashboardService computes the counts shown on the admin and client
// dashboards.
type DashboardService struct {
	db DB
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Monthly revenue is the price of every active tenant's plan plus the
// price of each module granted to it through an approved request.
const adminOverviewQuery = `
	WITH tenant_counts AS (
		SELECT count(*) AS total, count(*) FILTER (WHERE active) AS active FROM tenants
	), plan_revenue AS (
		SELECT COALESCE(sum(p.price), 0)::bigint AS amount
		FROM tenants t JOIN plans p ON p.id = t.plan_id WHERE t.active
	), module_revenue AS (
		SELECT COALESCE(sum(m.price), 0)::bigint AS amount
		FROM module_requests r
		JOIN tenants t ON t.id = r.tenant_id
		JOIN modules m ON m.id = r.module_id
		WHERE r.status = 'approved' AND t.active
	)
	SELECT
		(SELECT total FROM tenant_counts),
		(SELECT active FROM tenant_counts),
		(SELECT count(*) FROM users WHERE role <> 'super_admin'),
		(SELECT count(*) FROM leads),
		(SELECT count(*) FROM projects),
		(SELECT amount FROM plan_revenue) + (SELECT amount FROM module_revenue)`

const monthlyGrowthQuery = `
	SELECT to_char(month, 'Mon YYYY'), count(t.id)
	FROM generate_series(date_trunc('month', now()) - interval '5 months', date_trunc('month', now()), interval '1 month') AS month
	LEFT JOIN tenants t ON date_trunc('month', t.created_at) = month
	GROUP BY month
	ORDER BY month`

const planDistributionQuery = `
	SELECT p.id, p.name, count(t.id)
	FROM plans p LEFT JOIN tenants t ON t.plan_id = p.id
	GROUP BY p.id, p.name, p.price
	ORDER BY p.price`

// AdminStats returns platform-wide counts. The three queries are
// independent and run concurrently.
func (s *DashboardService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	stats := &model.AdminStats{
		Charts: model.AdminCharts{
			MonthlyGrowth:    []model.MonthlyGrowth{},
			PlanDistribution: []model.PlanDistribution{},
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o := &stats.Overview
		err := s.db.QueryRow(gctx, adminOverviewQuery).Scan(
			&o.TotalClients, &o.ActiveClients, &o.TotalUsers, &o.TotalLeads, &o.TotalProjects, &o.MonthlyRevenue)
		if err != nil {
			return fmt.Errorf("admin overview: %w", err)
		}
		o.PausedClients = o.TotalClients - o.ActiveClients
		o.AnnualRevenue = o.MonthlyRevenue * 12
		return nil
	})

	g.Go(func() error {
		rows, err := s.db.Query(gctx, monthlyGrowthQuery)
		if err != nil {
			return fmt.Errorf("admin monthly growth: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var m model.MonthlyGrowth
			if err := rows.Scan(&m.Month, &m.Clients); err != nil {
				return fmt.Errorf("scan monthly growth: %w", err)
			}
			stats.Charts.MonthlyGrowth = append(stats.Charts.MonthlyGrowth, m)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := s.db.Query(gctx, planDistributionQuery)
		if err != nil {
			return fmt.Errorf("admin plan distribution: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var d model.PlanDistribution
			if err := rows.Scan(&d.PlanID, &d.Name, &d.Count); err != nil {
				return fmt.Errorf("scan plan distribution: %w", err)
			}
			stats.Charts.PlanDistribution = append(stats.Charts.PlanDistribution, d)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

const clientStatsQuery = `
	SELECT
		(SELECT count(*) FROM leads WHERE tenant_id = $1),
		(SELECT count(*) FROM leads WHERE tenant_id = $1 AND status = 'won'),
		(SELECT count(*) FROM projects WHERE tenant_id = $1),
		(SELECT count(*) FROM projects WHERE tenant_id = $1 AND status = 'in_progress'),
		(SELECT count(*) FROM tasks WHERE tenant_id = $1),
		(SELECT count(*) FROM tasks WHERE tenant_id = $1 AND status = 'completed'),
		(SELECT COALESCE(sum(amount), 0)::bigint FROM expenses WHERE tenant_id = $1),
		(SELECT COALESCE(sum(value), 0)::bigint FROM leads WHERE tenant_id = $1)`

// ClientStats returns the dashboard counts of one tenant.
func (s *DashboardService) ClientStats(ctx context.Context, tenantID string) (*model.ClientStats, error) {
	var c model.ClientStats
	err := s.db.QueryRow(ctx, clientStatsQuery, tenantID).Scan(
		&c.TotalLeads, &c.WonLeads, &c.TotalProjects, &c.ActiveProjects,
		&c.TotalTasks, &c.CompletedTasks, &c.TotalExpenses, &c.PipelineValue)
	if err != nil {
		return nil, fmt.Errorf("client stats for tenant %s: %w", tenantID, err)
	}
	c.ConversionRate = percent(c.WonLeads, c.TotalLeads)
	c.TaskCompletionRate = percent(c.CompletedTasks, c.TotalTasks)
	return &c, nil
}

// percent returns part/total as a percentage rounded to one decimal.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
