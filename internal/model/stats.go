package model

type AdminOverview struct {
	TotalClients   int   `json:"totalClients"`
	ActiveClients  int   `json:"activeClients"`
	PausedClients  int   `json:"pausedClients"`
	TotalUsers     int   `json:"totalUsers"`
	TotalLeads     int   `json:"totalLeads"`
	TotalProjects  int   `json:"totalProjects"`
	MonthlyRevenue int64 `json:"monthlyRevenue"`
	AnnualRevenue  int64 `json:"annualRevenue"`
}

type MonthlyGrowth struct {
	Month   string `json:"month"`
	Clients int    `json:"clients"`
}

type PlanDistribution struct {
	PlanID string `json:"planId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type AdminCharts struct {
	MonthlyGrowth    []MonthlyGrowth    `json:"monthlyGrowth"`
	PlanDistribution []PlanDistribution `json:"planDistribution"`
}

type AdminStats struct {
	Overview AdminOverview `json:"overview"`
	Charts   AdminCharts   `json:"charts"`
}

type ClientStats struct {
	TotalLeads         int     `json:"totalLeads"`
	WonLeads           int     `json:"wonLeads"`
	ConversionRate     float64 `json:"conversionRate"`
	TotalProjects      int     `json:"totalProjects"`
	ActiveProjects     int     `json:"activeProjects"`
	TotalTasks         int     `json:"totalTasks"`
	CompletedTasks     int     `json:"completedTasks"`
	TaskCompletionRate float64 `json:"taskCompletionRate"`
	TotalExpenses      int64   `json:"totalExpenses"`
	PipelineValue      int64   `json:"pipelineValue"`
}
