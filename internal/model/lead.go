package model

import "time"

type Lead struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"clientId" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Message   string    `json:"message" db:"message"`
	Source    string    `json:"source" db:"source"`
	Status    string    `json:"status" db:"status"`
	Value     int64     `json:"value" db:"value"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Lead status values used by the dashboard counts.
const (
	LeadStatusNew = "new"
	LeadStatusWon = "won"
)
