package model

import "time"

type Module struct {
	ID          string `json:"id" yaml:"id" db:"id"`
	Name        string `json:"name" yaml:"name" db:"name"`
	Description string `json:"description" yaml:"description" db:"description"`
	Price       int64  `json:"price" yaml:"price" db:"price"`
	Icon        string `json:"icon" yaml:"icon" db:"icon"`
	Public      bool   `json:"public" yaml:"public" db:"public"`
}

// EnabledModule is a catalog module annotated for a specific tenant.
type EnabledModule struct {
	Module
	Enabled bool `json:"enabled"`
}

type ModuleRequest struct {
	ID           string     `json:"id" db:"id"`
	TenantID     string     `json:"clientId" db:"tenant_id"`
	ModuleID     string     `json:"moduleId" db:"module_id"`
	RequestedBy  string     `json:"requestedBy" db:"requested_by"`
	Message      string     `json:"message" db:"message"`
	Status       string     `json:"status" db:"status"`
	AdminMessage string     `json:"adminMessage" db:"admin_message"`
	DecidedBy    *string    `json:"decidedBy,omitempty" db:"decided_by"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty" db:"decided_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	// Populated on listing.
	ClientName  string `json:"clientName,omitempty" db:"-"`
	ModuleName  string `json:"moduleName,omitempty" db:"-"`
	ModulePrice int64  `json:"modulePrice,omitempty" db:"-"`
}
