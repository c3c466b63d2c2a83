package model

import (
	"encoding/json"
	"time"
)

type Tenant struct {
	ID                    string     `json:"id" db:"id"`
	BusinessName          string     `json:"businessName" db:"business_name"`
	Email                 string     `json:"email" db:"email"`
	Phone                 string     `json:"phone" db:"phone"`
	PlanID                string     `json:"planId" db:"plan_id"`
	Active                bool       `json:"active" db:"active"`
	SubscriptionStartDate time.Time  `json:"subscriptionStartDate" db:"subscription_start_date"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty" db:"subscription_end_date"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

func (t Tenant) SubscriptionStatus() string {
	if t.Active {
		return SubscriptionActive
	}
	return SubscriptionPaused
}

// tenantFields has Tenant's fields without its methods, so marshalling it
// does not recurse into MarshalJSON.
type tenantFields Tenant

type tenantJSON struct {
	tenantFields
	SubscriptionStatus string `json:"subscriptionStatus"`
}

// MarshalJSON adds the derived subscriptionStatus next to active.
func (t Tenant) MarshalJSON() ([]byte, error) {
	return json.Marshal(tenantJSON{tenantFields: tenantFields(t), SubscriptionStatus: t.SubscriptionStatus()})
}

// TenantDetail is a tenant together with its users, as shown to platform admins.
type TenantDetail struct {
	Tenant
	Plan    *Plan    `json:"plan,omitempty"`
	Users   []User   `json:"users"`
	Modules []string `json:"modules"`
}

// MarshalJSON flattens the tenant fields next to the detail fields.
func (d TenantDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		tenantJSON
		Plan    *Plan    `json:"plan,omitempty"`
		Users   []User   `json:"users"`
		Modules []string `json:"modules"`
	}{
		tenantJSON: tenantJSON{tenantFields: tenantFields(d.Tenant), SubscriptionStatus: d.Tenant.SubscriptionStatus()},
		Plan:       d.Plan,
		Users:      d.Users,
		Modules:    d.Modules,
	})
}
