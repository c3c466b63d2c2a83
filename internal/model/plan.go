package model

// Feature names a plan-gated capability.
type Feature string

const (
	FeatureWhiteLabel   Feature = "white_label"
	FeatureCustomDomain Feature = "custom_domain"
)

type Plan struct {
	ID                 string   `json:"id" yaml:"id" db:"id"`
	Name               string   `json:"name" yaml:"name" db:"name"`
	Price              int64    `json:"price" yaml:"price" db:"price"`
	BillingCycle       string   `json:"billingCycle" yaml:"billing_cycle" db:"billing_cycle"`
	UserLimit          int      `json:"userLimit" yaml:"user_limit" db:"user_limit"`
	Features           []string `json:"features" yaml:"features" db:"features"`
	BaseModules        []string `json:"baseModules" yaml:"base_modules" db:"base_modules"`
	AllowsWhiteLabel   bool     `json:"allowsWhiteLabel" yaml:"allows_white_label" db:"allows_white_label"`
	AllowsCustomDomain bool     `json:"allowsCustomDomain" yaml:"allows_custom_domain" db:"allows_custom_domain"`
	SortOrder          int      `json:"-" yaml:"sort_order" db:"sort_order"`
}

// Grants reports whether the plan unlocks feature f.
func (p Plan) Grants(f Feature) bool {
	switch f {
	case FeatureWhiteLabel:
		return p.AllowsWhiteLabel
	case FeatureCustomDomain:
		return p.AllowsCustomDomain
	}
	return false
}

// AllowsUsers reports whether a tenant with current users may add another.
// A negative limit means unlimited.
func (p Plan) AllowsUsers(current int) bool {
	return p.UserLimit < 0 || current < p.UserLimit
}
