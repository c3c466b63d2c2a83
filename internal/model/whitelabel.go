package model

import "time"

type WhiteLabel struct {
	TenantID       string     `json:"clientId" db:"tenant_id"`
	Logo           string     `json:"logo" db:"logo"`
	Favicon        string     `json:"favicon" db:"favicon"`
	PrimaryColor   string     `json:"primaryColor" db:"primary_color"`
	SecondaryColor string     `json:"secondaryColor" db:"secondary_color"`
	CompanyName    string     `json:"companyName" db:"company_name"`
	CustomDomain   string     `json:"customDomain" db:"custom_domain"`
	CustomCSS      string     `json:"customCSS" db:"custom_css"`
	Enabled        bool       `json:"enabled" db:"enabled"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// DefaultWhiteLabel returns the settings shown before a tenant customises anything.
func DefaultWhiteLabel(tenantID, companyName string) *WhiteLabel {
	return &WhiteLabel{
		TenantID:       tenantID,
		PrimaryColor:   "#3B82F6",
		SecondaryColor: "#1E40AF",
		CompanyName:    companyName,
	}
}
