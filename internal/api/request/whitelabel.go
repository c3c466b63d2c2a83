package request

// UpdateWhiteLabel holds optional changes; nil fields keep their stored value.
type UpdateWhiteLabel struct {
	Logo           *string `json:"logo" validate:"omitzero,url"`
	Favicon        *string `json:"favicon" validate:"omitzero,url"`
	PrimaryColor   *string `json:"primaryColor" validate:"omitzero,hexcolor"`
	SecondaryColor *string `json:"secondaryColor" validate:"omitzero,hexcolor"`
	CompanyName    *string `json:"companyName" validate:"omitempty,max=255"`
	CustomDomain   *string `json:"customDomain" validate:"omitzero,fqdn"`
	CustomCSS      *string `json:"customCSS" validate:"omitempty,max=65536"`
	Enabled        *bool   `json:"enabled"`
}
