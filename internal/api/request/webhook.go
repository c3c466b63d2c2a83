package request

// LeadWebhook is posted by external lead sources such as website forms.
type LeadWebhook struct {
	ClientID string   `json:"clientId"`
	Source   string   `json:"source" validate:"max=64"`
	LeadData LeadData `json:"leadData"`
}

type LeadData struct {
	Name    string `json:"name" validate:"max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=64"`
	Message string `json:"message"`
}
