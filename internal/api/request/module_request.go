package request

type CreateModuleRequest struct {
	ModuleID string `json:"moduleId"`
	Message  string `json:"message" validate:"max=2000"`
}

// DecideModuleRequest approves or rejects one pending request.
type DecideModuleRequest struct {
	RequestID    string `json:"requestId"`
	Action       string `json:"action"`
	AdminMessage string `json:"adminMessage" validate:"max=2000"`
}
