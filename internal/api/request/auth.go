package request

// Register signs up a new tenant and its owner. Presence of the required
// fields is checked by the identity service so the message matches the
// login form.
type Register struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	PlanID       string `json:"planId" validate:"omitempty,slug"`
}

type Login struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
