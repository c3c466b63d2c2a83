package request

type ChangeSubscription struct {
	PlanID string `json:"planId" validate:"required,slug"`
}
