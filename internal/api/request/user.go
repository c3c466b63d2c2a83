package request

type CreateUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"max=255"`
	Role     string `json:"role" validate:"omitempty,oneof=client_owner tenant_user"`
}

// UpdateUser carries optional changes; omitted fields are left unchanged.
type UpdateUser struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	Role *string `json:"role" validate:"omitempty,oneof=client_owner tenant_user"`
}
