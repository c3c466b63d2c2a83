package model

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	TenantID     *string   `json:"clientId" db:"tenant_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Principal returns the identity a token issued for u carries.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Role: u.Role, TenantID: u.TenantID, Email: u.Email}
}
