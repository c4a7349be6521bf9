package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the non-authoritative actor record. Registration and
// credential storage live outside this service; the fields here are
// what the booking rules need for identity and permission checks.
type User struct {
	ID          string `json:"id" bson:"_id"`
	Email       string `json:"email" bson:"email"`
	DisplayName string `json:"display_name" bson:"display_name"`
	Role        Role   `json:"role" bson:"role"`
}

// Actor is the caller identity attached to a booking operation,
// extracted from the verified auth token by the middleware layer.
type Actor struct {
	ID   string `validate:"required,min=1,max=128"`
	Name string `validate:"omitempty,max=120"`
	Role Role   `validate:"required,oneof=user admin"`
}

func (a Actor) Admin() bool {
	return a.Role == RoleAdmin
}
