package models

import "time"

// Curator roles. Admins manage accounts and settings; curators edit and
// publish resources; viewers get read-only dashboard access.
const (
	RoleAdmin   = "admin"
	RoleCurator = "curator"
	RoleViewer  = "viewer"
)

// User represents a curator account (mapped from Keycloak claims)
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Sub       string    `bson:"sub" json:"sub"` // OIDC subject
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
