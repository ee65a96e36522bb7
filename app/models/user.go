package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleNone  Role = "none"
	RoleChef  Role = "chef"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleChef, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	StatusNone      UserStatus = "none"
	StatusRequested UserStatus = "requested"
	StatusActive    UserStatus = "active"
)

// User is a directory entry. Email is unique and matched case-sensitively.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Photo         string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Role          Role               `bson:"role" json:"role"`
	Status        UserStatus         `bson:"status" json:"status"`
	RequestedRole *Role              `bson:"requestedRole" json:"requestedRole"`
}

// EffectiveRole treats a missing role on legacy records as none.
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == "" {
		return RoleNone
	}
	return u.Role
}

// ProfilePatch holds the self-editable profile fields. Nil means untouched.
type ProfilePatch struct {
	Name    *string
	Photo   *string
	Address *string
}

// Empty reports whether no field is set.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Photo == nil && p.Address == nil
}
