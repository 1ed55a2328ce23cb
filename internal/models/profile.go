package models

import (
	"time"

	"github.com/carebright/carelog/internal/backend"
)

const UsersCollection = "users"

// Field names of the users/{uid} document shape.
const (
	FieldFirstName = "firstName"
	FieldMI        = "mi"
	FieldLastName  = "lastName"
	FieldBio       = "bio"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldCreatedAt = "createdAt"
)

// Profile is the users/{uid} document written once at signup. MI and Bio are
// optional; the goal count shown on the profile view is derived, never
// stored.
type Profile struct {
	FirstName string    `json:"first_name"`
	MI        string    `json:"mi"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (profile Profile) Fields() backend.Fields {
	return backend.Fields{
		FieldFirstName: profile.FirstName,
		FieldMI:        profile.MI,
		FieldLastName:  profile.LastName,
		FieldBio:       profile.Bio,
		FieldUsername:  profile.Username,
		FieldEmail:     profile.Email,
		FieldCreatedAt: profile.CreatedAt.Format(time.RFC3339),
	}
}

func ProfileFromFields(fields backend.Fields) Profile {
	createdAt, _ := time.Parse(time.RFC3339, stringField(fields, FieldCreatedAt))
	return Profile{
		FirstName: stringField(fields, FieldFirstName),
		MI:        stringField(fields, FieldMI),
		LastName:  stringField(fields, FieldLastName),
		Bio:       stringField(fields, FieldBio),
		Username:  stringField(fields, FieldUsername),
		Email:     stringField(fields, FieldEmail),
		CreatedAt: createdAt,
	}
}
