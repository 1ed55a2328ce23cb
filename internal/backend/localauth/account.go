package localauth

import "time"

// Account is an auth-provider credential record. It is deliberately separate
// from the users document collection: the profile document written at signup
// lives in the document store, keyed by this id.
type Account struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Account) TableName() string { return "accounts" }
