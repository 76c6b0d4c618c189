// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered author. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Status       string
	// Posts holds the ids of the posts created by the user, oldest first.
	Posts     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
