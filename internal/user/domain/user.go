package domain

import "time"

// User is an authenticated principal. Access tokens carry the user id as the
// subject; employee records may link back via their user_id column.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
