package model

import "time"

// IntakeSession holds the temporary state of a submission in progress: the
// user has picked a visibility and the bot is waiting for the content.
type IntakeSession struct {
	UserID     string
	Visibility Visibility
	CreatedAt  time.Time
}
