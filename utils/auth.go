package utils

import (
	"slices"

	"github.com/kryuchenko/kartoshka-bot/config"
)

// IsReviewer checks whether a user is allowed to vote on submissions,
// either directly or through one of the reviewer roles.
func IsReviewer(userID string, roles []string) bool {
	review := config.Cfg.Review

	if slices.Contains(review.Reviewers, userID) {
		return true
	}

	for _, role := range roles {
		if slices.Contains(review.ReviewerRoles, role) {
			return true
		}
	}

	return false
}
