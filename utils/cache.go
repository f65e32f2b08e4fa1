package utils

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kryuchenko/kartoshka-bot/model"
)

var (
	intakeCache = make(map[string]model.IntakeSession)
	cacheMutex  = &sync.RWMutex{}
	cacheTTL    = 15 * time.Minute // a visibility choice expires if no content follows
)

func init() {
	go startCacheJanitor()
}

// AddIntakeSession stores an in-progress submission choice and returns a
// unique ID for it.
func AddIntakeSession(session model.IntakeSession) string {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	id := uuid.New().String()
	session.CreatedAt = time.Now()
	intakeCache[id] = session
	return id
}

// IntakeSessionByUser returns the most recent pending choice for a user.
func IntakeSessionByUser(userID string) (model.IntakeSession, bool) {
	cacheMutex.RLock()
	defer cacheMutex.RUnlock()

	var (
		found  bool
		latest model.IntakeSession
	)
	for _, session := range intakeCache {
		if session.UserID != userID {
			continue
		}
		if !found || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
			found = true
		}
	}
	return latest, found
}

// RemoveIntakeSessionsForUser drops every pending choice of a user, called
// once their content message has been consumed.
func RemoveIntakeSessionsForUser(userID string) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	for id, session := range intakeCache {
		if session.UserID == userID {
			delete(intakeCache, id)
		}
	}
}

// startCacheJanitor runs a background process to clean up expired entries.
func startCacheJanitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cacheMutex.Lock()
		for id, session := range intakeCache {
			if time.Since(session.CreatedAt) > cacheTTL {
				delete(intakeCache, id)
			}
		}
		cacheMutex.Unlock()
	}
}
