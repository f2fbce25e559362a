package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/user/docchat/internal/domain"
)

// Cache keys. These are the only keys the application uses.
const (
	KeyUser        = "user"
	KeySessions    = "sessions"
	KeyPreferences = "preferences"
)

// CacheRepository is the durable local cache: string-keyed JSON blobs that
// survive restarts. All writers go through this type; read-modify-write
// sequences run as one logical step under the mutex. Consistency across
// processes is not guaranteed.
type CacheRepository struct {
	db *DB
	mu sync.Mutex
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get retrieves the value for a key. The second return is false when the key
// is absent.
func (r *CacheRepository) Get(key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(key)
}

func (r *CacheRepository) getLocked(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores a value under a key, replacing any previous value.
func (r *CacheRepository) Put(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putLocked(key, value)
}

func (r *CacheRepository) putLocked(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// Delete removes a key. Deleting an absent key is not an error.
func (r *CacheRepository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`DELETE FROM cache WHERE key = ?`, key)
	return err
}

// Clear removes every key. Called on logout.
func (r *CacheRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`DELETE FROM cache`)
	return err
}

// SaveSessions persists the full session snapshot, overwriting the previous
// one. Order is preserved.
func (r *CacheRepository) SaveSessions(sessions []domain.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	return r.Put(KeySessions, string(data))
}

// LoadSessions returns the cached session snapshot in stored order, or nil
// when none has been saved.
func (r *CacheRepository) LoadSessions() ([]domain.Session, error) {
	value, ok, err := r.Get(KeySessions)
	if err != nil || !ok {
		return nil, err
	}
	var sessions []domain.Session
	if err := json.Unmarshal([]byte(value), &sessions); err != nil {
		return nil, fmt.Errorf("%w: sessions cache: %v", domain.ErrMalformedPayload, err)
	}
	return sessions, nil
}

// SaveUser persists the cached identity record.
func (r *CacheRepository) SaveUser(user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return r.Put(KeyUser, string(data))
}

// LoadUser returns the cached user, or ErrNoUser when nobody is logged in.
func (r *CacheRepository) LoadUser() (*domain.User, error) {
	value, ok, err := r.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNoUser
	}
	var user domain.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("%w: user cache: %v", domain.ErrMalformedPayload, err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("%w: user cache: missing user_id", domain.ErrMalformedPayload)
	}
	return &user, nil
}

// SavePreferences persists the user preferences.
func (r *CacheRepository) SavePreferences(prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return r.Put(KeyPreferences, string(data))
}

// LoadPreferences returns the cached preferences, falling back to defaults
// when none are stored.
func (r *CacheRepository) LoadPreferences() (domain.Preferences, error) {
	value, ok, err := r.Get(KeyPreferences)
	if err != nil {
		return domain.DefaultPreferences(), err
	}
	if !ok {
		return domain.DefaultPreferences(), nil
	}
	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return domain.DefaultPreferences(), fmt.Errorf("%w: preferences cache: %v", domain.ErrMalformedPayload, err)
	}
	return prefs, nil
}
