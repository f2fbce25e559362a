package domain

// User is the cached identity record. Token handling is the auth layer's
// problem; the value is carried opaquely for request headers.
type User struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// Preferences are the user's UI preferences, persisted in the local cache.
type Preferences struct {
	Theme    string `json:"theme"`
	FontSize string `json:"font_size"`
	AutoSave bool   `json:"auto_save"`
}

// DefaultPreferences returns the preferences used before the user changes
// anything.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    "light",
		FontSize: "medium",
		AutoSave: true,
	}
}
