package cache

import "context"

// Theme values accepted from the UI toggle.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// SetTheme stores a user's UI theme preference. Kept in Redis with no
// expiry so it survives re-login.
func SetTheme(ctx context.Context, userID uint, theme string) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, ThemeKey(userID), theme, 0).Err()
}

// GetTheme returns the stored preference, defaulting to light.
func GetTheme(ctx context.Context, userID uint) string {
	if client == nil {
		return ThemeLight
	}
	theme, err := client.Get(ctx, ThemeKey(userID)).Result()
	if err != nil || theme == "" {
		return ThemeLight
	}
	return theme
}
