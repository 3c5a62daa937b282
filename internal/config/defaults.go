package config

// DefaultConfig returns the configuration used when no file is present.
// The credentials are the demo account the Strapi sample API seeds.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:1337/api",
			TimeoutSeconds: 30,
		},
		Auth: AuthConfig{
			Identifier: "user@example.com",
			Password:   "password",
			TokenSlot:  "token",
		},
		Storage: StorageConfig{
			DBPath: "~/.local/share/evman/credentials.db",
		},
		Display: DisplayConfig{
			NotificationMS: 3000,
			Locale:         "en",
		},
		Notifications: NotificationConfig{
			SystemNotify: false,
		},
	}
}
