package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    0,
		Decompress:      BoolPtr(false),
		SessionDSN:      "sqlite://opensos-sessions.db",
		Log: LogConfig{
			Level:   "info",
			Writers: []string{"console"},
		},
		NoColor: BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.BaseURL == defaults.BaseURL &&
		c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetDecompress() == defaults.GetDecompress() &&
		c.RateLimit == defaults.RateLimit &&
		len(c.Headers) == 0 &&
		c.SessionDSN == defaults.SessionDSN &&
		c.Log.Level == defaults.Log.Level &&
		c.GetNoColor() == defaults.GetNoColor()
}
