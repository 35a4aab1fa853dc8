package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:", // Use in-memory database for tests
			Timeout: 1 * time.Second,
		},
		Fetch: FetchConfig{
			Provider:        "openalex",
			LookbackDays:    7,
			PerJournalLimit: 10,
			HTTPTimeout:     5 * time.Second,
			BackfillDelay:   time.Millisecond,
			UserAgent:       "litriage-test/1.0",
		},
		Notes: defaultConfig().Notes,
		Log:   LogConfig{Level: "off"},
		Journals: []Journal{
			{Name: "Test Journal", RegistryKey: "1234-5678", Enabled: true},
		},
	}
}
