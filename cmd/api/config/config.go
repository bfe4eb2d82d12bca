package config

import "time"

type Config struct {
	GuestMessageLimit     int
	GuestSessionDuration  time.Duration
	MaxModelRounds        int
	ChatModelName         string
	RatedDateHistoryLimit int
}

func NewConfig() *Config {
	return &Config{
		GuestMessageLimit:     5,
		GuestSessionDuration:  24 * time.Hour,
		MaxModelRounds:        8,
		ChatModelName:         "gemini-1.5-flash-latest",
		RatedDateHistoryLimit: 20,
	}
}
