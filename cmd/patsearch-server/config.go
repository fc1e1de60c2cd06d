package main

type Config struct {
	Port     int    `json:"port"`
	BaseUrl  string `json:"base_url"`
	Database string `json:"database"`

	// delays and timeout are in seconds
	MinDelaySeconds int `json:"min_delay_seconds"`
	MaxDelaySeconds int `json:"max_delay_seconds"`
	TimeoutSeconds  int `json:"timeout_seconds"`
	MaxRetries      int `json:"max_retries"`
}
