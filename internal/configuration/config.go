package configuration

import (
	"encoding/json"
	"os"
)

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	RequestsCollection      string `json:"requestsCollection"`
	ConversationsCollection string `json:"conversationsCollection"`
	MessagesCollection      string `json:"messagesCollection"`
	SocketRoute             string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// QuotaConfig bounds chat-request submissions per sender. Soft limit.
type QuotaConfig struct {
	MaxRequests int `json:"max_requests"`
	WindowDays  int `json:"window_days"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Quota        QuotaConfig  `json:"quota"`
}

func LoadConfig(config_path string) (*Config, error) {
	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	// Quota defaults: 3 requests per rolling 7-day window
	if config.Quota.MaxRequests == 0 {
		config.Quota.MaxRequests = 3
	}
	if config.Quota.WindowDays == 0 {
		config.Quota.WindowDays = 7
	}

	return &config, nil
}
