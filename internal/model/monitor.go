package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"`      // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"` // Client connection stats
	Topics      TopicStats      `json:"topics"`      // Subscription topic stats
	Clients     []ClientInfo    `json:"clients"`     // List of connected clients
}

// ConnectionStats holds connection-related statistics
type ConnectionStats struct {
	TotalConnected int `json:"totalConnected"` // Total clients currently connected
	TotalUsers     int `json:"totalUsers"`     // Distinct users across connections
}

// TopicStats holds subscription topic statistics
type TopicStats struct {
	TotalTopics  int         `json:"totalTopics"`  // Topics with at least one subscriber
	TopicDetails []TopicInfo `json:"topicDetails"` // Details of each topic
}

// TopicInfo contains information about a single subscription topic
type TopicInfo struct {
	Topic         string   `json:"topic"`
	Subscribers   int      `json:"subscribers"`   // Connected clients on this topic
	SubscriberIDs []string `json:"subscriberIds"` // User IDs of the subscribers
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ClientID    string   `json:"clientId"`
	UserID      string   `json:"userId"`
	Topics      []string `json:"topics"`      // Topics this client is subscribed to
	ConnectedAt string   `json:"connectedAt"` // ISO timestamp
}
