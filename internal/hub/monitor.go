package hub

import (
	"sort"
	"time"

	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	clients := ms.collectClients()
	topics := ms.collectTopics()

	users := make(map[string]struct{})
	for _, c := range clients {
		users[c.userID] = struct{}{}
	}

	// Determine overall health status
	status := "healthy"
	if len(clients) == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status: status,
		Connections: model.ConnectionStats{
			TotalConnected: len(clients),
			TotalUsers:     len(users),
		},
		Topics:  topics,
		Clients: ms.clientInfos(clients),
	}
}

// collectClients returns every distinct connected client across all shards
func (ms *MonitorService) collectClients() []*Client {
	seen := make(map[string]*Client)

	for _, shard := range ms.hub.shards {
		shard.RLock()
		for _, room := range shard.topics {
			for _, client := range room {
				seen[client.ID] = client
			}
		}
		shard.RUnlock()
	}

	clients := make([]*Client, 0, len(seen))
	for _, c := range seen {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients
}

// collectTopics returns per-topic subscriber statistics
func (ms *MonitorService) collectTopics() model.TopicStats {
	stats := model.TopicStats{
		TopicDetails: make([]model.TopicInfo, 0),
	}

	for _, shard := range ms.hub.shards {
		shard.RLock()
		for topic, room := range shard.topics {
			info := model.TopicInfo{
				Topic:         topic,
				Subscribers:   len(room),
				SubscriberIDs: make([]string, 0, len(room)),
			}
			for _, client := range room {
				info.SubscriberIDs = append(info.SubscriberIDs, client.userID)
			}
			sort.Strings(info.SubscriberIDs)
			stats.TopicDetails = append(stats.TopicDetails, info)
		}
		shard.RUnlock()
	}

	sort.Slice(stats.TopicDetails, func(i, j int) bool {
		return stats.TopicDetails[i].Topic < stats.TopicDetails[j].Topic
	})
	stats.TotalTopics = len(stats.TopicDetails)
	return stats
}

func (ms *MonitorService) clientInfos(clients []*Client) []model.ClientInfo {
	infos := make([]model.ClientInfo, 0, len(clients))
	for _, c := range clients {
		topics := c.Topics()
		sort.Strings(topics)
		infos = append(infos, model.ClientInfo{
			ClientID:    c.ID,
			UserID:      c.userID,
			Topics:      topics,
			ConnectedAt: c.connectedAt.Format(time.RFC3339),
		})
	}
	return infos
}
