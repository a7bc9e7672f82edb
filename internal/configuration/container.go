package configuration

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rohitnarwariya/PlaceReady-1/internal/db"
	"github.com/rohitnarwariya/PlaceReady-1/internal/handler"
	"github.com/rohitnarwariya/PlaceReady-1/internal/hub"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
	"github.com/rohitnarwariya/PlaceReady-1/internal/repo"
	"github.com/rohitnarwariya/PlaceReady-1/internal/service"
)

const defaultConfigPath = "config/config.dev.json"

type Container struct {
	ChatHandler    handler.ChatHandler
	MonitorHandler handler.MonitorHandler
	Hub            *hub.Hub
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("PLACEREADY_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	requestStore := db.NewRepository[model.ChatRequest](con, config.ChatDatabase.RequestsCollection)
	conversationStore := db.NewRepository[model.Conversation](con, config.ChatDatabase.ConversationsCollection)
	messageStore := db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection)

	requestRepo := repo.NewRequestRepository(requestStore, logger)
	conversationRepo := repo.NewConversationRepository(conversationStore, logger)
	messageRepo := repo.NewMessageRepository(messageStore, logger)

	// Hub and notifier: the broadcaster re-reads full state from the repos
	// on every mutation.
	chatHub := hub.NewHub(config.Server.AllowedOrigins)
	notifier := hub.NewNotifier(chatHub, requestRepo, conversationRepo, messageRepo)

	quota := service.Quota{
		MaxRequests: config.Quota.MaxRequests,
		Window:      time.Duration(config.Quota.WindowDays) * 24 * time.Hour,
	}

	chatService := service.NewChatService(requestRepo, conversationRepo, messageRepo, notifier, quota, logger)
	chatHandler := handler.NewChatHandler(chatService)
	monitorHandler := handler.NewMonitorHandler(hub.NewMonitorService(chatHub))

	return &Container{
		ChatHandler:    chatHandler,
		MonitorHandler: monitorHandler,
		Hub:            chatHub,
		Config:         *config,
		Logger:         logger,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
