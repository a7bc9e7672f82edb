package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/rohitnarwariya/PlaceReady-1/internal/configuration"
	"github.com/rohitnarwariya/PlaceReady-1/internal/handler"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/pr/api")
	chatRoute.Use(handler.RequireIdentity())
	{
		chatRoute.POST("/requests", container.ChatHandler.SubmitRequest)
		chatRoute.GET("/requests/pending", container.ChatHandler.ListPendingRequests)
		chatRoute.POST("/requests/:requestId/resolve", container.ChatHandler.ResolveRequest)

		chatRoute.GET("/conversations", container.ChatHandler.ListConversations)
		chatRoute.GET("/conversations/:conversationId", container.ChatHandler.GetConversation)
		chatRoute.GET("/conversations/:conversationId/messages", container.ChatHandler.ListMessages)
		chatRoute.POST("/conversations/:conversationId/messages", container.ChatHandler.SendMessage)
		chatRoute.POST("/conversations/:conversationId/read", container.ChatHandler.MarkRead)
	}
}
