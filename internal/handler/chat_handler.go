package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rohitnarwariya/PlaceReady-1/internal/apperr"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
	"github.com/rohitnarwariya/PlaceReady-1/internal/service"
)

type ChatHandler interface {
	SubmitRequest(c *gin.Context)
	ResolveRequest(c *gin.Context)
	ListPendingRequests(c *gin.Context)
	ListConversations(c *gin.Context)
	GetConversation(c *gin.Context)
	SendMessage(c *gin.Context)
	ListMessages(c *gin.Context)
	MarkRead(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) ChatHandler {
	return &chatHandler{
		service: service,
	}
}

type submitRequestBody struct {
	ToUserID   string `json:"toUserId"`
	ToUserName string `json:"toUserName"`
	Domain     string `json:"domain"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

type resolveRequestBody struct {
	Decision string `json:"decision"`
}

type sendMessageBody struct {
	Text string `json:"text"`
}

func (h *chatHandler) SubmitRequest(c *gin.Context) {
	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.service.SubmitRequest(c.Request.Context(), service.SubmitRequestInput{
		FromUserID:   callerID(c),
		FromUserName: callerName(c),
		ToUserID:     body.ToUserID,
		ToUserName:   body.ToUserName,
		Domain:       body.Domain,
		Reason:       model.RequestReason(body.Reason),
		Message:      body.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request": req,
	})
}

func (h *chatHandler) ResolveRequest(c *gin.Context) {
	requestID := c.Param("requestId")

	var body resolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	conversation, err := h.service.ResolveRequest(c.Request.Context(), requestID, body.Decision, callerID(c), callerName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if conversation == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": body.Decision,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         body.Decision,
		"conversationId": conversation.ID.Hex(),
		"conversation":   conversation,
	})
}

func (h *chatHandler) ListPendingRequests(c *gin.Context) {
	requests, err := h.service.ListPendingRequests(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

func (h *chatHandler) ListConversations(c *gin.Context) {
	conversations, err := h.service.ListConversations(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

func (h *chatHandler) GetConversation(c *gin.Context) {
	conversation, err := h.service.GetConversation(c.Request.Context(), c.Param("conversationId"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conversation,
	})
}

func (h *chatHandler) SendMessage(c *gin.Context) {
	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), c.Param("conversationId"), callerID(c), body.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	// Synchronous ack: the caller gets the stored id and server timestamp,
	// so "delivered" is never assumed optimistically.
	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}

func (h *chatHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("conversationId"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

func (h *chatHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("conversationId"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{
		"error": err.Error(),
	})
}
