package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation represents a two-party consultation thread in MongoDB. One is
// created per accepted chat request, never by direct user action. Participant
// names are denormalized at creation time and not re-synced afterwards.
type Conversation struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserAID     string             `json:"userAId" bson:"user_a_id"`
	UserBID     string             `json:"userBId" bson:"user_b_id"`
	UserAName   string             `json:"userAName" bson:"user_a_name"`
	UserBName   string             `json:"userBName" bson:"user_b_name"`
	Domain      string             `json:"domain" bson:"domain"`
	LastMessage string             `json:"lastMessage" bson:"last_message"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
	SeenBy      []string           `json:"seenBy" bson:"seen_by"`
}

// ReadState is the per-participant view of seen_by. The conversation is
// strictly two-party, so the check is exhaustive by construction.
type ReadState struct {
	UserA bool `json:"userA"`
	UserB bool `json:"userB"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.UserAID || userID == c.UserBID)
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not a participant.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	}
	return ""
}

// ReadState converts the stored seen_by array into the typed per-participant
// form.
func (c *Conversation) ReadState() ReadState {
	var rs ReadState
	for _, id := range c.SeenBy {
		switch id {
		case c.UserAID:
			rs.UserA = true
		case c.UserBID:
			rs.UserB = true
		}
	}
	return rs
}

// UnreadFor reports whether the participant has not yet observed the
// conversation's current state. Non-participants are never "unread".
func (c *Conversation) UnreadFor(userID string) bool {
	if !c.HasParticipant(userID) {
		return false
	}
	rs := c.ReadState()
	if userID == c.UserAID {
		return !rs.UserA
	}
	return !rs.UserB
}
