package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request status values
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// RequestReason is the enumerated reason a student gives when asking a
// senior for a consultation.
type RequestReason string

const (
	ReasonInternship RequestReason = "Internship"
	ReasonSkills     RequestReason = "Skills"
	ReasonCGPA       RequestReason = "CGPA"
	ReasonPlacement  RequestReason = "Placement"
)

// MaxRequestMessageLen bounds the free-text message on a chat request.
const MaxRequestMessageLen = 300

// Valid reports whether the reason is one of the fixed enumeration.
func (r RequestReason) Valid() bool {
	switch r {
	case ReasonInternship, ReasonSkills, ReasonCGPA, ReasonPlacement:
		return true
	}
	return false
}

// ChatRequest represents a pending/resolved consultation request in MongoDB.
// Status moves pending -> accepted or pending -> rejected exactly once and
// never reverses; accepted requests are kept as an audit trail.
type ChatRequest struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FromUserID   string             `json:"fromUserId" bson:"from_user_id"`
	FromUserName string             `json:"fromUserName" bson:"from_user_name"`
	ToUserID     string             `json:"toUserId" bson:"to_user_id"`
	ToUserName   string             `json:"toUserName" bson:"to_user_name"`
	Domain       string             `json:"domain" bson:"domain"`
	Reason       RequestReason      `json:"reason" bson:"reason"`
	Message      string             `json:"message" bson:"message"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
}

// Pending reports whether the request is still awaiting a decision.
func (r *ChatRequest) Pending() bool {
	return r.Status == RequestPending
}
