package service

// Notifier pushes full current-state snapshots to live subscribers after a
// mutation. At-least-once: a duplicate notification re-sends the same
// snapshot, so replays are harmless. Implementations must tolerate concurrent
// calls.
type Notifier interface {
	// ConversationsChanged re-broadcasts the conversation-list snapshot
	// (conversations + pending requests) for each listed user.
	ConversationsChanged(userIDs ...string)

	// MessagesChanged re-broadcasts the message-list snapshot for the
	// conversation.
	MessagesChanged(conversationID string)
}

// NoopNotifier discards all notifications. Used in tests and tooling that
// runs without the hub.
type NoopNotifier struct{}

func (NoopNotifier) ConversationsChanged(...string) {}
func (NoopNotifier) MessagesChanged(string)         {}
