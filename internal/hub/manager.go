package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rohitnarwariya/PlaceReady-1/internal/event"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

// UserTopic is the subscription topic carrying a user's conversation-list
// snapshots (conversations + pending requests addressed to them).
func UserTopic(userID string) string {
	return "user:" + userID
}

// ConversationTopic is the subscription topic carrying one conversation's
// message-list snapshots.
func ConversationTopic(conversationID string) string {
	return "conv:" + conversationID
}

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

type clientBucket struct {
	sync.RWMutex
	topics map[string]map[string]*Client
}

type Hub struct {
	shards         [shardCount]*clientBucket
	register       chan *Client
	unregister     chan *Client
	inbound        chan inboundMessage
	notifier       *Notifier
	allowedOrigins map[string]struct{}
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

func NewHub(allowedOrigins []string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		register:       make(chan *Client, 1024),
		unregister:     make(chan *Client, 1024),
		inbound:        make(chan inboundMessage, 4096), // buffer for burst handling
		allowedOrigins: make(map[string]struct{}, len(allowedOrigins)),
		ctx:            ctx,
		cancel:         cancel,
	}

	for _, origin := range allowedOrigins {
		h.allowedOrigins[origin] = struct{}{}
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &clientBucket{
			topics: make(map[string]map[string]*Client),
		}
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}

					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

// SetNotifier wires the snapshot publisher. The notifier needs the hub to
// publish, so it cannot be passed at construction time.
func (h *Hub) SetNotifier(n *Notifier) {
	h.notifier = n
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventSubscribe:
		var sub event.SubscribePayload
		if err := json.Unmarshal(ev.Payload, &sub); err != nil {
			log.Printf("failed to unmarshal subscribe payload from %s: %v", c.ID, err)
			return
		}
		h.handleSubscribe(c, sub.ConversationID)
	case event.EventUnsubscribe:
		var sub event.SubscribePayload
		if err := json.Unmarshal(ev.Payload, &sub); err != nil {
			log.Printf("failed to unmarshal unsubscribe payload from %s: %v", c.ID, err)
			return
		}
		h.unsubscribe(c, ConversationTopic(sub.ConversationID))
	default:
		log.Printf("unknown event type: %s", ev.Event)
	}
}

// handleSubscribe joins a client to a conversation topic after a participant
// check, then pushes the current message snapshot so the client does not
// have to wait for the next mutation.
func (h *Hub) handleSubscribe(c *Client, conversationID string) {
	if conversationID == "" || h.notifier == nil {
		return
	}

	if !h.notifier.authorizeSubscribe(conversationID, c.userID) {
		c.SafeSend(forbiddenEvent(conversationID), sendTimeout)
		log.Printf("subscribe denied for user %s on conversation %s", c.userID, conversationID)
		return
	}

	h.subscribe(c, ConversationTopic(conversationID))
	h.notifier.pushMessagesTo(c, conversationID)
}

func forbiddenEvent(conversationID string) event.WsEvent {
	payload, _ := json.Marshal(event.ErrorPayload{
		Code:    "forbidden",
		Message: "not a participant of this conversation",
	})
	return event.WsEvent{
		Event:   event.EventError,
		Topic:   ConversationTopic(conversationID),
		Payload: payload,
	}
}

// publish delivers an event to every client subscribed to the topic.
func (h *Hub) publish(topic string, ev event.WsEvent) {
	sh := getShard(topic)
	b := h.shards[sh]

	// collect clients while holding RLock
	b.RLock()
	room, ok := b.topics[topic]
	if !ok || len(room) == 0 {
		b.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room))
	for _, c := range room {
		clients = append(clients, c)
	}
	b.RUnlock()

	// deliver to clients without holding lock
	for _, c := range clients {
		// try enqueue with timeout
		select {
		case c.egress <- ev:
			// enqueued
		case <-time.After(sendTimeout):
			// egress full -> apply policy
			log.Printf("egress full for client %s on topic %s", c.ID, topic)
			if kickOnFull {
				// Unregister (safe async)
				h.unregister <- c
			} else {
				// drop message (do nothing)
			}
		}
	}
}

func getShard(topic string) uint32 {
	if topic == "" {
		return 0
	}

	h := sha1.Sum([]byte(topic))
	return binary.BigEndian.Uint32(h[:4]) % shardCount
}

func (h *Hub) subscribe(c *Client, topic string) {
	sh := getShard(topic)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	room, ok := b.topics[topic]
	if !ok {
		room = make(map[string]*Client)
		b.topics[topic] = room
	}

	room[c.ID] = c
	c.addTopic(topic)
	log.Printf("client %s subscribed to topic %s (shard %d)", c.ID, topic, sh)
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	sh := getShard(topic)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	if room, ok := b.topics[topic]; ok {
		delete(room, c.ID)
		if len(room) == 0 {
			delete(b.topics, topic)
		}
	}
	c.removeTopic(topic)
}

// addClient registers the connection and auto-subscribes it to its own user
// topic, then pushes the initial conversation-list snapshot.
func (h *Hub) addClient(c *Client) {
	h.subscribe(c, UserTopic(c.userID))

	if h.notifier != nil {
		go h.notifier.pushConversationsTo(c)
	}
}

func (h *Hub) removeClient(c *Client) {
	for _, topic := range c.Topics() {
		h.unsubscribe(c, topic)
	}

	c.Close()
	log.Printf("client %s removed (user %s)", c.ID, c.userID)
}

func (h *Hub) Stop() {
	h.cancel()

	// Close all client connections
	for _, shard := range h.shards {
		shard.RLock()
		for _, room := range shard.topics {
			for _, client := range room {
				client.Close()
			}
		}
		shard.RUnlock()
	}

	close(h.inbound)
	h.wg.Wait()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	_, ok := h.allowedOrigins[origin]
	return ok
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(userID, conn, h)
}
