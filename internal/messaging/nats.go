// Package messaging provides the NATS transport for the moderation
// service. The message-delivery service calls moderation synchronously
// over request/reply before persisting a message; report intake and
// administrative calls arrive as plain publishes.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects served by the moderation service.
const (
	// SubjectCheck is the request/reply subject for inline moderation.
	SubjectCheck = "moderation.check"

	// SubjectReportSubmit is the request/reply subject for report intake.
	SubjectReportSubmit = "moderation.report.submit"

	// SubjectUserStatus is the request/reply subject for reputation reads.
	SubjectUserStatus = "moderation.status"

	// Administrative subjects.
	SubjectRuleAdd      = "moderation.rule.add"
	SubjectRuleRemove   = "moderation.rule.remove"
	SubjectConfigUpdate = "moderation.config.update"
)

// CheckRequest asks for a verdict on one outgoing message.
type CheckRequest struct {
	MessageID      string `json:"message_id,omitempty"`
	SenderID       string `json:"sender_id"`
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
}

// ReportRequest files an abuse report.
type ReportRequest struct {
	MessageID      string `json:"message_id"`
	ReporterID     string `json:"reporter_id"`
	ReportedUserID string `json:"reported_user_id"`
	Reason         string `json:"reason"`
	Category       string `json:"category"`
	Description    string `json:"description,omitempty"`
}

// ReportReply acknowledges report intake.
type ReportReply struct {
	ReportID string `json:"report_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StatusRequest asks for one user's reputation record.
type StatusRequest struct {
	UserID string `json:"user_id"`
}

// RuleRemoveRequest removes a custom rule by id.
type RuleRemoveRequest struct {
	RuleID string `json:"rule_id"`
}

// Client wraps the NATS connection with helper methods for the moderation
// subjects.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "tangle-moderation",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewClient connects to NATS with the given config and returns a ready
// client. It returns an error if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup. Handlers on request/reply
// subjects answer via msg.Respond.
func (c *Client) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// Publish sends data to the given NATS subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Close unsubscribes everything and drains the connection.
func (c *Client) Close() {
	c.mu.Lock()
	for subject, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("[nats] unsubscribe %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)
	c.mu.Unlock()

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] drain: %v", err)
	}
}
