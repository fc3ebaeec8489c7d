// Package notify hands order confirmation emails to the mail service.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"storefront/internal/models"
)

// Mailer sends the order confirmation. Callers treat delivery as best-effort.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

// DefaultQueue is the Redis list the mail service consumes.
const DefaultQueue = "mail:order-confirmation"

type ConfirmationJob struct {
	Template  string    `json:"template"`
	To        string    `json:"to"`
	OrderID   string    `json:"orderId"`
	SessionID string    `json:"sessionId"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	Items     []JobItem `json:"items"`
	Relay     *JobRelay `json:"relay,omitempty"`
	QueuedAt  time.Time `json:"queuedAt"`
}

type JobItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type JobRelay struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func NewConfirmationJob(order models.Order) ConfirmationJob {
	job := ConfirmationJob{
		Template:  "order-confirmation",
		To:        order.Email,
		OrderID:   order.ID.Hex(),
		SessionID: order.SessionID,
		Total:     order.Total,
		Currency:  order.Currency,
		Items:     make([]JobItem, 0, len(order.Items)),
		QueuedAt:  time.Now().UTC(),
	}
	for _, item := range order.Items {
		job.Items = append(job.Items, JobItem{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	if order.Relay != nil {
		job.Relay = &JobRelay{Name: order.Relay.Name, Address: order.Relay.Address}
	}
	return job
}

// RedisMailer pushes confirmation jobs onto a Redis list.
type RedisMailer struct {
	rdb   *redis.Client
	queue string
}

func NewRedisMailer(url string) (*RedisMailer, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisMailer{rdb: redis.NewClient(opt), queue: DefaultQueue}, nil
}

func NewRedisMailerWithClient(rdb *redis.Client, queue string) *RedisMailer {
	return &RedisMailer{rdb: rdb, queue: queue}
}

func (m *RedisMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(NewConfirmationJob(order))
	if err != nil {
		return err
	}
	return m.rdb.RPush(ctx, m.queue, data).Err()
}

func (m *RedisMailer) Close() error {
	return m.rdb.Close()
}

// LogMailer only logs. It is used when no mail queue is configured.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	log.Printf("[MAIL] [INFO] order confirmation for %s to %s (total %.2f)", order.ID.Hex(), order.Email, order.Total)
	return nil
}
