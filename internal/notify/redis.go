package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/project-task-api/internal/models"
)

// Publisher pushes stored notifications to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, notification *models.Notification) error
}

// Message is the payload sent on a user's channel.
type Message struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisClient creates a Redis client and performs a health check.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// RedisPublisher publishes notifications on one pub/sub channel per user.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher creates a publisher using channels named prefix+userID.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the channel a user's client subscribes to.
func (p *RedisPublisher) Channel(userID uint64) string {
	return fmt.Sprintf("%s%d", p.prefix, userID)
}

// Publish sends the notification to its target's channel.
func (p *RedisPublisher) Publish(ctx context.Context, notification *models.Notification) error {
	payload, err := json.Marshal(NewMessage(notification))
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, p.Channel(notification.UserID), payload).Err()
}

// NewMessage converts a stored notification into its wire payload.
func NewMessage(notification *models.Notification) Message {
	return Message{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Link:      notification.Link,
		CreatedAt: notification.CreatedAt,
	}
}
