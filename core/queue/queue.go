package queue

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names. Sync work is request-triggered: tasks are enqueued by web
// handlers, never by a scheduler.
const (
	TypeAvailabilitySync = "availability:sync"
)

type AvailabilitySyncPayload struct {
	AccountID uuid.UUID `json:"account_id"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) asynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

// Client enqueues background sync tasks.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{client: asynq.NewClient(cfg.asynqOpt())}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueAvailabilitySync queues a full availability re-sync for an account.
func (c *Client) EnqueueAvailabilitySync(accountID uuid.UUID) error {
	payload, err := json.Marshal(AvailabilitySyncPayload{AccountID: accountID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeAvailabilitySync, payload, asynq.MaxRetry(3))
	_, err = c.client.Enqueue(task)
	return err
}

// NewServer builds the asynq worker server; handlers are registered on the
// returned mux by the owning modules.
func NewServer(cfg RedisConfig, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(cfg.asynqOpt(), asynq.Config{Concurrency: concurrency})
	return srv, asynq.NewServeMux()
}
