package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/auth_service/internal/models"
)

type Indexer interface {
	IndexSession(ctx context.Context, s models.Session) error
}

type Nop struct{}

func (Nop) IndexSession(context.Context, models.Session) error { return nil }

type ESIndexer struct {
	Client *elasticsearch.Client
	Index  string
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// NewESIndexer returns Nop when no URL is configured.
func NewESIndexer(cfg Config) (Indexer, error) {
	if cfg.URL == "" {
		return Nop{}, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &ESIndexer{Client: client, Index: cfg.Index}, nil
}

type sessionDoc struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *ESIndexer) IndexSession(ctx context.Context, s models.Session) error {
	body, err := json.Marshal(sessionDoc{
		SessionID: s.ID.String(),
		UserID:    s.UserID.String(),
		UserAgent: s.UserAgent,
		Action:    s.Action,
		CreatedAt: s.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := i.Client.Index(
		i.Index,
		bytes.NewReader(body),
		i.Client.Index.WithDocumentID(s.ID.String()),
		i.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index session: %s: %s", res.Status(), msg)
	}
	return nil
}
