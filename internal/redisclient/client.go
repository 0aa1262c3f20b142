package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"marketplace-service/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Client stores wallet session tokens. A token proves a recent PIN
// verification; Redis TTL gives the fixed session lifetime and re-login
// replaces the previous token so one session per account is live.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func sessionKey(token string) string {
	return "wallet:session:" + token
}

func accountKey(accountID int64) string {
	return fmt.Sprintf("wallet:session:account:%d", accountID)
}

// CreateWalletSession issues a fresh session token for the account and
// invalidates any previous one.
func (c *Client) CreateWalletSession(ctx context.Context, accountID int64, ttl time.Duration) (string, error) {
	prev, err := c.rdb.Get(ctx, accountKey(accountID)).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("looking up previous session: %w", err)
	}

	token := uuid.New().String()

	pipe := c.rdb.TxPipeline()
	if prev != "" {
		pipe.Del(ctx, sessionKey(prev))
	}
	pipe.Set(ctx, sessionKey(token), strconv.FormatInt(accountID, 10), ttl)
	pipe.Set(ctx, accountKey(accountID), token, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing wallet session: %w", err)
	}
	return token, nil
}

// GetWalletSession resolves a token to its wallet account id. Unknown
// or expired tokens surface as ErrSessionExpired.
func (c *Client) GetWalletSession(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return 0, models.ErrSessionExpired
	}
	if err != nil {
		return 0, fmt.Errorf("looking up wallet session: %w", err)
	}

	accountID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", val, err)
	}
	return accountID, nil
}

// RevokeWalletSession removes a session token before its TTL ends.
func (c *Client) RevokeWalletSession(ctx context.Context, token string) error {
	accountID, err := c.GetWalletSession(ctx, token)
	if err != nil {
		if err == models.ErrSessionExpired {
			return nil
		}
		return err
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.Del(ctx, accountKey(accountID))
	_, err = pipe.Exec(ctx)
	return err
}
