// Package redisclient stores attendance overrides in Redis so every API
// instance shows the same pending status.
package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// Commander is the subset of *redis.Client used by the overlay
type Commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Overlay is an attendance.Overlay whose overrides expire through Redis key TTLs
type Overlay struct {
	client Commander
	window time.Duration
}

// NewOverlay creates an overlay. A window of zero or less uses
// attendance.DefaultRevertWindow.
func NewOverlay(client Commander, window time.Duration) *Overlay {
	if window <= 0 {
		window = attendance.DefaultRevertWindow
	}
	return &Overlay{client: client, window: window}
}

// Connect creates a Redis client and checks that it is reachable
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Set stores an override that expires after the revert window
func (o *Overlay) Set(ctx context.Context, key attendance.Key, status model.AttendanceStatus) error {
	if err := o.client.Set(ctx, key.String(), string(status), o.window).Err(); err != nil {
		return fmt.Errorf("failed to store attendance override: %w", err)
	}
	return nil
}

// Get returns the pending override for key, if it has not expired
func (o *Overlay) Get(ctx context.Context, key attendance.Key) (model.AttendanceStatus, bool, error) {
	value, err := o.client.Get(ctx, key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load attendance override: %w", err)
	}

	status, err := model.ParseAttendanceStatus(value)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse attendance override: %w", err)
	}
	return status, true, nil
}
