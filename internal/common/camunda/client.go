// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig controls how long startup waits for the broker.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// NewClientWithConfig connects to the gateway and waits for a topology
// response, backing off exponentially between attempts.
func NewClientWithConfig(ctx context.Context, config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.ConnectionTimeout <= 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}

	attempts := config.RetryConfig.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err = c.HealthCheck(ctx)
		if err == nil {
			return c, nil
		}
		if attempt >= attempts {
			break
		}

		delay := config.RetryConfig.delay(attempt)
		log.WithError(err).Warn("Zeebe broker not reachable, retrying", map[string]interface{}{
			"address":     config.GatewayAddress,
			"attempt":     attempt,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			zeebeClient.Close()
			return nil, apperrors.NewExternalServiceError("zeebe",
				fmt.Errorf("connect to broker at %s: %w", config.GatewayAddress, ctx.Err()))
		}
	}

	zeebeClient.Close()
	return nil, apperrors.NewExternalServiceError("zeebe",
		fmt.Errorf("connect to broker at %s after %d attempts: %w", config.GatewayAddress, attempts, err))
}

// delay returns the wait after the given 1-based attempt.
func (r *RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay << (attempt - 1)
	if d <= 0 || d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// GetClient returns the raw Zeebe client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for the cluster topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
