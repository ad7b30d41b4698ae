package pubsub

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Client wraps the Pub/Sub SDK behind the two operations the workers need.
type Client struct {
	client    *gcppubsub.Client
	publisher *gcppubsub.Publisher
	cfg       config.PubSubConfig
}

// New connects to Pub/Sub and binds the order-events topic.
func New(ctx context.Context, cfg config.PubSubConfig) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pubsub project id is required")
	}
	client, err := gcppubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "create pubsub client")
	}
	return &Client{
		client:    client,
		publisher: client.Publisher(cfg.OrderEventsTopic),
		cfg:       cfg,
	}, nil
}

// Close flushes pending publishes and releases the connection.
func (c *Client) Close() error {
	c.publisher.Stop()
	return c.client.Close()
}

// Publish sends one message to the order-events topic and waits for the
// server id.
func (c *Client) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	result := c.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	id, err := result.Get(ctx)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return "", pkgerrors.Wrap(err, pkgerrors.CodeInternal, "pubsub topic missing")
		}
		return "", pkgerrors.Wrap(err, pkgerrors.CodeDependency, "publish message")
	}
	return id, nil
}

// Receive pulls from the reports subscription, invoking handler per message.
// A handler error nacks for redelivery. Blocks until ctx is cancelled.
func (c *Client) Receive(ctx context.Context, handler func(ctx context.Context, data []byte, attributes map[string]string) error) error {
	sub := c.client.Subscriber(c.cfg.ReportsSub)
	err := sub.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		if err := handler(ctx, msg.Data, msg.Attributes); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "receive from subscription")
	}
	return nil
}
