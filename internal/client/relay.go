package client

import (
	"context"
	"strings"

	"github.com/hyperjump/vectorpipe/internal/protocol"
)

// Relay forwards a stream of raw lines, tracking the session state so that it
// only waits for a reply when the server will send one.
type Relay struct {
	client        *Client
	initialized   bool
	pendingUpdate bool
}

// NewRelay wraps c.
func NewRelay(c *Client) *Relay {
	return &Relay{client: c}
}

// Forward sends line. ok is false when the server does not reply to it.
func (r *Relay) Forward(ctx context.Context, line string) (reply string, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case r.pendingUpdate:
		r.pendingUpdate = false
		reply, err = r.client.Send(ctx, line)
	case trimmed == "":
		return "", false, r.client.Write(ctx, line)
	case !r.initialized:
		reply, err = r.client.Send(ctx, line)
		if err == nil && reply == protocol.ReplyInitialized {
			r.initialized = true
		}
	case strings.EqualFold(trimmed, protocol.UpdateCommand):
		r.pendingUpdate = true
		return "", false, r.client.Write(ctx, line)
	default:
		reply, err = r.client.Send(ctx, line)
	}
	if err != nil {
		return "", false, err
	}
	return reply, true, nil
}
