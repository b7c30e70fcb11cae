package tdjson

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Do sends request and waits for its response, matched through the "@extra"
// field. A fresh UUID is used as "@extra" unless the request already carries
// one; request itself is not modified.
//
// Objects received in the meantime that answer something else are handed to
// Config.OnUpdate. A TDLib "error" response is returned as a *TDError.
func (c *Client) Do(ctx context.Context, request Object) (Object, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	req := make(Object, len(request)+1)
	for k, v := range request {
		req[k] = v
	}
	extra, ok := req.Extra()
	if !ok {
		extra = uuid.NewString()
		req["@extra"] = extra
	}
	key := extraKey(extra)

	if err := c.Send(req); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obj, err := c.Receive(c.pollTimeout(ctx))
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}

		if v, ok := obj.Extra(); ok && extraKey(v) == key {
			if err := obj.Err(); err != nil {
				return nil, err
			}
			return obj, nil
		}
		c.dispatch(ctx, obj)
	}
}

func (c *Client) pollTimeout(ctx context.Context) time.Duration {
	wait := c.cfg.PollInterval
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < wait {
			wait = max(left, 0)
		}
	}
	return wait
}

func (c *Client) dispatch(ctx context.Context, obj Object) {
	if c.cfg.OnUpdate == nil {
		c.logger.Debug(ctx, "dropping update", "type", obj.Type())
		return
	}
	c.cfg.OnUpdate(obj)
}
