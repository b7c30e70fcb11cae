package tdjson

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/tdlib-go/tdjson-go/internal/bindings"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
)

// Handle identifies one native client instance.
type Handle = bindings.Handle

// Native is the C surface of the tdjson library. Open uses the dynamically
// loaded library; tests and tools can supply their own implementation, such
// as the one in package loopback, through OpenNative.
type Native interface {
	CreateClient() (Handle, error)
	Send(h Handle, request []byte)
	Receive(h Handle, timeout float64) ([]byte, bool)
	Execute(h Handle, request []byte) ([]byte, bool)
	Destroy(h Handle)
	SetLogVerbosityLevel(level int) bool
}

// Client owns exactly one native client handle.
//
// A Client is not safe for concurrent use: the caller must serialize calls,
// and no call may overlap with Close.
type Client struct {
	native Native
	handle Handle
	cfg    Config
	logger logging.Logger
	closed bool
}

// Open loads the tdjson library, applies cfg.LogLevel and creates a client.
func Open(cfg Config) (*Client, error) {
	path, err := cfg.libraryPath(CurrentPlatform())
	if err != nil {
		return nil, err
	}

	lib, err := bindings.Load(path)
	if err != nil {
		return nil, remapError(path, err)
	}

	return OpenNative(lib, cfg)
}

// OpenNative creates a client on an already loaded native library.
func OpenNative(n Native, cfg Config) (*Client, error) {
	if n == nil {
		return nil, &LoadError{Err: errors.New("nil native library")}
	}
	cfg = cfg.withDefaults()

	c := &Client{native: n, cfg: cfg, logger: cfg.Logger}
	c.setLogVerbosity(cfg.LogLevel)

	h, err := n.CreateClient()
	if err != nil {
		return nil, remapError("", err)
	}
	c.handle = h
	c.logger = c.logger.With("client", uintptr(h))
	runtime.SetFinalizer(c, func(c *Client) { _ = c.Close() })

	c.logger.Debug(context.Background(), "client created")
	return c, nil
}

// setLogVerbosity uses td_set_log_verbosity_level when exported and falls
// back to the setLogVerbosityLevel request otherwise. Execute accepts a NULL
// client for this request.
func (c *Client) setLogVerbosity(level int) {
	if c.native.SetLogVerbosityLevel(level) {
		return
	}
	req, err := encodeRequest(Object{"@type": "setLogVerbosityLevel", "new_verbosity_level": level})
	if err != nil {
		return
	}
	if _, ok := c.native.Execute(0, req); !ok {
		c.logger.Warn(context.Background(), "native log verbosity not applied", "level", level)
	}
}

// Send encodes request as JSON and queues it in the native library. The
// result, if any, is observed through Receive.
func (c *Client) Send(request any) error {
	if err := c.check(); err != nil {
		return err
	}

	data, err := encodeRequest(request)
	if err != nil {
		return err
	}
	defer ZeroizeBytes(data)

	c.logger.Debug(context.Background(), "send", "type", requestType(request), logging.Redacted("payload"))
	c.native.Send(c.handle, data)
	runtime.KeepAlive(c)
	return nil
}

// Receive waits up to timeout for the next update or response. It returns
// (nil, nil) when nothing arrived in time.
func (c *Client) Receive(timeout time.Duration) (Object, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}

	data, ok := c.native.Receive(c.handle, timeout.Seconds())
	runtime.KeepAlive(c)
	if !ok {
		return nil, nil
	}
	return c.decode("receive", data)
}

// Execute runs request synchronously. Only a few request kinds are accepted
// by TDLib; for the others it returns (nil, nil).
func (c *Client) Execute(request any) (Object, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	data, err := encodeRequest(request)
	if err != nil {
		return nil, err
	}
	defer ZeroizeBytes(data)

	c.logger.Debug(context.Background(), "execute", "type", requestType(request), logging.Redacted("payload"))
	res, ok := c.native.Execute(c.handle, data)
	runtime.KeepAlive(c)
	if !ok {
		return nil, nil
	}
	return c.decode("execute", res)
}

func (c *Client) decode(op string, data []byte) (Object, error) {
	obj, err := decodeObject(data)
	ZeroizeBytes(data)
	if err != nil {
		c.logger.Error(context.Background(), "native library returned malformed output", "op", op, "error", err)
		return nil, err
	}
	c.logger.Debug(context.Background(), op, "type", obj.Type())
	return obj, nil
}

// Close destroys the native client. It must be called exactly once; later
// calls, and any other method called after Close, return ErrClientClosed.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.closed {
		return ErrClientClosed
	}

	runtime.SetFinalizer(c, nil)
	c.native.Destroy(c.handle)
	c.handle = 0
	c.closed = true

	c.logger.Debug(context.Background(), "client destroyed")
	return nil
}

func (c *Client) check() error {
	if c == nil || c.closed {
		return ErrClientClosed
	}
	return nil
}
