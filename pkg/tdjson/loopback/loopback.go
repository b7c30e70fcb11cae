package loopback

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
)

const queueSize = 1024

// DefaultSynchronous lists the request types Execute answers by default.
var DefaultSynchronous = []string{
	"getOption",
	"setLogVerbosityLevel",
	"getLogVerbosityLevel",
	"getTextEntities",
	"parseTextEntities",
}

// Library is a fake tdjson library. Each client gets its own queue; Send
// appends the raw request to it and Receive pops from it.
type Library struct {
	mu        sync.Mutex
	next      tdjson.Handle
	queues    map[tdjson.Handle]chan []byte
	destroyed map[tdjson.Handle]int
	sync      map[string]bool
	logLevel  int

	// LegacyLogAPI makes SetLogVerbosityLevel succeed, as libraries older
	// than TDLib 1.8 do. When false the client falls back to Execute.
	LegacyLogAPI bool

	// Version is reported for getOption "version".
	Version string
}

// New returns a Library answering DefaultSynchronous request types.
func New() *Library {
	l := &Library{
		queues:    make(map[tdjson.Handle]chan []byte),
		destroyed: make(map[tdjson.Handle]int),
		sync:      make(map[string]bool),
		Version:   "loopback",
	}
	for _, t := range DefaultSynchronous {
		l.sync[t] = true
	}
	return l
}

// AllowSynchronous adds request types that Execute echoes.
func (l *Library) AllowSynchronous(types ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range types {
		l.sync[t] = true
	}
}

func (l *Library) CreateClient() (tdjson.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.queues[l.next] = make(chan []byte, queueSize)
	return l.next, nil
}

func (l *Library) Send(h tdjson.Handle, request []byte) {
	l.Inject(h, request)
}

// Inject queues raw text for h as if the native library had produced it.
// Unknown handles and full queues drop the text.
func (l *Library) Inject(h tdjson.Handle, text []byte) {
	q := l.queue(h)
	if q == nil {
		return
	}
	msg := make([]byte, len(text))
	copy(msg, text)
	select {
	case q <- msg:
	default:
	}
}

func (l *Library) Receive(h tdjson.Handle, timeout float64) ([]byte, bool) {
	q := l.queue(h)
	if q == nil {
		return nil, false
	}
	if timeout <= 0 {
		select {
		case msg := <-q:
			return msg, true
		default:
			return nil, false
		}
	}

	timer := time.NewTimer(waitDuration(timeout))
	defer timer.Stop()
	select {
	case msg := <-q:
		return msg, true
	case <-timer.C:
		return nil, false
	}
}

func (l *Library) Execute(_ tdjson.Handle, request []byte) ([]byte, bool) {
	var head struct {
		Type  string `json:"@type"`
		Name  string `json:"name"`
		Level int    `json:"new_verbosity_level"`
		Extra any    `json:"@extra,omitempty"`
	}
	if err := json.Unmarshal(request, &head); err != nil {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.sync[head.Type] {
		return nil, false
	}

	switch {
	case head.Type == "getOption" && head.Name == "version":
		return reply(map[string]any{"@type": "optionValueString", "value": l.Version, "@extra": head.Extra})
	case head.Type == "setLogVerbosityLevel":
		l.logLevel = head.Level
		return reply(map[string]any{"@type": "ok", "@extra": head.Extra})
	case head.Type == "getLogVerbosityLevel":
		return reply(map[string]any{"@type": "logVerbosityLevel", "verbosity_level": l.logLevel, "@extra": head.Extra})
	}

	out := make([]byte, len(request))
	copy(out, request)
	return out, true
}

func (l *Library) Destroy(h tdjson.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.queues, h)
	l.destroyed[h]++
}

func (l *Library) SetLogVerbosityLevel(level int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.LegacyLogAPI {
		return false
	}
	l.logLevel = level
	return true
}

// LogLevel returns the last verbosity level applied by either API.
func (l *Library) LogLevel() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logLevel
}

// DestroyCount reports how many times h was destroyed.
func (l *Library) DestroyCount(h tdjson.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.destroyed[h]
}

func (l *Library) queue(h tdjson.Handle) chan []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queues[h]
}

// waitDuration converts a timeout in seconds, saturating at the largest
// time.Duration.
func waitDuration(seconds float64) time.Duration {
	d := seconds * float64(time.Second)
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func reply(v map[string]any) ([]byte, bool) {
	if v["@extra"] == nil {
		delete(v, "@extra")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

var _ tdjson.Native = (*Library)(nil)
