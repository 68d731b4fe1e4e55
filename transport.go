package ludora

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"nhooyr.io/websocket"
)

// ============================================================================
// Stream Transport
// ============================================================================

type transportKind string

const (
	transportSSE transportKind = "sse"
	transportWS  transportKind = "ws"
)

// transportCallbacks wires a transport to its connection controller.
// onError fires at most once and is terminal for the transport.
type transportCallbacks struct {
	onOpen    func()
	onMessage func(data []byte)
	onError   func(err error)
}

// streamTransport delivers raw realtime frames from the server. Exactly one
// transport is live per client at any time; stop is idempotent and silences
// all further callbacks via context cancellation.
type streamTransport interface {
	start()
	stop()
}

func newTransport(kind transportKind, url, token string, httpClient *http.Client, cb transportCallbacks) streamTransport {
	ctx, cancel := context.WithCancel(context.Background())
	switch kind {
	case transportWS:
		return &wsTransport{url: url, token: token, httpClient: httpClient, cb: cb, ctx: ctx, cancel: cancel}
	default:
		return &sseTransport{url: url, token: token, httpClient: httpClient, cb: cb, ctx: ctx, cancel: cancel}
	}
}

// ============================================================================
// SSE Transport
// ============================================================================

// maxSSELine caps a single SSE line; larger frames are a protocol error.
const maxSSELine = 64 * 1024

type sseTransport struct {
	url        string
	token      string
	httpClient *http.Client
	cb         transportCallbacks

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func (t *sseTransport) start() {
	go t.run()
}

func (t *sseTransport) stop() {
	t.stopOnce.Do(t.cancel)
}

func (t *sseTransport) run() {
	req, err := http.NewRequestWithContext(t.ctx, "GET", t.url, nil)
	if err != nil {
		t.fail(fmt.Errorf("create stream request: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.fail(fmt.Errorf("stream connect: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.fail(fmt.Errorf("stream returned HTTP %d", resp.StatusCode))
		return
	}

	t.cb.onOpen()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 4096), maxSSELine)

	// An SSE event is one or more "data:" lines terminated by a blank
	// line; comments start with ':'. Other fields (event, id, retry) are
	// not used by the Ludora stream and are skipped.
	var data []string
	for scanner.Scan() {
		if t.ctx.Err() != nil {
			return
		}
		line := scanner.Text()

		if line == "" {
			if len(data) > 0 {
				t.cb.onMessage([]byte(strings.Join(data, "\n")))
				data = data[:0]
			}
			continue
		}
		if line[0] == ':' {
			continue
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(value, " "))
		}
	}

	if t.ctx.Err() != nil {
		return
	}
	if err := scanner.Err(); err != nil {
		t.fail(fmt.Errorf("stream read: %w", err))
		return
	}
	t.fail(fmt.Errorf("stream ended"))
}

func (t *sseTransport) fail(err error) {
	if t.ctx.Err() != nil {
		return
	}
	t.cb.onError(err)
}

// ============================================================================
// WebSocket Transport
// ============================================================================

type wsTransport struct {
	url        string
	token      string
	httpClient *http.Client
	cb         transportCallbacks

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped bool
}

func (t *wsTransport) start() {
	go t.run()
}

func (t *wsTransport) stop() {
	t.stopOnce.Do(func() {
		t.cancel()
		t.mu.Lock()
		t.stopped = true
		conn := t.conn
		t.conn = nil
		t.mu.Unlock()
		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "client disconnect")
		}
	})
}

func (t *wsTransport) run() {
	wsURL := strings.Replace(t.url, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)

	opts := &websocket.DialOptions{HTTPClient: t.httpClient}
	if t.token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + t.token}}
	}

	conn, _, err := websocket.Dial(t.ctx, wsURL, opts)
	if err != nil {
		t.fail(fmt.Errorf("websocket dial: %w", err))
		return
	}

	t.mu.Lock()
	if t.stopped {
		// stop ran between the dial and this assignment; it had no
		// connection to close, so close the fresh one here.
		t.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "client disconnect")
		return
	}
	t.conn = conn
	t.mu.Unlock()

	t.cb.onOpen()

	for {
		_, data, err := conn.Read(t.ctx)
		if err != nil {
			t.fail(fmt.Errorf("websocket read: %w", err))
			return
		}
		t.cb.onMessage(data)
	}
}

func (t *wsTransport) fail(err error) {
	if t.ctx.Err() != nil {
		return
	}
	t.cb.onError(err)
}
