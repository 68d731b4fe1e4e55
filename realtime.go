package ludora

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ============================================================================
// Connection State
// ============================================================================

// ConnState represents the realtime connection state.
type ConnState string

const (
	StateDisconnected      ConnState = "disconnected"
	StateConnecting        ConnState = "connecting"
	StateConnected         ConnState = "connected"
	StateReconnecting      ConnState = "reconnecting"
	StateError             ConnState = "error"
	StatePermanentlyFailed ConnState = "permanently_failed"
)

// Reserved event types consumed by the connection manager itself.
// They are never forwarded to listeners.
const (
	metaHeartbeat   = "meta:heartbeat"
	metaEstablished = "connection:established"
	metaClosing     = "connection:closing"
)

// Wildcard matches every application event type in AddEventListener.
const Wildcard = "*"

// MaxChannels bounds the channel list in a subscription; extra channels
// are truncated before the URL is built.
const MaxChannels = 50

var errOffline = errors.New("no network connectivity")

// ============================================================================
// Subscription Descriptor
// ============================================================================

// SessionContext refines server-side subscription targeting.
// Empty string fields and false flags are omitted from the subscribe URL.
type SessionContext struct {
	GameID        string
	LobbyID       string
	SessionID     string
	IsHost        bool
	IsParticipant bool
	Priority      string
}

// SubscriptionOptions identifies a subscription: the channel set plus the
// session context. Changing either forces a full disconnect/reconnect cycle
// (see Resubscribe), never an in-place update.
type SubscriptionOptions struct {
	Channels []string
	Session  SessionContext

	// Anonymous permits degraded operation: when the client is offline at
	// connect time, the subscription settles in a neutral disconnected
	// state instead of erroring.
	Anonymous bool
}

// ============================================================================
// Events
// ============================================================================

// Event is a parsed application event delivered to listeners.
type Event struct {
	EventType  string          `json:"eventType"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
	ID         string          `json:"id"`
}

// EventHandler receives dispatched application events.
type EventHandler func(ev Event)

// realtimeEnvelope is the wire format of a stream frame.
type realtimeEnvelope struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// establishedPayload is carried by the connection:established meta-event.
type establishedPayload struct {
	SubscribedChannels []string `json:"subscribedChannels"`
}

// ============================================================================
// Configuration
// ============================================================================

// RealtimeConfig configures the realtime stream client.
type RealtimeConfig struct {
	// AutoReconnect enables the backoff scheduler on failures.
	AutoReconnect bool
	// MaxRetryAttempts caps consecutive failed attempts before the client
	// enters StatePermanentlyFailed. Default 10.
	MaxRetryAttempts int
	// InitialRetryDelay is the first backoff delay. Default 1s.
	InitialRetryDelay time.Duration
	// MaxRetryDelay caps the backoff delay. Default 30s.
	MaxRetryDelay time.Duration
	// RetryMultiplier grows the delay after each failure. Default 1.5.
	RetryMultiplier float64
	// HeartbeatTimeout declares the connection dead when no heartbeat or
	// application event arrives within the window. Default 45s, chosen to
	// exceed the server heartbeat interval (~30s) with margin.
	HeartbeatTimeout time.Duration
	// EstablishTimeout bounds the wait for the connection:established
	// confirmation, measured from the start of the attempt. Default 30s.
	EstablishTimeout time.Duration

	// FallbackEnabled activates fixed-interval polling when streaming is
	// permanently unavailable.
	FallbackEnabled bool
	// FallbackInterval is the poll tick. Default 5s.
	FallbackInterval time.Duration
	// FallbackPoll is invoked on each fallback tick. Callers substitute a
	// request/response poll of the same data the stream would deliver,
	// typically via Client.Events().Poll. Nil means the tick is a no-op.
	FallbackPoll func(ctx context.Context)

	// OnlineCheck probes network connectivity before connecting.
	// Nil means always online.
	OnlineCheck func() bool

	// Store records received application events when set.
	Store *EventStore

	// Logger receives connection diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient serves the SSE transport. Session cookies travel on its
	// cookie jar. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *RealtimeConfig) defaults() {
	if c.MaxRetryAttempts == 0 {
		c.MaxRetryAttempts = 10
	}
	if c.InitialRetryDelay == 0 {
		c.InitialRetryDelay = 1 * time.Second
	}
	if c.MaxRetryDelay == 0 {
		c.MaxRetryDelay = 30 * time.Second
	}
	if c.RetryMultiplier == 0 {
		c.RetryMultiplier = 1.5
	}
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = 45 * time.Second
	}
	if c.EstablishTimeout == 0 {
		c.EstablishTimeout = 30 * time.Second
	}
	if c.FallbackInterval == 0 {
		c.FallbackInterval = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// ============================================================================
// Reconnector
// ============================================================================

// reconnector tracks the retry context: attempt count and current backoff
// delay. Mutated only under the owning client's lock.
type reconnector struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int

	attempt      int
	currentDelay time.Duration
}

func newReconnector(config *RealtimeConfig) *reconnector {
	return &reconnector{
		initialDelay: config.InitialRetryDelay,
		maxDelay:     config.MaxRetryDelay,
		multiplier:   config.RetryMultiplier,
		maxAttempts:  config.MaxRetryAttempts,
		currentDelay: config.InitialRetryDelay,
	}
}

// fail records a failed attempt. It returns the delay before the next
// attempt, or exhausted=true once the attempt budget is spent.
// The delay sequence is exactly initial, initial×m, initial×m², … capped
// at maxDelay, with no jitter.
func (r *reconnector) fail() (delay time.Duration, exhausted bool) {
	r.attempt++
	if r.attempt >= r.maxAttempts {
		return 0, true
	}
	delay = r.currentDelay
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	next := time.Duration(float64(r.currentDelay) * r.multiplier)
	if next > r.maxDelay {
		next = r.maxDelay
	}
	r.currentDelay = next
	return delay, false
}

// reset restores the initial retry context. Called on successful
// establishment and on any manually triggered reconnect.
func (r *reconnector) reset() {
	r.attempt = 0
	r.currentDelay = r.initialDelay
}

// ============================================================================
// Listener Registry
// ============================================================================

// ListenerHandle identifies a registered callback for removal.
type ListenerHandle struct {
	eventType string
	id        int
}

type listenerEntry struct {
	id int
	fn EventHandler
}

// listenerRegistry maps event types (or Wildcard) to ordered callbacks.
type listenerRegistry struct {
	mu      sync.Mutex
	nextID  int
	buckets map[string][]listenerEntry
	log     *slog.Logger
}

func newListenerRegistry(log *slog.Logger) *listenerRegistry {
	return &listenerRegistry{
		buckets: make(map[string][]listenerEntry),
		log:     log,
	}
}

func (r *listenerRegistry) add(eventType string, fn EventHandler) ListenerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.buckets[eventType] = append(r.buckets[eventType], listenerEntry{id: r.nextID, fn: fn})
	return ListenerHandle{eventType: eventType, id: r.nextID}
}

func (r *listenerRegistry) remove(h ListenerHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.buckets[h.eventType]
	for i, e := range entries {
		if e.id == h.id {
			r.buckets[h.eventType] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(r.buckets[h.eventType]) == 0 {
		delete(r.buckets, h.eventType)
	}
}

func (r *listenerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[string][]listenerEntry)
}

// dispatch invokes the exact-type bucket first, then the wildcard bucket,
// in registration order. Each callback is panic-isolated so one throwing
// listener cannot starve its siblings.
func (r *listenerRegistry) dispatch(ev Event) {
	r.mu.Lock()
	targets := make([]listenerEntry, 0, len(r.buckets[ev.EventType])+len(r.buckets[Wildcard]))
	targets = append(targets, r.buckets[ev.EventType]...)
	if ev.EventType != Wildcard {
		targets = append(targets, r.buckets[Wildcard]...)
	}
	r.mu.Unlock()

	for _, e := range targets {
		r.invoke(e, ev)
	}
}

func (r *listenerRegistry) invoke(e listenerEntry, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("realtime: listener panicked", "eventType", ev.EventType, "panic", rec)
		}
	}()
	e.fn(ev)
}

// ============================================================================
// RealtimeClient
// ============================================================================

// RealtimeClient manages the lifecycle of exactly one streaming connection
// to the Ludora realtime endpoint: URL construction, deferred connected
// status, heartbeat-based dead-connection detection, exponential-backoff
// reconnection, and listener dispatch.
//
// All failures are absorbed and surfaced through State()/LastError(); the
// client never panics across the API boundary.
type RealtimeClient struct {
	baseURL string
	token   string
	kind    transportKind
	config  *RealtimeConfig

	registry *listenerRegistry
	log      *slog.Logger

	mu         sync.Mutex
	opts       SubscriptionOptions
	state      ConnState
	closed     bool
	gen        int // connection generation; stale transport callbacks are ignored
	transport  streamTransport
	recon      *reconnector
	lastEvent  *Event
	lastErr    error
	confirmed  []string
	fallbackOn bool

	establishTimer *time.Timer
	heartbeatTimer *time.Timer
	hbEpoch        int // increments on every re-arm; stale deadline callbacks are ignored
	retryTimer     *time.Timer
	fallbackStop   chan struct{}
}

// NewRealtimeClient creates a standalone SSE realtime client. Most callers
// use Client.Realtime().Subscribe instead.
func NewRealtimeClient(baseURL string, opts SubscriptionOptions, config *RealtimeConfig) *RealtimeClient {
	return newRealtimeClient(baseURL, "", nil, opts, config, transportSSE)
}

func newRealtimeClient(baseURL, token string, httpClient *http.Client, opts SubscriptionOptions, config *RealtimeConfig, kind transportKind) *RealtimeClient {
	var cfg RealtimeConfig
	if config != nil {
		cfg = *config
	} else {
		cfg.AutoReconnect = true
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	cfg.defaults()

	return &RealtimeClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		kind:     kind,
		config:   &cfg,
		registry: newListenerRegistry(cfg.Logger),
		log:      cfg.Logger,
		opts:     opts,
		state:    StateDisconnected,
		recon:    newReconnector(&cfg),
	}
}

// ── Public state accessors ───────────────────────────────

// State returns the current connection state.
func (c *RealtimeClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the subscription is established.
func (c *RealtimeClient) IsConnected() bool { return c.State() == StateConnected }

// IsConnecting reports whether a connection attempt is in flight.
func (c *RealtimeClient) IsConnecting() bool { return c.State() == StateConnecting }

// IsReconnecting reports whether a backoff retry is pending.
func (c *RealtimeClient) IsReconnecting() bool { return c.State() == StateReconnecting }

// LastError returns the most recent connection error, if any.
func (c *RealtimeClient) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// RetryCount returns the consecutive failed attempt count.
func (c *RealtimeClient) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recon.attempt
}

// SubscribedChannels returns the channel list the server confirmed in the
// connection:established meta-event.
func (c *RealtimeClient) SubscribedChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.confirmed...)
}

// FallbackActive reports whether degraded polling mode is running.
func (c *RealtimeClient) FallbackActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallbackOn
}

// LastEvent returns the most recently received application event, or nil.
func (c *RealtimeClient) LastEvent() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastEvent == nil {
		return nil
	}
	ev := *c.lastEvent
	return &ev
}

// ── Listener management ──────────────────────────────────

// AddEventListener registers a callback for eventType (or Wildcard).
// The returned handle removes exactly this callback.
func (c *RealtimeClient) AddEventListener(eventType string, fn EventHandler) ListenerHandle {
	return c.registry.add(eventType, fn)
}

// RemoveEventListener removes a previously registered callback.
func (c *RealtimeClient) RemoveEventListener(h ListenerHandle) {
	c.registry.remove(h)
}

// ── Lifecycle operations ─────────────────────────────────

// Connect opens the stream. It is a no-op when the client is already
// connecting/connected or has been closed. Connect never blocks; progress
// is observable through State().
func (c *RealtimeClient) Connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return
	}

	if c.config.OnlineCheck != nil && !c.config.OnlineCheck() {
		if c.opts.Anonymous {
			// Degraded operation permitted: settle in a neutral state
			// without attempting a connection.
			c.state = StateDisconnected
			c.lastErr = nil
			c.mu.Unlock()
			return
		}
		gen := c.gen
		c.mu.Unlock()
		c.handleError(gen, errOffline)
		return
	}

	c.connectLocked()
	c.mu.Unlock()
}

// connectLocked tears down any prior transport and opens a new one.
// Caller holds c.mu.
func (c *RealtimeClient) connectLocked() {
	c.gen++
	gen := c.gen
	c.clearTimersLocked()
	c.closeTransportLocked()
	c.state = StateConnecting

	target := c.subscribeURL()
	c.log.Debug("realtime: connecting", "url", target, "attempt", c.recon.attempt)

	t := newTransport(c.kind, target, c.token, c.config.HTTPClient, transportCallbacks{
		onOpen:    func() { c.handleOpen(gen) },
		onMessage: func(data []byte) { c.handleMessage(gen, data) },
		onError:   func(err error) { c.handleError(gen, err) },
	})
	c.transport = t

	c.establishTimer = time.AfterFunc(c.config.EstablishTimeout, func() {
		c.establishExpired(gen)
	})

	t.start()
}

// Disconnect closes the stream and resets error, retry, and fallback state
// to neutral.
func (c *RealtimeClient) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.clearTimersLocked()
	c.stopFallbackLocked()
	c.closeTransportLocked()
	c.state = StateDisconnected
	c.lastErr = nil
	c.confirmed = nil
	c.lastEvent = nil
	c.recon.reset()
	c.mu.Unlock()
}

// Reconnect forces a fresh connection, resetting the retry context. It is
// the explicit escape from a backoff sequence or a permanently failed
// state.
func (c *RealtimeClient) Reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.clearTimersLocked()
	c.stopFallbackLocked()
	c.closeTransportLocked()
	c.recon.reset()
	c.lastErr = nil
	c.state = StateDisconnected
	c.mu.Unlock()
	c.Connect()
}

// Resubscribe replaces the subscription descriptor. When a connection is
// live or pending, the old transport is closed and a new one is opened
// under the new parameters; there is no in-place update.
func (c *RealtimeClient) Resubscribe(opts SubscriptionOptions) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.opts = opts
	active := c.state != StateDisconnected
	c.mu.Unlock()
	if active {
		c.Reconnect()
	}
}

// Close tears the client down. Any scheduled reconnection is cancelled and
// no transport will be opened afterwards. The client cannot be reused.
func (c *RealtimeClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	c.clearTimersLocked()
	c.stopFallbackLocked()
	c.closeTransportLocked()
	c.state = StateDisconnected
	c.mu.Unlock()
	c.registry.clear()
}

// ── Transport callbacks ──────────────────────────────────

// handleOpen marks transport-level progress. The connected transition and
// the establishment timer both wait for the connection:established
// meta-event: a network handshake can succeed before the server finishes
// per-client subscription setup, and the confirmed channel list only
// travels in that payload.
func (c *RealtimeClient) handleOpen(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.log.Debug("realtime: transport open, awaiting establishment")
}

func (c *RealtimeClient) handleMessage(gen int, data []byte) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}

	var env realtimeEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.EventType == "" {
		// Malformed frames are dropped, never fatal.
		c.log.Warn("realtime: dropping malformed frame", "error", err)
		c.mu.Unlock()
		return
	}

	switch env.EventType {
	case metaHeartbeat:
		c.armHeartbeatLocked(gen)
		c.mu.Unlock()
		return

	case metaEstablished:
		var p establishedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Warn("realtime: malformed established payload", "error", err)
		}
		stopTimerLocked(&c.establishTimer)
		c.state = StateConnected
		c.confirmed = append([]string(nil), p.SubscribedChannels...)
		c.recon.reset()
		c.lastErr = nil
		c.stopFallbackLocked()
		c.armHeartbeatLocked(gen)
		c.log.Debug("realtime: established", "channels", c.confirmed)
		c.mu.Unlock()
		return

	case metaClosing:
		// Server-initiated graceful close notice. The transport's own
		// close handling takes over separately.
		c.log.Debug("realtime: server closing connection")
		c.mu.Unlock()
		return
	}

	ev := Event{
		EventType:  env.EventType,
		Data:       env.Data,
		ReceivedAt: time.Now(),
		ID:         generateEventID(),
	}
	c.lastEvent = &ev
	c.armHeartbeatLocked(gen)
	store := c.config.Store
	c.mu.Unlock()

	if store != nil {
		store.Append(ev)
	}
	c.registry.dispatch(ev)
}

// handleError is the funnel for transport errors.
func (c *RealtimeClient) handleError(gen int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.failLocked(err)
}

// establishExpired fires when the establishment deadline elapses. A timeout
// that fired just as the confirmation arrived is stale once the state has
// left connecting. Timer.Stop cannot guarantee that: a callback that has
// already fired still runs after the stop.
func (c *RealtimeClient) establishExpired(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.state != StateConnecting {
		return
	}
	c.failLocked(fmt.Errorf("connection not established within %s", c.config.EstablishTimeout))
}

// heartbeatExpired fires when the dead-connection deadline elapses: no
// traffic for too long means the connection is dead even though the
// transport has not reported an error yet. A deadline that fired while a
// message was mid-handling is stale once the monitor has been re-armed; the
// epoch check rejects it.
func (c *RealtimeClient) heartbeatExpired(gen, epoch int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || epoch != c.hbEpoch || c.state != StateConnected {
		return
	}
	c.failLocked(fmt.Errorf("heartbeat timeout: no events for %s", c.config.HeartbeatTimeout))
}

// failLocked tears down the current transport and either schedules a retry
// or settles in a terminal state. Caller holds c.mu and has validated the
// connection generation.
func (c *RealtimeClient) failLocked(err error) {
	c.clearTimersLocked()
	c.closeTransportLocked()
	c.lastErr = err
	c.log.Debug("realtime: connection failed", "error", err)

	if !c.config.AutoReconnect {
		c.state = StateError
		if c.config.FallbackEnabled {
			c.startFallbackLocked()
		}
		return
	}
	c.scheduleRetryLocked()
}

// scheduleRetryLocked advances the retry context and either schedules the
// next attempt or gives up. Caller holds c.mu.
func (c *RealtimeClient) scheduleRetryLocked() {
	delay, exhausted := c.recon.fail()
	if exhausted {
		c.state = StatePermanentlyFailed
		c.lastErr = fmt.Errorf("giving up after %d reconnect attempts: %w", c.recon.attempt, c.lastErr)
		c.log.Warn("realtime: permanently failed", "attempts", c.recon.attempt)
		if c.config.FallbackEnabled {
			c.startFallbackLocked()
		}
		return
	}

	c.state = StateReconnecting
	gen := c.gen
	c.log.Debug("realtime: scheduling reconnect", "attempt", c.recon.attempt, "delay", delay)
	c.retryTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed || gen != c.gen || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		c.connectLocked()
		c.mu.Unlock()
	})
}

// ── Heartbeat monitor ────────────────────────────────────

// armHeartbeatLocked re-arms the dead-connection deadline. The timer is
// armed exactly while the state is connected; every heartbeat and every
// forwarded application event resets it. Caller holds c.mu.
func (c *RealtimeClient) armHeartbeatLocked(gen int) {
	if c.state != StateConnected {
		return
	}
	stopTimerLocked(&c.heartbeatTimer)
	c.hbEpoch++
	epoch := c.hbEpoch
	c.heartbeatTimer = time.AfterFunc(c.config.HeartbeatTimeout, func() {
		c.heartbeatExpired(gen, epoch)
	})
}

// ── Fallback polling ─────────────────────────────────────

// startFallbackLocked begins degraded polling mode. Caller holds c.mu.
func (c *RealtimeClient) startFallbackLocked() {
	if c.fallbackOn {
		return
	}
	c.fallbackOn = true
	stop := make(chan struct{})
	c.fallbackStop = stop
	interval := c.config.FallbackInterval
	poll := c.config.FallbackPoll
	c.log.Debug("realtime: fallback polling active", "interval", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if poll != nil {
					poll(context.Background())
				}
			}
		}
	}()
}

func (c *RealtimeClient) stopFallbackLocked() {
	if c.fallbackStop != nil {
		close(c.fallbackStop)
		c.fallbackStop = nil
	}
	c.fallbackOn = false
}

// ── Internals ────────────────────────────────────────────

func (c *RealtimeClient) clearTimersLocked() {
	stopTimerLocked(&c.establishTimer)
	stopTimerLocked(&c.heartbeatTimer)
	stopTimerLocked(&c.retryTimer)
}

func (c *RealtimeClient) closeTransportLocked() {
	if c.transport != nil {
		c.transport.stop()
		c.transport = nil
	}
}

func stopTimerLocked(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// subscribeURL serializes the subscription descriptor: channels comma-joined
// and truncated to MaxChannels, session-context fields only when they hold a
// real value, boolean flags only when true.
func (c *RealtimeClient) subscribeURL() string {
	q := url.Values{}

	channels := c.opts.Channels
	if len(channels) > MaxChannels {
		channels = channels[:MaxChannels]
	}
	q.Set("channels", strings.Join(channels, ","))

	sc := c.opts.Session
	setIfReal(q, "gameId", sc.GameID)
	setIfReal(q, "lobbyId", sc.LobbyID)
	setIfReal(q, "sessionId", sc.SessionID)
	if sc.IsHost {
		q.Set("isHost", "true")
	}
	if sc.IsParticipant {
		q.Set("isParticipant", "true")
	}
	setIfReal(q, "priority", sc.Priority)

	path := "/sse/events"
	if c.kind == transportWS {
		path = "/ws/events"
	}
	return c.baseURL + path + "?" + q.Encode()
}

// setIfReal skips empty values and the placeholder strings frontends tend
// to leak into query parameters.
func setIfReal(q url.Values, key, value string) {
	if value == "" || value == "undefined" || value == "null" {
		return
	}
	q.Set(key, value)
}

// generateEventID returns a random correlation id for a received event.
func generateEventID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("ev-%d", time.Now().UnixNano())
	}
	b[6] = (b[6] & 0x0f) | 0x40 // Version 4
	b[8] = (b[8] & 0x3f) | 0x80 // Variant 10
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
