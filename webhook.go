package ludora

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ============================================================================
// Webhook Types
// ============================================================================

// WebhookPayload represents a Ludora platform webhook payload (POST to a
// registered integration endpoint).
type WebhookPayload struct {
	Source    string          `json:"source"`
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Game      WebhookGame     `json:"game"`
	Session   WebhookSession  `json:"session"`
	Actor     WebhookActor    `json:"actor"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// WebhookGame identifies the game the event belongs to.
type WebhookGame struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject,omitempty"`
}

// WebhookSession identifies the game session the event belongs to.
type WebhookSession struct {
	ID      string `json:"id"`
	LobbyID string `json:"lobbyId,omitempty"`
	State   string `json:"state"` // "waiting", "running", "finished"
}

// WebhookActor identifies who triggered the event.
type WebhookActor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"` // "host", "player", "spectator", "system"
}

// WebhookReply is an optional response from a webhook handler, delivered
// back to the session as a platform event.
type WebhookReply struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// WebhookHandlerFunc is the callback signature for handling webhook payloads.
type WebhookHandlerFunc func(payload *WebhookPayload) (*WebhookReply, error)

// ============================================================================
// Standalone Functions
// ============================================================================

// VerifyWebhookSignature verifies a Ludora webhook signature using HMAC-SHA256.
// The signature is hex, with or without the conventional "sha256=" prefix.
// Comparison is constant time.
func VerifyWebhookSignature(body, signature, secret string) bool {
	if body == "" || secret == "" {
		return false
	}

	sig := strings.TrimPrefix(signature, "sha256=")
	raw, err := hex.DecodeString(sig)
	if err != nil || len(raw) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hmac.Equal(raw, mac.Sum(nil))
}

// ParseWebhookPayload parses a raw webhook body into a typed WebhookPayload.
func ParseWebhookPayload(body string) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON in webhook body: %w", err)
	}

	if payload.Source != "ludora" {
		return nil, fmt.Errorf("unknown webhook source: %s", payload.Source)
	}
	if payload.Event == "" {
		return nil, fmt.Errorf("missing event field in webhook payload")
	}
	if payload.Game.ID == "" || payload.Session.ID == "" || payload.Actor.ID == "" {
		return nil, fmt.Errorf("missing required fields in webhook payload (game, session, actor)")
	}

	return &payload, nil
}

// ============================================================================
// LudoraWebhook
// ============================================================================

// LudoraWebhook handles platform webhook verification, parsing, and dispatch.
type LudoraWebhook struct {
	secret  string
	onEvent WebhookHandlerFunc
}

// NewLudoraWebhook creates a new webhook handler.
func NewLudoraWebhook(secret string, onEvent WebhookHandlerFunc) (*LudoraWebhook, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}
	return &LudoraWebhook{
		secret:  secret,
		onEvent: onEvent,
	}, nil
}

// Verify verifies an HMAC-SHA256 signature.
func (w *LudoraWebhook) Verify(body, signature string) bool {
	return VerifyWebhookSignature(body, signature, w.secret)
}

// Parse parses a raw body into a typed WebhookPayload.
func (w *LudoraWebhook) Parse(body string) (*WebhookPayload, error) {
	return ParseWebhookPayload(body)
}

// Handle processes a webhook request (verify + parse + call handler).
// Returns the status code and response body for the caller to write.
func (w *LudoraWebhook) Handle(body, signature string) (int, any) {
	if !w.Verify(body, signature) {
		return http.StatusUnauthorized, map[string]string{"error": "Invalid signature"}
	}

	payload, err := w.Parse(body)
	if err != nil {
		return http.StatusBadRequest, map[string]string{"error": err.Error()}
	}

	reply, err := w.onEvent(payload)
	if err != nil {
		return http.StatusInternalServerError, map[string]string{"error": err.Error()}
	}

	if reply != nil {
		return http.StatusOK, reply
	}
	return http.StatusOK, map[string]bool{"ok": true}
}

// HTTPHandler returns an http.Handler that processes webhook requests.
//
// Example:
//
//	wh, _ := ludora.NewLudoraWebhook("secret", handler)
//	http.Handle("/webhook", wh.HTTPHandler())
func (w *LudoraWebhook) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(rw, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(rw, http.StatusBadRequest, map[string]string{"error": "Failed to read body"})
			return
		}

		status, data := w.Handle(string(body), r.Header.Get("X-Ludora-Signature"))
		writeJSON(rw, status, data)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HTTPHandlerFunc returns an http.HandlerFunc for convenience.
func (w *LudoraWebhook) HTTPHandlerFunc() http.HandlerFunc {
	return w.HTTPHandler().ServeHTTP
}
