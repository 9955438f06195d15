package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/fadilmartias/jobmarket/internal/config"
	"github.com/fadilmartias/jobmarket/internal/model"
)

// NotifierService posts events to a webhook. It retries 429/5xx and network
// errors with exponential backoff and stops calling out after too many
// consecutive failures until ResetCircuitBreaker is called or the cool-down
// passes.
type NotifierService struct {
	client            *resty.Client
	url               string
	secret            string
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	CoolDown          time.Duration
	log               *zap.SugaredLogger
	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
	openedAt          time.Time
}

func NewNotifierService(cfg *config.NotifyConfig, log *zap.SugaredLogger) *NotifierService {
	return &NotifierService{
		client:            resty.New().SetTimeout(cfg.Timeout),
		url:               cfg.WebhookURL,
		secret:            cfg.Secret,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         500 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		CoolDown:          time.Minute,
		log:               log,
		circuitBreakerMax: 5,
	}
}

type webhookPayload struct {
	Seq        uint64          `json:"seq"`
	Kind       model.EventKind `json:"kind"`
	SessionID  string          `json:"session_id,omitempty"`
	TemplateID string          `json:"template_id"`
	ActorID    string          `json:"actor_id"`
	ActorRole  string          `json:"actor_role"`
	From       string          `json:"from_status,omitempty"`
	To         string          `json:"to_status,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func toPayload(ev model.SessionEvent) webhookPayload {
	p := webhookPayload{
		Seq:        ev.Seq,
		Kind:       ev.Kind,
		TemplateID: ev.TemplateID.String(),
		ActorID:    ev.ActorID.String(),
		ActorRole:  ev.ActorRole,
		From:       ev.FromStatus,
		To:         ev.ToStatus,
		OccurredAt: ev.OccurredAt,
	}
	if ev.SessionID != nil {
		p.SessionID = ev.SessionID.String()
	}
	if len(ev.Payload) > 0 {
		p.Payload = json.RawMessage(ev.Payload)
	}
	return p
}

func (s *NotifierService) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (s *NotifierService) Notify(ctx context.Context, ev model.SessionEvent) error {
	if s.url == "" {
		return nil
	}
	if open, _ := s.breaker(); open {
		return fmt.Errorf("circuit breaker open: too many consecutive errors")
	}

	body, err := json.Marshal(toPayload(ev))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Debugw("Retrying webhook", "attempt", attempt, "delay", delay, "seq", ev.Seq)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context done during retry: %w", ctx.Err())
			}
		}

		req := s.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Event-Kind", string(ev.Kind)).
			SetHeader("X-Event-Seq", fmt.Sprint(ev.Seq)).
			SetBody(body)
		if s.secret != "" {
			req.SetHeader("X-Signature", s.sign(body))
		}
		resp, err := req.Post(s.url)

		if err == nil && resp.IsSuccess() {
			s.recordSuccess()
			return nil
		}
		if err == nil {
			err = fmt.Errorf("webhook returned %d", resp.StatusCode())
			if !isRetryableStatus(resp.StatusCode()) {
				s.recordFailure()
				return err
			}
		} else if !isRetryableError(err) {
			s.recordFailure()
			return fmt.Errorf("webhook failed: %w", err)
		}
		lastErr = err
	}

	s.recordFailure()
	return fmt.Errorf("max retries (%d) exceeded for webhook: %w", s.MaxRetries, lastErr)
}

func (s *NotifierService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25)
	if jitter <= 0 {
		return delay
	}
	return delay - jitter/2 + time.Duration(rand.Int63n(int64(jitter)))
}

func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

func isRetryableError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "context canceled") {
		return false
	}
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "EOF")
}

func (s *NotifierService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *NotifierService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	if s.consecutiveErrors == s.circuitBreakerMax {
		s.openedAt = time.Now()
	}
	s.mu.Unlock()
}

// breaker reports whether the breaker is open; after CoolDown it half-opens
// and lets one attempt through.
func (s *NotifierService) breaker() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consecutiveErrors < s.circuitBreakerMax {
		return false, s.consecutiveErrors
	}
	if s.CoolDown > 0 && time.Since(s.openedAt) >= s.CoolDown {
		s.consecutiveErrors = s.circuitBreakerMax - 1
		return false, s.consecutiveErrors
	}
	return true, s.consecutiveErrors
}

func (s *NotifierService) ResetCircuitBreaker() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
	s.log.Info("Notifier circuit breaker reset")
}

func (s *NotifierService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	open, n := s.breaker()
	return n, open
}

// Run forwards events from ch until it closes or ctx is done.
func (s *NotifierService) Run(ctx context.Context, ch <-chan model.SessionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := s.Notify(ctx, ev); err != nil {
				s.log.Warnw("Failed to deliver event", "kind", ev.Kind, "seq", ev.Seq, "error", err)
			}
		}
	}
}
