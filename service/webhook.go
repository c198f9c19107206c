package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
)

// Webhook constants.
const (
	DefaultWebhookPrefix = "/wa/webhook"
	SignatureHeader      = "X-Hub-Signature-256"
	EventReceived        = "EVENT_RECEIVED"
	signaturePrefix      = "sha256="
	businessAccount      = "whatsapp_business_account"
)

// WebhookConfig configures the WhatsApp webhook.
type WebhookConfig struct {
	// Prefix is the route prefix; failures under it are answered with 200.
	Prefix string `mapstructure:"prefix"`
	// VerifyToken is echoed back by the provider during subscription.
	VerifyToken string `mapstructure:"verify_token"`
	// AppSecret signs deliveries. Signature checks are skipped when empty.
	AppSecret string `mapstructure:"app_secret"`
}

// ApplyDefaults sets the default prefix.
func (c *WebhookConfig) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = DefaultWebhookPrefix
	}
}

// Delivery is the provider's webhook payload, reduced to what is stored.
type Delivery struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []json.RawMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// ReceiveResult counts what one delivery carried.
type ReceiveResult struct {
	Received int `json:"received"`
	Stored   int `json:"stored"`
}

// WebhookService verifies and stores WhatsApp webhook deliveries.
type WebhookService struct {
	cfg   WebhookConfig
	store *store.Store
	log   *logger.Logger
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(cfg WebhookConfig, s *store.Store, log *logger.Logger) *WebhookService {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookService{cfg: cfg, store: s, log: log.WithComponent("whatsapp-webhook")}
}

// Verify answers the subscription handshake: it returns challenge when
// mode is "subscribe" and token matches the configured verify token.
func (s *WebhookService) Verify(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || s.cfg.VerifyToken == "" ||
		!hmac.Equal([]byte(token), []byte(s.cfg.VerifyToken)) {
		return "", errors.Authorization("Webhook verification failed")
	}
	return challenge, nil
}

// CheckSignature verifies the HMAC-SHA256 of body against the
// "sha256=<hex>" signature header. It passes when no app secret is set.
func (s *WebhookService) CheckSignature(body []byte, header string) error {
	if s.cfg.AppSecret == "" {
		return nil
	}
	invalid := errors.Unauthorized("Invalid webhook signature").WithCode(errors.ErrCodeInvalidSignature)

	hexSig, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return invalid
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return invalid
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.AppSecret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return invalid
	}
	return nil
}

// Receive parses a delivery and stores each message once, linked to the
// user and tenant that own the sender's number.
func (s *WebhookService) Receive(ctx context.Context, body []byte) (*ReceiveResult, error) {
	var d Delivery
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, errors.Validation("Malformed webhook payload").WithCause(err)
	}
	if d.Object != businessAccount {
		return nil, errors.Validation("Unsupported webhook object")
	}

	log := s.log.WithContext(ctx)
	res := &ReceiveResult{}
	for _, entry := range d.Entry {
		for _, change := range entry.Changes {
			for _, raw := range change.Value.Messages {
				res.Received++
				stored, err := s.saveMessage(ctx, raw)
				if err != nil {
					return nil, err
				}
				if stored {
					res.Stored++
				}
			}
		}
	}

	log.Info("Webhook delivery processed", map[string]interface{}{
		"received": res.Received,
		"stored":   res.Stored,
	})
	return res, nil
}

func (s *WebhookService) saveMessage(ctx context.Context, raw json.RawMessage) (bool, error) {
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return false, errors.Validation("Malformed webhook message").WithCause(err)
	}
	if in.ID == "" || in.From == "" {
		return false, errors.Validation("Webhook message without id or sender")
	}

	msg := &store.WhatsAppMessage{
		MessageID: in.ID,
		From:      normalizeNumber(in.From),
		Type:      in.Type,
		Payload:   string(raw),
	}
	if in.Text != nil {
		msg.Body = in.Text.Body
	}

	owner, err := s.store.Users().FindByWhatsApp(ctx, msg.From)
	if err != nil {
		return false, err
	}
	if owner != nil {
		msg.UserID = &owner.ID
		msg.TenantID = &owner.TenantID
	}
	return s.store.Messages().Save(ctx, msg)
}

// normalizeNumber puts sender numbers in E.164 form; the provider sends
// them without the leading "+".
func normalizeNumber(n string) string {
	n = strings.TrimSpace(n)
	if n != "" && !strings.HasPrefix(n, "+") {
		return "+" + n
	}
	return n
}
