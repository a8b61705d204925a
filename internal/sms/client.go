package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/logger"
)

// maxLoggedBody ограничивает объём ответа шлюза, попадающий в лог.
const maxLoggedBody = 512

// DefaultTimeout применяется, если Config.Timeout не задан.
const DefaultTimeout = 10 * time.Second

// Config — учётные данные и параметры отправителя SMS-шлюза.
type Config struct {
	URL            string
	APIKey         string
	PartnerID      string
	SenderID       string
	DuplicateCheck string
	Timeout        time.Duration
}

// Client отправляет одно сообщение одному получателю через HTTP API шлюза.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("client", "sms"),
	}
}

func (c *Client) form(mobile, message string) url.Values {
	v := url.Values{}
	v.Set("apikey", c.cfg.APIKey)
	v.Set("partnerID", c.cfg.PartnerID)
	v.Set("shortcode", c.cfg.SenderID)
	v.Set("mobile", mobile)
	v.Set("message", message)
	v.Set("pass_type", "plain")
	v.Set("duplicatecheck", c.cfg.DuplicateCheck)
	return v
}

// Send делает ровно один POST в шлюз. Тело ответа пишется в лог и не разбирается;
// ошибкой считаются сбой транспорта и статус вне 2xx.
func (c *Client) Send(ctx context.Context, mobile, message string) error {
	body := c.form(mobile, message).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	// остаток тела дочитывается, иначе keep-alive соединение не переиспользуется
	_, _ = io.Copy(io.Discard, resp.Body)
	if readErr != nil {
		c.log.Debug("sms gateway response read", "recipient", mobile, "error", readErr)
	}
	c.log.Debug("sms gateway response", "recipient", mobile, "status", resp.StatusCode, "body", string(raw))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	return nil
}
