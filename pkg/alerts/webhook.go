/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

const webhookTimeout = 10 * time.Second

var (
	ErrWebhookDisabled   = errors.New("webhook notifier is disabled")
	ErrWebhookCooldown   = errors.New("alert is within cooldown period")
	errInvalidJSON       = errors.New("invalid JSON generated")
	errWebhookStatus     = errors.New("webhook returned non-2xx status")
	errTemplateParse     = errors.New("template parsing failed")
	errTemplateExecution = errors.New("template execution failed")
)

// WebhookConfig configures one webhook destination.
type WebhookConfig struct {
	Enabled  bool
	URL      string
	Headers  []Header
	Template string // Optional JSON template
	Cooldown time.Duration
}

// Header is a custom HTTP header sent with every request.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookPayload is the document posted to a webhook.
type WebhookPayload struct {
	Level       models.Severity `json:"level"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Timestamp   string          `json:"timestamp"`
	NetworkID   string          `json:"network_id"`
	NetworkName string          `json:"network_name,omitempty"`
	Details     map[string]any  `json:"details,omitempty"`
}

// WebhookNotifier posts alerts to an HTTP endpoint.
type WebhookNotifier struct {
	config         WebhookConfig
	client         *http.Client
	lastAlertTimes map[string]time.Time
	mu             sync.Mutex
	bufferPool     *sync.Pool
	tmpl           *template.Template
	tmplErr        error
}

// NewWebhookNotifier creates a webhook notifier. Template errors surface on
// the first Notify call.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	w := &WebhookNotifier{
		config: config,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		lastAlertTimes: make(map[string]time.Time),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}

	if config.Template != "" {
		w.tmpl, w.tmplErr = template.New("webhook").Funcs(w.templateFuncs()).Parse(config.Template)
	}

	return w
}

func (w *WebhookNotifier) IsEnabled() bool {
	return w.config.Enabled && w.config.URL != ""
}

func (w *WebhookNotifier) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("JSON marshaling failed: %w", err)
			}

			return string(b), nil
		},
	}
}

// Notify posts the alert unless the same alert for the same network was sent
// within the cooldown.
func (w *WebhookNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if !w.IsEnabled() {
		return ErrWebhookDisabled
	}

	payload := NewWebhookPayload(alert)

	if err := w.checkCooldown(alert.NetworkID + "/" + payload.Title); err != nil {
		return err
	}

	body, err := w.preparePayload(payload)
	if err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	return w.sendRequest(ctx, body)
}

// NewWebhookPayload converts an alert to the webhook document.
func NewWebhookPayload(alert *models.Alert) *WebhookPayload {
	ts := alert.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return &WebhookPayload{
		Level:       alert.Severity,
		Title:       alertTitle(alert.Type),
		Message:     alert.Message,
		Timestamp:   ts.UTC().Format(time.RFC3339),
		NetworkID:   alert.NetworkID,
		NetworkName: alert.NetworkName,
		Details: map[string]any{
			"alert_type": string(alert.Type),
			"severity":   string(alert.Severity),
		},
	}
}

func alertTitle(t models.AlertType) string {
	switch t {
	case models.AlertOffline:
		return "Network Offline"
	case models.AlertDegraded:
		return "Network Degraded"
	case models.AlertBandwidth:
		return "Bandwidth Saturated"
	default:
		return "Network Alert"
	}
}

func (w *WebhookNotifier) checkCooldown(key string) error {
	if w.config.Cooldown <= 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	lastAlertTime, exists := w.lastAlertTimes[key]
	if exists && time.Since(lastAlertTime) < w.config.Cooldown {
		log.Printf("Alert '%s' is within cooldown period, skipping", key)

		return ErrWebhookCooldown
	}

	w.lastAlertTimes[key] = time.Now()

	return nil
}

func (w *WebhookNotifier) preparePayload(payload *WebhookPayload) ([]byte, error) {
	if w.config.Template == "" {
		return json.Marshal(payload)
	}

	if w.tmplErr != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateParse, w.tmplErr)
	}

	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	if err := w.tmpl.Execute(buf, map[string]interface{}{
		"alert": payload,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, errInvalidJSON
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func (w *WebhookNotifier) sendRequest(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, string(body))
	}

	return nil
}

func (w *WebhookNotifier) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
