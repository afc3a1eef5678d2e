package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cinelake/internal/config"
)

const userAgent = "cinelake/0.1.0"

// Service defines the notification surface exposed to pipeline commands.
type Service interface {
	NotifyIngestCompleted(ctx context.Context, completed, skipped, failed int) error
	NotifyTransformCompleted(ctx context.Context, counts map[string]int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyIngestCompleted(ctx context.Context, completed, skipped, failed int) error {
	title := "cinelake - Ingestion Complete"
	if failed > 0 {
		title = "cinelake - Ingestion Complete (with errors)"
	}
	data := payload{
		title:   title,
		message: fmt.Sprintf("%d new, %d unchanged, %d failed", completed, skipped, failed),
		tags:    []string{"cinelake", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTransformCompleted(ctx context.Context, counts map[string]int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	parts := make([]string, 0, 3)
	for _, name := range []string{"films", "reviews", "people"} {
		if count, ok := counts[name]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", count, name))
		}
	}
	data := payload{
		title:   "cinelake - Tables Refreshed",
		message: fmt.Sprintf("Curated tables rebuilt in %s: %s", duration, strings.Join(parts, ", ")),
		tags:    []string{"cinelake", "transform", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "cinelake - Error",
		message:  builder.String(),
		tags:     []string{"cinelake", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "cinelake - Test",
		message:  "Notification system test",
		tags:     []string{"cinelake", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyIngestCompleted(context.Context, int, int, int) error                    { return nil }
func (noopService) NotifyTransformCompleted(context.Context, map[string]int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                              { return nil }
func (noopService) TestNotification(context.Context) error                                        { return nil }
