package pushgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kestrelapps/taskdeck-api/models"
)

// DefaultExpoPushURL is the documented Expo push endpoint
const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// Expo rejects any token the device no longer owns with this ticket error
const expoDeviceNotRegistered = "DeviceNotRegistered"

// ExpoClient sends push notifications through the Expo push API
type ExpoClient struct {
	url    string
	client *http.Client
}

// NewExpoClient returns an Expo gateway client. An empty url falls back to the
// public exp.host endpoint.
func NewExpoClient(url string, timeout time.Duration) *ExpoClient {
	if url == "" {
		url = DefaultExpoPushURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ExpoClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// ValidToken reports whether the token looks like an Expo push token
// (e.g., "ExponentPushToken[xxx]")
func (e *ExpoClient) ValidToken(token string) bool {
	if !strings.HasSuffix(token, "]") {
		return false
	}
	if strings.HasPrefix(token, "ExponentPushToken[") {
		return len(token) > len("ExponentPushToken[]")
	}
	if strings.HasPrefix(token, "ExpoPushToken[") {
		return len(token) > len("ExpoPushToken[]")
	}
	return false
}

// expoPushMessage represents a single push notification message for the Expo push API
type expoPushMessage struct {
	To        string                 `json:"to"`
	Title     string                 `json:"title,omitempty"`
	Body      string                 `json:"body,omitempty"`
	Sound     string                 `json:"sound,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
}

// expoPushResponse is the ticket envelope Expo returns for a batch
type expoPushResponse struct {
	Data []expoPushTicket `json:"data"`
}

type expoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// SendBatch posts one chunk of messages to Expo and maps the returned tickets
// back onto the input tokens
func (e *ExpoClient) SendBatch(ctx context.Context, tokens []string, notification models.Notification) ([]Ticket, error) {
	messages := make([]expoPushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoPushMessage{
			To:        token,
			Title:     notification.Title,
			Body:      notification.Body,
			Sound:     "default",
			Data:      notification.Data,
			Priority:  notification.Priority,
			ChannelID: "default",
		})
	}

	jsonData, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo push API returned status %d", resp.StatusCode)
	}

	var parsed expoPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode expo push response: %w", err)
	}
	if len(parsed.Data) != len(tokens) {
		return nil, fmt.Errorf("expo returned %d tickets for %d messages", len(parsed.Data), len(tokens))
	}

	tickets := make([]Ticket, 0, len(tokens))
	for i, pt := range parsed.Data {
		if pt.Status == "ok" {
			tickets = append(tickets, Ticket{Token: tokens[i], OK: true})
			continue
		}
		code := pt.Details.Error
		if code == "" {
			code = pt.Message
		}
		tickets = append(tickets, Ticket{
			Token:     tokens[i],
			ErrorCode: code,
			Permanent: pt.Details.Error == expoDeviceNotRegistered,
		})
	}
	return tickets, nil
}
