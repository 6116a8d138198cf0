package pushgateway

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/kestrelapps/taskdeck-api/models"
)

// FCMClient sends push notifications through Firebase Cloud Messaging
type FCMClient struct {
	messagingClient *messaging.Client
}

// NewFCMClient creates a new FCM gateway using the provided credentials file
func NewFCMClient(ctx context.Context, credentialsFile string) (*FCMClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMClient{messagingClient: messagingClient}, nil
}

// ValidToken applies a loose shape check; FCM has no documented token grammar
// so anything short or containing whitespace is rejected up front
func (f *FCMClient) ValidToken(token string) bool {
	if len(token) < 32 {
		return false
	}
	return !strings.ContainsAny(token, " \t\n")
}

// SendBatch delivers one notification to a chunk of registration tokens via
// a single multicast call and maps the per-token responses to tickets
func (f *FCMClient) SendBatch(ctx context.Context, tokens []string, notification models.Notification) ([]Ticket, error) {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data:    stringifyData(notification.Data),
		Android: &messaging.AndroidConfig{Priority: androidPriority(notification.Priority)},
	}

	response, err := f.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}
	if len(response.Responses) != len(tokens) {
		return nil, fmt.Errorf("fcm returned %d responses for %d tokens", len(response.Responses), len(tokens))
	}

	tickets := make([]Ticket, 0, len(tokens))
	for i, resp := range response.Responses {
		if resp.Success {
			tickets = append(tickets, Ticket{Token: tokens[i], OK: true})
			continue
		}
		tickets = append(tickets, Ticket{
			Token:     tokens[i],
			ErrorCode: resp.Error.Error(),
			Permanent: messaging.IsRegistrationTokenNotRegistered(resp.Error),
		})
	}
	return tickets, nil
}

// stringifyData flattens the free-form data payload into the string map FCM requires
func stringifyData(data map[string]interface{}) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func androidPriority(priority string) string {
	if priority == "high" {
		return "high"
	}
	return "normal"
}
