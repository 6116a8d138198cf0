package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelapps/taskdeck-api/models"
	"github.com/kestrelapps/taskdeck-api/pushgateway"
)

// ErrEmptyNotification is the only synchronous failure Dispatch can return;
// everything past this precondition ends up as per-token outcomes
var ErrEmptyNotification = errors.New("notification title and body must not be empty")

// Target is one destination for a dispatch. Platform is carried for protocol
// selection when several gateways are configured.
type Target struct {
	Token    string
	Platform string
}

// Dispatcher turns a flat token list plus one payload into provider-sized
// gateway calls and a per-token result
type Dispatcher struct {
	Gateway     pushgateway.Gateway
	ChunkSize   int
	Concurrency int
	Timeout     time.Duration
}

// NewDispatcher wires a dispatcher to one gateway with the given limits.
// Zero values fall back to the provider defaults (chunk 100, 4 in flight,
// 15s per chunk).
func NewDispatcher(gateway pushgateway.Gateway, chunkSize, concurrency int, timeout time.Duration) *Dispatcher {
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		Gateway:     gateway,
		ChunkSize:   chunkSize,
		Concurrency: concurrency,
		Timeout:     timeout,
	}
}

// Dispatch fans one notification out to every target and reports exactly one
// outcome per target. Chunk failures are chunk-local: a transport error or
// timeout in one chunk marks only that chunk's tokens TransportFailure and the
// remaining chunks still go out.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []Target, notification models.Notification) ([]models.TokenOutcome, error) {
	if notification.Title == "" || notification.Body == "" {
		return nil, ErrEmptyNotification
	}

	outcomes := make([]models.TokenOutcome, 0, len(targets))
	var sendable []string
	for _, t := range targets {
		if !d.Gateway.ValidToken(t.Token) {
			// drifted or corrupted registration; reported without
			// spending gateway quota, the token itself stays active
			outcomes = append(outcomes, models.TokenOutcome{
				Token:   t.Token,
				Outcome: models.OutcomeRejected,
			})
			continue
		}
		sendable = append(sendable, t.Token)
	}
	if len(sendable) == 0 {
		return outcomes, nil
	}

	chunks := chunkTokens(sendable, d.ChunkSize)
	results := make([][]models.TokenOutcome, len(chunks))

	// The group never carries an error: every failure becomes per-token
	// outcomes, so one bad chunk cannot cancel its siblings.
	g := new(errgroup.Group)
	g.SetLimit(d.Concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			results[i] = d.sendChunk(ctx, chunk, notification)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		outcomes = append(outcomes, res...)
	}
	return outcomes, nil
}

func (d *Dispatcher) sendChunk(ctx context.Context, chunk []string, notification models.Notification) []models.TokenOutcome {
	cctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	tickets, err := d.Gateway.SendBatch(cctx, chunk, notification)
	if err != nil || len(tickets) != len(chunk) {
		zap.S().Errorw("push chunk send failed",
			"size", len(chunk),
			"error", err,
		)
		res := make([]models.TokenOutcome, 0, len(chunk))
		for _, token := range chunk {
			res = append(res, models.TokenOutcome{
				Token:   token,
				Outcome: models.OutcomeTransportFailure,
			})
		}
		return res
	}

	res := make([]models.TokenOutcome, 0, len(chunk))
	for _, ticket := range tickets {
		if ticket.OK {
			res = append(res, models.TokenOutcome{
				Token:   ticket.Token,
				Outcome: models.OutcomeDelivered,
			})
			continue
		}
		res = append(res, models.TokenOutcome{
			Token:     ticket.Token,
			Outcome:   models.OutcomeGatewayError,
			ErrorCode: ticket.ErrorCode,
			Permanent: ticket.Permanent,
		})
	}
	return res
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[i:end])
	}
	return chunks
}
