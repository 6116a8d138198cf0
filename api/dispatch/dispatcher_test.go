package dispatch_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelapps/taskdeck-api/api/dispatch"
	"github.com/kestrelapps/taskdeck-api/models"
	"github.com/kestrelapps/taskdeck-api/pushgateway"
)

// fakeGateway accepts any token starting with "tok" and records every batch.
// Behavior per token is driven by suffix markers so tests stay declarative:
// a chunk containing a token with "boom" fails at transport level, "hang"
// blocks until the chunk context expires, "dead" yields a permanent ticket,
// "flaky" a transient one.
type fakeGateway struct {
	mu      sync.Mutex
	batches [][]string
}

func (f *fakeGateway) ValidToken(token string) bool {
	return strings.HasPrefix(token, "tok")
}

func (f *fakeGateway) SendBatch(ctx context.Context, tokens []string, n models.Notification) ([]pushgateway.Ticket, error) {
	f.mu.Lock()
	f.batches = append(f.batches, tokens)
	f.mu.Unlock()

	for _, t := range tokens {
		if strings.Contains(t, "boom") {
			return nil, fmt.Errorf("connection reset")
		}
		if strings.Contains(t, "hang") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
	}

	tickets := make([]pushgateway.Ticket, 0, len(tokens))
	for _, t := range tokens {
		switch {
		case strings.Contains(t, "dead"):
			tickets = append(tickets, pushgateway.Ticket{Token: t, ErrorCode: "DeviceNotRegistered", Permanent: true})
		case strings.Contains(t, "flaky"):
			tickets = append(tickets, pushgateway.Ticket{Token: t, ErrorCode: "MessageRateExceeded"})
		default:
			tickets = append(tickets, pushgateway.Ticket{Token: t, OK: true})
		}
	}
	return tickets, nil
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func targetsFor(tokens ...string) []dispatch.Target {
	targets := make([]dispatch.Target, 0, len(tokens))
	for _, t := range tokens {
		targets = append(targets, dispatch.Target{Token: t, Platform: "ios"})
	}
	return targets
}

func notif() models.Notification {
	return models.Notification{Title: "Hi", Body: "there"}
}

func TestDispatcher_EmptyNotification(t *testing.T) {
	d := dispatch.NewDispatcher(&fakeGateway{}, 100, 1, time.Second)

	_, err := d.Dispatch(context.Background(), targetsFor("tok1"), models.Notification{Title: "Hi"})
	assert.ErrorIs(t, err, dispatch.ErrEmptyNotification)

	_, err = d.Dispatch(context.Background(), targetsFor("tok1"), models.Notification{Body: "there"})
	assert.ErrorIs(t, err, dispatch.ErrEmptyNotification)
}

func TestDispatcher_ChunkCountAndOutcomeCoverage(t *testing.T) {
	gw := &fakeGateway{}
	d := dispatch.NewDispatcher(gw, 2, 1, time.Second)

	outcomes, err := d.Dispatch(context.Background(), targetsFor("tok1", "tok2", "tok3", "tok4", "tok5"), notif())
	require.NoError(t, err)

	// ceil(5/2) gateway calls
	assert.Equal(t, 3, gw.calls())

	// exactly one outcome per token, no duplicates
	require.Len(t, outcomes, 5)
	seen := map[string]bool{}
	for _, oc := range outcomes {
		assert.False(t, seen[oc.Token], "duplicate outcome for %s", oc.Token)
		seen[oc.Token] = true
		assert.Equal(t, models.OutcomeDelivered, oc.Outcome)
	}
}

func TestDispatcher_InvalidTokensRejectedWithoutSending(t *testing.T) {
	gw := &fakeGateway{}
	d := dispatch.NewDispatcher(gw, 100, 1, time.Second)

	outcomes, err := d.Dispatch(context.Background(), targetsFor("garbage", "tok1"), notif())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byToken := map[string]models.Outcome{}
	for _, oc := range outcomes {
		byToken[oc.Token] = oc.Outcome
	}
	assert.Equal(t, models.OutcomeRejected, byToken["garbage"])
	assert.Equal(t, models.OutcomeDelivered, byToken["tok1"])

	// the rejected token never reached the gateway
	assert.Equal(t, 1, gw.calls())
	assert.Equal(t, []string{"tok1"}, gw.batches[0])
}

func TestDispatcher_AllInvalidSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	d := dispatch.NewDispatcher(gw, 100, 1, time.Second)

	outcomes, err := d.Dispatch(context.Background(), targetsFor("bad1", "bad2"), notif())
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, 0, gw.calls())
}

func TestDispatcher_ChunkFailureIsChunkLocal(t *testing.T) {
	gw := &fakeGateway{}
	// chunk size 2: [tok1 tok-boom] fails at transport level, [tok3 tok-dead]
	// and [tok-flaky] still get real tickets
	d := dispatch.NewDispatcher(gw, 2, 1, time.Second)

	outcomes, err := d.Dispatch(context.Background(),
		targetsFor("tok1", "tok-boom", "tok3", "tok-dead", "tok-flaky"), notif())
	require.NoError(t, err, "partial failure must never surface as an error")
	require.Len(t, outcomes, 5)
	assert.Equal(t, 3, gw.calls())

	byToken := map[string]models.TokenOutcome{}
	for _, oc := range outcomes {
		byToken[oc.Token] = oc
	}
	assert.Equal(t, models.OutcomeTransportFailure, byToken["tok1"].Outcome)
	assert.Equal(t, models.OutcomeTransportFailure, byToken["tok-boom"].Outcome)
	assert.Equal(t, models.OutcomeDelivered, byToken["tok3"].Outcome)
	assert.Equal(t, models.OutcomeGatewayError, byToken["tok-dead"].Outcome)
	assert.True(t, byToken["tok-dead"].Permanent)
	assert.Equal(t, models.OutcomeGatewayError, byToken["tok-flaky"].Outcome)
	assert.False(t, byToken["tok-flaky"].Permanent)
}

func TestDispatcher_ConcurrentChunksAllComplete(t *testing.T) {
	gw := &fakeGateway{}
	d := dispatch.NewDispatcher(gw, 1, 4, time.Second)

	tokens := make([]string, 20)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok%02d", i)
	}
	outcomes, err := d.Dispatch(context.Background(), targetsFor(tokens...), notif())
	require.NoError(t, err)
	assert.Equal(t, 20, gw.calls())
	assert.Len(t, outcomes, 20)
}

func TestDispatcher_ChunkTimeoutIsChunkLocal(t *testing.T) {
	gw := &fakeGateway{}
	// chunk size 1, 50ms per-chunk budget: the hanging chunk must time out
	// without leaving its token pending or stalling the sibling chunk
	d := dispatch.NewDispatcher(gw, 1, 2, 50*time.Millisecond)

	outcomes, err := d.Dispatch(context.Background(), targetsFor("tok-hang", "tok-ok"), notif())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byToken := map[string]models.TokenOutcome{}
	for _, oc := range outcomes {
		byToken[oc.Token] = oc
	}
	assert.Equal(t, models.OutcomeTransportFailure, byToken["tok-hang"].Outcome)
	assert.Equal(t, models.OutcomeDelivered, byToken["tok-ok"].Outcome)
	assert.Equal(t, 2, gw.calls())
}
