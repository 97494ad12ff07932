package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/services"
)

type closerStub struct {
	services.FundraisingService
	calls int
}

func (c *closerStub) CloseExpiredCampaigns(ctx context.Context) (int64, error) {
	c.calls++
	return 3, nil
}

type cleanupStub struct {
	services.AuthService
}

func (cleanupStub) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return 0, errors.New("database is down")
}

func TestAddValidatesSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.UTC)

	require.NoError(t, s.Add(Job{Name: "nightly", Spec: "10 0 * * *", Run: func(context.Context) (int64, error) { return 0, nil }}))
	require.NoError(t, s.Add(Job{Name: "disabled", Spec: ""}))
	assert.Error(t, s.Add(Job{Name: "broken", Spec: "every tuesday"}))
	assert.Equal(t, 1, s.Entries())
}

func TestExecuteLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(zerolog.New(&buf), time.UTC)

	closer := &closerStub{}
	s.execute(CampaignCloser(closer, "@daily"))
	assert.Equal(t, 1, closer.calls)
	assert.Contains(t, buf.String(), `"job":"campaign-closer"`)
	assert.Contains(t, buf.String(), `"affected":3`)

	buf.Reset()
	s.execute(TokenCleanup(cleanupStub{}, "@every 6h"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "database is down")
}

func TestExecuteAppliesTimeout(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.UTC)
	var deadline time.Time
	s.execute(Job{
		Name:    "bounded",
		Timeout: time.Second,
		Run: func(ctx context.Context) (int64, error) {
			deadline, _ = ctx.Deadline()
			return 0, nil
		},
	})
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.UTC)
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1h", Run: func(context.Context) (int64, error) { return 0, nil }}))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
