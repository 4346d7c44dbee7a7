package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsRequestIDAndError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	ctx := context.WithValue(context.Background(), RequestIDKey, "r-1")

	func() (err error) {
		defer Time(ctx, logger, "ok.op")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, logger, "bad.op")(&err)
		return errors.New("boom")
	}()

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "ok.op", entries[0].ContextMap()["op"])
	assert.Equal(t, "r-1", entries[0].ContextMap()["req_id"])

	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
