package mboreader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbobook/internal/event"
	"mbobook/internal/price"
	"mbobook/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithOutputPaths([]string{"stdout"}))
	require.NoError(t, err)
	return log
}

func TestReadAllParsesWellFormedRows(t *testing.T) {
	csvData := "ts_event,action,side,price,size,order_id,flags,ts_in_delta,sequence\n" +
		"1700000000000000000,A,B,100.50,1000,1001,0,0,1\n"

	rd := NewReader(testLogger(t))
	events, err := rd.ReadAll(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, int64(1700000000000000000), e.TsEvent)
	assert.Equal(t, event.ActionAdd, e.Action)
	assert.Equal(t, event.SideBid, e.Side)
	assert.Equal(t, price.FromFloat(100.50), e.Price)
	assert.Equal(t, uint64(1000), e.Size)
	assert.Equal(t, uint64(1001), e.OrderID)
	assert.Equal(t, uint64(1), e.Sequence)
}

func TestReadAllDropsMalformedRows(t *testing.T) {
	csvData := "ts_event,action,side,price,size,order_id,flags,ts_in_delta,sequence\n" +
		"not-a-timestamp,A,B,100.50,1000,1001,0,0,1\n" +
		"1700000000000000001,A,B,100.50,1000,1002,0,0,2\n"

	rd := NewReader(testLogger(t))
	events, err := rd.ReadAll(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1002), events[0].OrderID)
}

func TestReadAllToleratesColumnReordering(t *testing.T) {
	csvData := "order_id,action,ts_event,side,price,size,flags,ts_in_delta,sequence\n" +
		"1,A,1700000000000000000,B,100.50,1000,0,0,1\n"

	rd := NewReader(testLogger(t))
	events, err := rd.ReadAll(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].OrderID)
}

func TestReadAllAcceptsIsoTimestamps(t *testing.T) {
	csvData := "ts_event,action,side,price,size,order_id,flags,ts_in_delta,sequence\n" +
		"2025-07-17T08:05:03.360677248Z,R,N,,0,0,0,0,0\n"

	rd := NewReader(testLogger(t))
	events, err := rd.ReadAll(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ActionReset, events[0].Action)
}

func TestReadAllOnEmptyInput(t *testing.T) {
	rd := NewReader(testLogger(t))
	events, err := rd.ReadAll(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, events)
}
