package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("review.submitted", "rev-1", "review", "reviews-service", map[string]string{
		"review_id": "rev-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "review.submitted", evt.EventType)
	assert.Equal(t, "rev-1", evt.AggregateID)
	assert.Equal(t, "review", evt.AggregateType)
	assert.Equal(t, 1, evt.Version)
	assert.False(t, evt.Timestamp.IsZero())

	var data map[string]string
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, "rev-1", data["review_id"])
}

func TestEventMarshalRoundTrip(t *testing.T) {
	evt, err := NewEvent("review.status_changed", "rev-1", "review", "reviews-service", nil)
	require.NoError(t, err)
	evt.WithCorrelationID("corr-1")

	raw, err := evt.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"correlation_id":"corr-1"`)
	assert.Contains(t, string(raw), `"event_type":"review.status_changed"`)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("review.submitted", "rev-1", "review", "reviews-service", make(chan int))
	assert.Error(t, err)
}
