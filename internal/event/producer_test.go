package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/pkg/kafka"
	"github.com/solavalia/reviews-service/pkg/logger"
)

type capturingPublisher struct {
	topic string
	event *kafka.Event
}

func (c *capturingPublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	c.topic = topic
	c.event = event
	return nil
}

func TestPublishReviewSubmitted(t *testing.T) {
	pub := &capturingPublisher{}
	producer := NewProducer(pub)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	review := &domain.Review{
		ID:           "rev-1",
		ProviderID:   "prov-1",
		UserID:       "user-1",
		OverallScore: 4.33,
		CreatedAt:    now,
	}

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, producer.PublishReviewSubmitted(ctx, review))

	assert.Equal(t, TopicReviewSubmitted, pub.topic)
	assert.Equal(t, TypeReviewSubmitted, pub.event.EventType)
	assert.Equal(t, "rev-1", pub.event.AggregateID)
	assert.Equal(t, "review", pub.event.AggregateType)
	assert.Equal(t, "corr-1", pub.event.CorrelationID)

	var data ReviewSubmittedData
	require.NoError(t, pub.event.UnmarshalData(&data))
	assert.Equal(t, "rev-1", data.ReviewID)
	assert.Equal(t, "prov-1", data.ProviderID)
	assert.InDelta(t, 4.33, data.OverallScore, 1e-9)
	assert.Equal(t, now, data.SubmittedAt)
}

func TestPublishStatusChanged(t *testing.T) {
	pub := &capturingPublisher{}
	producer := NewProducer(pub)

	review := &domain.Review{
		ID:         "rev-1",
		ProviderID: "prov-1",
		Status:     domain.StatusApproved,
		UpdatedAt:  time.Now().UTC(),
	}

	require.NoError(t, producer.PublishStatusChanged(context.Background(), review, domain.StatusPending, "mod-1"))

	assert.Equal(t, TopicReviewStatusChanged, pub.topic)

	var data ReviewStatusChangedData
	require.NoError(t, pub.event.UnmarshalData(&data))
	assert.Equal(t, domain.StatusPending, data.OldStatus)
	assert.Equal(t, domain.StatusApproved, data.NewStatus)
	assert.Equal(t, "mod-1", data.ChangedBy)
}

func TestPublishFeatured(t *testing.T) {
	pub := &capturingPublisher{}
	producer := NewProducer(pub)

	changedAt := time.Now().UTC()
	require.NoError(t, producer.PublishFeatured(context.Background(), "rev-1", true, "mod-1", changedAt))

	assert.Equal(t, TopicReviewFeatured, pub.topic)

	var data ReviewFeaturedData
	require.NoError(t, pub.event.UnmarshalData(&data))
	assert.Equal(t, "rev-1", data.ReviewID)
	assert.True(t, data.Featured)
}
