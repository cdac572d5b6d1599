package event

import (
	"context"
	"time"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/pkg/kafka"
	"github.com/solavalia/reviews-service/pkg/logger"
)

// Kafka topics this service publishes to.
const (
	TopicReviewSubmitted     = "reviews.review.submitted"
	TopicReviewStatusChanged = "reviews.review.status_changed"
	TopicReviewFeatured      = "reviews.review.featured"
)

// Event types carried inside the envelope.
const (
	TypeReviewSubmitted     = "review.submitted"
	TypeReviewStatusChanged = "review.status_changed"
	TypeReviewFeatured      = "review.featured"
)

const (
	aggregateTypeReview = "review"
	sourceService       = "reviews-service"
)

// ReviewSubmittedData is the payload for review.submitted events.
type ReviewSubmittedData struct {
	ReviewID     string    `json:"review_id"`
	ProviderID   string    `json:"provider_id"`
	SolutionID   *string   `json:"solution_id,omitempty"`
	UserID       string    `json:"user_id"`
	OverallScore float64   `json:"overall_score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ReviewStatusChangedData is the payload for review.status_changed events.
type ReviewStatusChangedData struct {
	ReviewID   string        `json:"review_id"`
	ProviderID string        `json:"provider_id"`
	SolutionID *string       `json:"solution_id,omitempty"`
	OldStatus  domain.Status `json:"old_status"`
	NewStatus  domain.Status `json:"new_status"`
	ChangedBy  string        `json:"changed_by,omitempty"`
	ChangedAt  time.Time     `json:"changed_at"`
}

// ReviewFeaturedData is the payload for review.featured events.
type ReviewFeaturedData struct {
	ReviewID  string    `json:"review_id"`
	Featured  bool      `json:"featured"`
	ChangedBy string    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher abstracts the Kafka producer for services and tests.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer publishes review lifecycle events.
type Producer struct {
	publisher Publisher
}

// NewProducer creates a review event producer on top of a Kafka publisher.
func NewProducer(publisher Publisher) *Producer {
	return &Producer{publisher: publisher}
}

// PublishReviewSubmitted emits an event for a newly submitted review.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		ReviewID:     review.ID,
		ProviderID:   review.ProviderID,
		SolutionID:   review.SolutionID,
		UserID:       review.UserID,
		OverallScore: review.OverallScore,
		SubmittedAt:  review.CreatedAt,
	}

	return p.publish(ctx, TopicReviewSubmitted, TypeReviewSubmitted, review.ID, data)
}

// PublishStatusChanged emits an event for a moderation transition.
func (p *Producer) PublishStatusChanged(ctx context.Context, review *domain.Review, oldStatus domain.Status, changedBy string) error {
	data := ReviewStatusChangedData{
		ReviewID:   review.ID,
		ProviderID: review.ProviderID,
		SolutionID: review.SolutionID,
		OldStatus:  oldStatus,
		NewStatus:  review.Status,
		ChangedBy:  changedBy,
		ChangedAt:  review.UpdatedAt,
	}

	return p.publish(ctx, TopicReviewStatusChanged, TypeReviewStatusChanged, review.ID, data)
}

// PublishFeatured emits an event when a review's featured flag changes.
func (p *Producer) PublishFeatured(ctx context.Context, reviewID string, featured bool, changedBy string, changedAt time.Time) error {
	data := ReviewFeaturedData{
		ReviewID:  reviewID,
		Featured:  featured,
		ChangedBy: changedBy,
		ChangedAt: changedAt,
	}

	return p.publish(ctx, TopicReviewFeatured, TypeReviewFeatured, reviewID, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID string, data any) error {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateTypeReview, sourceService, data)
	if err != nil {
		return err
	}

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		evt.WithCorrelationID(correlationID)
	}

	return p.publisher.Publish(ctx, topic, evt)
}
