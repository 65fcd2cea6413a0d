package data

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/rawthoughts/modfeed/src/workflow"
	"github.com/redis/go-redis/v9"
)

// Streams connecting the API process to the bot. The bot consumes both:
// published submissions go to the public channel, pending notices are fanned
// out to moderator DMs.
const (
	StreamPublished = "modfeed.published"
	StreamPending   = "modfeed.pending"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// StreamPublisher emits publications onto the published stream.
type StreamPublisher struct {
	rdb *redis.Client
}

func NewStreamPublisher(rdb *redis.Client) *StreamPublisher {
	return &StreamPublisher{rdb: rdb}
}

func (p *StreamPublisher) Publish(ctx context.Context, pub workflow.Publication) error {
	_, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamPublished,
		Values: map[string]interface{}{
			"event_id": pub.EventID,
			"id":       pub.ID,
			"text":     pub.Text,
			"votes":    pub.VoteCount,
		},
	}).Result()
	return err
}

// StreamNotifier forwards new pending submissions onto the pending stream.
// The bot side does the per-moderator fan-out.
type StreamNotifier struct {
	rdb *redis.Client
}

func NewStreamNotifier(rdb *redis.Client) *StreamNotifier {
	return &StreamNotifier{rdb: rdb}
}

func (n *StreamNotifier) NotifyReviewers(ctx context.Context, sub types.Submission) error {
	_, err := n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamPending,
		Values: map[string]interface{}{
			"event_id": uuid.NewString(),
			"id":       sub.ID,
			"text":     sub.Text,
		},
	}).Result()
	return err
}
