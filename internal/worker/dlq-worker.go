package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/entity"
	"github.com/xenn00/cipher-chat/internal/queue"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const dlqDatabase = "cipher_chat"
const dlqCollection = "dlq_jobs"

// StartDLQWorker drains the redis dead-letter list into a mongo audit
// collection so permanently failed jobs survive a redis flush and can be
// inspected later.
func (wp *WorkerPool) StartDLQWorker(ctx context.Context, mongoClient *mongo.Client) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("DLQ worker stopping")
				return
			default:
				result, err := wp.Redis.BLPop(ctx, 10*time.Second, queue.DLQKey).Result()
				if err == redis.Nil {
					continue
				} else if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error().Err(err).Msg("DLQWorker pop failed")
					continue
				}

				payload := result[1]
				var job queue.Job
				if err := json.Unmarshal([]byte(payload), &job); err != nil {
					log.Warn().Err(err).Msg("DLQWorker invalid job payload")
					continue
				}

				dlqDoc := entity.DLQJob{
					JobID:              job.ID,
					Type:               job.Type,
					Payload:            job.Payload,
					Status:             "pending",
					RetryCount:         0,
					OriginalRetryCount: job.Retry,
					ErrorMsg:           job.ErrorMsg,
					CreatedAt:          time.Now().UTC(),
					ExpireAt:           time.Now().Add(7 * 24 * time.Hour).UTC(),
				}

				collection := mongoClient.Database(dlqDatabase).Collection(dlqCollection)
				if _, err := collection.InsertOne(ctx, dlqDoc); err != nil {
					log.Error().Err(err).Msg("Failed to persist DLQ job to MongoDB")

					// fallback: put back to the redis DLQ
					wp.Redis.RPush(ctx, queue.DLQKey, payload)
				} else {
					log.Info().Str("job_id", job.ID).Str("type", job.Type).Msg("DLQ job persisted to MongoDB")
				}
			}
		}
	}()
}

// GetDLQStats aggregates DLQ job counts by status.
func GetDLQStats(ctx context.Context, mongoClient *mongo.Client) (map[string]int64, error) {
	collection := mongoClient.Database(dlqDatabase).Collection(dlqCollection)

	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make(map[string]int64)
	for cursor.Next(ctx) {
		var result struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue
		}
		stats[result.Status] = result.Count
	}

	return stats, nil
}
