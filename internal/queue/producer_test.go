package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	producer := NewProducer(client)

	job := NewJob("broadcast_reaction", map[string]string{"message_id": "abc"})
	require.NoError(t, producer.Enqueue(context.Background(), job))

	members, err := client.ZRangeByScore(context.Background(), QueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	var stored Job
	require.NoError(t, json.Unmarshal([]byte(members[0]), &stored))
	assert.Equal(t, job.ID, stored.ID)
	assert.Equal(t, "broadcast_reaction", stored.Type)
	assert.Equal(t, 3, stored.MaxRetry)

	score, err := client.ZScore(context.Background(), QueueKey, members[0]).Result()
	require.NoError(t, err)
	assert.Equal(t, float64(job.CreatedAt), score, "a fresh job is poppable immediately")
}

func TestNewJobDefaults(t *testing.T) {
	job := NewJob("broadcast_reaction", map[string]string{"emoji": "fire"})

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, 1, job.Priority)
	assert.Equal(t, 0, job.Retry)
	assert.Greater(t, job.ExpireAt, job.CreatedAt)
	assert.NotNil(t, job.Payload)
}
