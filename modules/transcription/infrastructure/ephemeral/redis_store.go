package ephemeral

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/modules/transcription/domain/services"
)

// RedisStore is the Redis-backed Ephemeral Store (spec §4.A / §3 "Store
// keys"). Every append refreshes the key's TTL; the store never guarantees
// durability past that TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore against an already-dialed client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func transcriptionKey(sessionID string) string { return fmt.Sprintf("session:%s:transcription", sessionID) }
func audioKey(sessionID string) string         { return fmt.Sprintf("session:%s:audio", sessionID) }
func stateKey(sessionID string) string         { return fmt.Sprintf("session:%s:state", sessionID) }

func (s *RedisStore) AppendTranscription(ctx context.Context, sessionID string, segment entities.TranscriptionSegment) error {
	payload, err := json.Marshal(segment)
	if err != nil {
		return fmt.Errorf("marshal segment: %w", err)
	}
	key := transcriptionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListTranscriptions(ctx context.Context, sessionID string) ([]entities.TranscriptionSegment, error) {
	raw, err := s.client.LRange(ctx, transcriptionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]entities.TranscriptionSegment, 0, len(raw))
	// raw is newest-first (LPush); reverse to restore chronological order.
	for i := len(raw) - 1; i >= 0; i-- {
		var seg entities.TranscriptionSegment
		if err := json.Unmarshal([]byte(raw[i]), &seg); err != nil {
			return nil, fmt.Errorf("unmarshal segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, nil
}

func (s *RedisStore) ClearTranscriptions(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, transcriptionKey(sessionID)).Err()
}

func (s *RedisStore) AppendAudio(ctx context.Context, sessionID string, chunk entities.AudioChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	key := audioKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListAudio(ctx context.Context, sessionID string) ([]entities.AudioChunk, error) {
	raw, err := s.client.LRange(ctx, audioKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]entities.AudioChunk, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var chunk entities.AudioChunk
		if err := json.Unmarshal([]byte(raw[i]), &chunk); err != nil {
			return nil, fmt.Errorf("unmarshal chunk: %w", err)
		}
		out = append(out, chunk)
	}
	return out, nil
}

func (s *RedisStore) ClearAudio(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, audioKey(sessionID)).Err()
}

func (s *RedisStore) SetState(ctx context.Context, sessionID string, kv map[string]string) error {
	if len(kv) == 0 {
		return nil
	}
	key := stateKey(sessionID)
	fields := make(map[string]interface{}, len(kv))
	for k, v := range kv {
		fields[k] = v
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetState(ctx context.Context, sessionID string) (map[string]string, error) {
	return s.client.HGetAll(ctx, stateKey(sessionID)).Result()
}

func (s *RedisStore) CacheSet(ctx context.Context, key string, value string, ttlSeconds int) error {
	return s.client.Set(ctx, key, value, time.Duration(ttlSeconds)*time.Second).Err()
}

func (s *RedisStore) CacheGet(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) CacheDelete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

var _ services.EphemeralStore = (*RedisStore)(nil)
