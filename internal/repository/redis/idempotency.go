package redisrepo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdemState is what Begin found under an Idempotency-Key.
type IdemState int

const (
	// IdemAcquired means the caller now owns the key and must Complete or
	// Release it.
	IdemAcquired IdemState = iota
	IdemInFlight
	IdemReplay
	// IdemMismatch means the key was first used with a different request.
	IdemMismatch
)

// IdemResponse is a stored response replayed for a repeated key.
type IdemResponse struct {
	Status int
	Body   []byte
}

// beginScript claims an unused key for one request fingerprint, or reports
// the record already stored there.
var beginScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('HSET', KEYS[1], 'state', 'running', 'fp', ARGV[1])
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  return {'acquired'}
end
return redis.call('HMGET', KEYS[1], 'state', 'fp', 'status', 'body')
`)

// IdempotencyStore keeps one hash per Idempotency-Key holding the request
// fingerprint and, once the request finished, its response.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Begin claims key for a request with the given fingerprint. The claim
// expires after lockTTL if the owner never completes it.
func (s *IdempotencyStore) Begin(ctx context.Context, key, fingerprint string, lockTTL time.Duration) (IdemState, *IdemResponse, error) {
	const op = "redisrepo.IdempotencyStore.Begin"

	vals, err := beginScript.Run(ctx, s.rdb, []string{key}, fingerprint, lockTTL.Milliseconds()).Slice()
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(vals) == 1 {
		return IdemAcquired, nil, nil
	}
	if len(vals) != 4 {
		return 0, nil, fmt.Errorf("%s: unexpected reply of %d fields", op, len(vals))
	}

	state, _ := vals[0].(string)
	fp, _ := vals[1].(string)
	if fp != fingerprint {
		return IdemMismatch, nil, nil
	}
	if state != "done" {
		return IdemInFlight, nil, nil
	}

	code, _ := vals[2].(string)
	status, err := strconv.Atoi(code)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: stored status %q: %w", op, code, err)
	}
	body, _ := vals[3].(string)

	return IdemReplay, &IdemResponse{Status: status, Body: []byte(body)}, nil
}

// Complete stores the response of the request that owns key and keeps it
// for the store's TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	const op = "redisrepo.IdempotencyStore.Complete"

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "state", "done", "status", status, "body", body)
		p.PExpire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Release forgets key so the request can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	const op = "redisrepo.IdempotencyStore.Release"

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
