package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/metrics"
)

const signupKeyPrefix = "signup:"

// PendingSignup is the registration record awaiting OTP verification.
type PendingSignup struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

// Expired reports whether the embedded OTP deadline has passed.
func (p *PendingSignup) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PendingStore keeps pending signups in Redis so every API replica sees
// the same state. Keys carry the OTP TTL and disappear on their own.
type PendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingStore(client *redis.Client, ttl time.Duration) *PendingStore {
	return &PendingStore{client: client, ttl: ttl}
}

func signupKey(email string) string {
	return signupKeyPrefix + email
}

// Put stores a fresh pending signup, overwriting any previous record for
// the email. A new OTP always invalidates the old one.
func (s *PendingStore) Put(ctx context.Context, email, otp string) error {
	start := time.Now()

	record := PendingSignup{
		OTP:       otp,
		ExpiresAt: time.Now().Add(s.ttl),
		Verified:  false,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.InternalError("marshal pending signup")
	}

	err = s.client.Set(ctx, signupKey(email), payload, s.ttl).Err()
	observeRedis("pending_put", start, err)
	if err != nil {
		return apperrors.UnavailableError("pending store", err)
	}

	return nil
}

// Get returns the pending signup for the email.
func (s *PendingStore) Get(ctx context.Context, email string) (*PendingSignup, error) {
	start := time.Now()

	payload, err := s.client.Get(ctx, signupKey(email)).Bytes()
	observeRedis("pending_get", start, err)
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFoundError("pending signup")
	}
	if err != nil {
		return nil, apperrors.UnavailableError("pending store", err)
	}

	var record PendingSignup
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, apperrors.InternalError("unmarshal pending signup")
	}

	return &record, nil
}

// MarkVerified flips the verified flag on the pending signup. The update
// runs under WATCH so a concurrent Put is never silently overwritten.
// A missing key is a no-op: the record either expired or was consumed.
func (s *PendingStore) MarkVerified(ctx context.Context, email string) error {
	start := time.Now()
	key := signupKey(email)

	txn := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var record PendingSignup
		if err := json.Unmarshal(payload, &record); err != nil {
			return err
		}
		record.Verified = true

		updated, err := json.Marshal(record)
		if err != nil {
			return err
		}

		remaining, err := tx.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		if remaining <= 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, remaining)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	observeRedis("pending_mark_verified", start, err)
	if err != nil {
		return apperrors.UnavailableError("pending store", err)
	}

	return nil
}

// Pop atomically removes and returns the pending signup. Under concurrent
// callers exactly one receives the record; the rest get ErrNotFound.
func (s *PendingStore) Pop(ctx context.Context, email string) (*PendingSignup, error) {
	start := time.Now()

	payload, err := s.client.GetDel(ctx, signupKey(email)).Bytes()
	observeRedis("pending_pop", start, err)
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFoundError("pending signup")
	}
	if err != nil {
		return nil, apperrors.UnavailableError("pending store", err)
	}

	var record PendingSignup
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, apperrors.InternalError("unmarshal pending signup")
	}

	return &record, nil
}

func observeRedis(operation string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, redis.Nil) {
		status = "error"
	}
	metrics.RedisRequestDuration.WithLabelValues(operation, status).Observe(metrics.MeasureDuration(start))
	metrics.RedisRequestTotal.WithLabelValues(operation, status).Inc()
}
