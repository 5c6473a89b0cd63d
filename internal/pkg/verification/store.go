package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	codeKeyPrefix = "verify:email:"
	codeTTL       = 10 * time.Minute
)

// Store keeps short-lived email verification codes in Redis with an
// explicit TTL instead of a process-global map, so eviction does not
// depend on a later read and multiple instances share state.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// GenerateCode produces a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Save stores the code for the address, replacing any previous one.
func (s *Store) Save(ctx context.Context, email, code string) error {
	return s.rdb.Set(ctx, codeKeyPrefix+email, code, codeTTL).Err()
}

// Consume checks the code for the address and deletes it on a match so
// it cannot be reused. A missing or mismatched code returns false.
func (s *Store) Consume(ctx context.Context, email, code string) (bool, error) {
	key := codeKeyPrefix + email

	var matched bool
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		if val != code {
			return nil
		}

		matched = true
		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if err != nil {
		return false, err
	}
	return matched, nil
}
