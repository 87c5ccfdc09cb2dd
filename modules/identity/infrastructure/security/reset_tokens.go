package security

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AlagappanMk24/Gymunity/modules/identity/domain"
)

const resetKeyPrefix = "gymunity:password-reset:"

// consumeScript deletes the key only when it holds the presented token.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisResetTokenStore keeps reset tokens in Redis with a TTL.
type RedisResetTokenStore struct {
	client redis.UniversalClient
}

func NewRedisResetTokenStore(client redis.UniversalClient) *RedisResetTokenStore {
	return &RedisResetTokenStore{client: client}
}

var _ domain.ResetTokenStore = (*RedisResetTokenStore)(nil)

// Save replaces any earlier token of the user.
func (s *RedisResetTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKeyPrefix+userID, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisResetTokenStore) Consume(ctx context.Context, userID, token string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{resetKeyPrefix + userID}, token).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis consume: %w", err)
	}
	return n == 1, nil
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

// MemoryResetTokenStore is used when no Redis address is configured.
// Tokens do not survive a restart.
type MemoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{tokens: make(map[string]memoryToken), now: time.Now}
}

var _ domain.ResetTokenStore = (*MemoryResetTokenStore)(nil)

func (s *MemoryResetTokenStore) Save(_ context.Context, userID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = memoryToken{value: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryResetTokenStore) Consume(_ context.Context, userID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[userID]
	if !ok {
		return false, nil
	}
	if s.now().After(t.expiresAt) {
		delete(s.tokens, userID)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(t.value), []byte(token)) != 1 {
		return false, nil
	}
	delete(s.tokens, userID)
	return true, nil
}
