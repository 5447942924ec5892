package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message — одна реплика переписки с ассистентом.
type Message struct {
	Role string `json:"role"` // "user" или "assistant"
	Text string `json:"text"`
}

const conversationKeyPrefix = "assistant:conversation:"

// ConversationCache — эфемерный кэш переписки. Это не часть документа
// профиля: простой слот ключ-значение, читается при загрузке и целиком
// перезаписывается при каждом изменении. Версионирования схемы нет.
type ConversationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewConversationCache(rdb *redis.Client, ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationCache{rdb: rdb, ttl: ttl}
}

func (c *ConversationCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", conversationKeyPrefix, userID)
}

// Load читает сохранённую переписку; отсутствие ключа — пустая переписка.
func (c *ConversationCache) Load(ctx context.Context, userID uint) ([]Message, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		// Повреждённый кэш не фатален — начинаем переписку заново.
		return []Message{}, nil
	}
	return msgs, nil
}

// Save перезаписывает переписку целиком.
func (c *ConversationCache) Save(ctx context.Context, userID uint, msgs []Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(userID), raw, c.ttl).Err()
}

func (c *ConversationCache) Clear(ctx context.Context, userID uint) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}
