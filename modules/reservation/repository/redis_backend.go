package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/modules/reservation/entity"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each slot as a JSON value and updates it with
// WATCH/MULTI/EXEC. Two set indexes make date and team scans possible.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func slotRedisKey(key entity.SlotKey) string {
	return constants.RedisKeySlot + key.Date + ":" + key.TimeSlot
}

func dateIndexKey(date string) string {
	return constants.RedisKeySlotsByDate + date
}

func decodeSlot(raw []byte, key entity.SlotKey, venues int) (*entity.Slot, error) {
	slot := &entity.Slot{}
	if err := json.Unmarshal(raw, slot); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", key, err)
	}
	slot.Date = key.Date
	slot.TimeSlot = key.TimeSlot
	slot.Normalize(venues)
	return slot, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readSlot(ctx context.Context, cmd stringGetter, key entity.SlotKey, venues int) (*entity.Slot, error) {
	raw, err := cmd.Get(ctx, slotRedisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.NewSlot(key, venues), nil
		}
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	return decodeSlot(raw, key, venues)
}

func (b *RedisBackend) Load(ctx context.Context, key entity.SlotKey, venues int) (*entity.Slot, error) {
	return readSlot(ctx, b.client, key, venues)
}

func (b *RedisBackend) Mutate(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, error) {
	redisKey := slotRedisKey(key)
	var result *entity.Slot

	txf := func(tx *redis.Tx) error {
		result = nil
		slot, err := readSlot(ctx, tx, key, venues)
		if err != nil {
			return err
		}

		changed, err := fn(slot)
		if err != nil {
			return err
		}
		if !changed {
			result = slot
			return nil
		}

		slot.Version++
		slot.UpdatedAt = time.Now().UTC()
		raw, err := json.Marshal(slot)
		if err != nil {
			return fmt.Errorf("encode slot %s: %w", key, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, raw, 0)
			pipe.SAdd(ctx, dateIndexKey(key.Date), key.TimeSlot)
			pipe.SAdd(ctx, constants.RedisKeySlotsAll, redisKey)
			return nil
		})
		if err != nil {
			return err
		}
		result = slot
		return nil
	}

	for i := 0; i < maxConflictRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := b.client.Watch(ctx, txf, redisKey)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("mutate slot %s: %w", key, ErrConflict)
}

func (b *RedisBackend) loadMany(ctx context.Context, redisKeys []string) ([]*entity.Slot, error) {
	if len(redisKeys) == 0 {
		return []*entity.Slot{}, nil
	}
	values, err := b.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget slots: %w", err)
	}

	out := make([]*entity.Slot, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		slot := &entity.Slot{}
		if err := json.Unmarshal([]byte(raw), slot); err != nil {
			return nil, fmt.Errorf("decode slot %s: %w", redisKeys[i], err)
		}
		if slot.Waitlist == nil {
			slot.Waitlist = []string{}
		}
		out = append(out, slot)
	}
	sortSlots(out)
	return out, nil
}

func (b *RedisBackend) ListByDate(ctx context.Context, date string) ([]*entity.Slot, error) {
	timeSlots, err := b.client.SMembers(ctx, dateIndexKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("list slots of %s: %w", date, err)
	}
	keys := make([]string, 0, len(timeSlots))
	for _, ts := range timeSlots {
		keys = append(keys, slotRedisKey(entity.SlotKey{Date: date, TimeSlot: ts}))
	}
	return b.loadMany(ctx, keys)
}

// ListByTeam scans every stored slot.
func (b *RedisBackend) ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error) {
	keys, err := b.client.SMembers(ctx, constants.RedisKeySlotsAll).Result()
	if err != nil {
		return nil, fmt.Errorf("list all slots: %w", err)
	}
	slots, err := b.loadMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Slot, 0)
	for _, s := range slots {
		if s.Holds(teamID) {
			out = append(out, s)
		}
	}
	return out, nil
}
