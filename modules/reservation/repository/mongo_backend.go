package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type slotDocument struct {
	ID        string    `bson:"_id"`
	Date      string    `bson:"date"`
	TimeSlot  string    `bson:"timeSlot"`
	Venues    []string  `bson:"venues"`
	Waitlist  []string  `bson:"waitlist"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d slotDocument) toEntity(venues int) *entity.Slot {
	slot := &entity.Slot{
		Date:      d.Date,
		TimeSlot:  d.TimeSlot,
		Venues:    append([]string(nil), d.Venues...),
		Waitlist:  append([]string{}, d.Waitlist...),
		Version:   d.Version,
		UpdatedAt: d.UpdatedAt,
	}
	slot.Normalize(venues)
	return slot
}

// MongoBackend stores one document per slot and writes with a compare-and-swap
// on the version field.
type MongoBackend struct {
	coll *mongo.Collection
}

func NewMongoBackend(coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{coll: coll}
}

// EnsureIndexes creates the lookup indexes used by the list queries.
func (b *MongoBackend) EnsureIndexes(ctx context.Context) error {
	_, err := b.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}}},
		{Keys: bson.D{{Key: "venues", Value: 1}}},
		{Keys: bson.D{{Key: "waitlist", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create slot indexes: %w", err)
	}
	return nil
}

func (b *MongoBackend) find(ctx context.Context, key entity.SlotKey) (*slotDocument, error) {
	var doc slotDocument
	err := b.coll.FindOne(ctx, bson.M{"_id": key.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find slot %s: %w", key, err)
	}
	return &doc, nil
}

func (b *MongoBackend) Load(ctx context.Context, key entity.SlotKey, venues int) (*entity.Slot, error) {
	doc, err := b.find(ctx, key)
	if err != nil {
		logger.Error("MongoBackend:Load", "key", key.String(), "error", err)
		return nil, err
	}
	if doc == nil {
		return entity.NewSlot(key, venues), nil
	}
	return doc.toEntity(venues), nil
}

func (b *MongoBackend) Mutate(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, error) {
	for i := 0; i < maxConflictRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := b.find(ctx, key)
		if err != nil {
			return nil, err
		}

		var slot *entity.Slot
		if doc == nil {
			slot = entity.NewSlot(key, venues)
		} else {
			slot = doc.toEntity(venues)
		}
		previous := slot.Version

		changed, err := fn(slot)
		if err != nil {
			return nil, err
		}
		if !changed {
			return slot, nil
		}

		slot.Version = previous + 1
		slot.UpdatedAt = time.Now().UTC()

		if doc == nil {
			_, err = b.coll.InsertOne(ctx, slotDocument{
				ID:        key.String(),
				Date:      key.Date,
				TimeSlot:  key.TimeSlot,
				Venues:    slot.Venues,
				Waitlist:  slot.Waitlist,
				Version:   slot.Version,
				UpdatedAt: slot.UpdatedAt,
			})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			if err != nil {
				logger.Error("MongoBackend:Mutate:Insert", "key", key.String(), "error", err)
				return nil, fmt.Errorf("insert slot %s: %w", key, err)
			}
			return slot, nil
		}

		res, err := b.coll.UpdateOne(ctx,
			bson.M{"_id": key.String(), "version": previous},
			bson.M{
				"$set": bson.M{
					"venues":    slot.Venues,
					"waitlist":  slot.Waitlist,
					"updatedAt": slot.UpdatedAt,
				},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			logger.Error("MongoBackend:Mutate:Update", "key", key.String(), "error", err)
			return nil, fmt.Errorf("update slot %s: %w", key, err)
		}
		if res.MatchedCount == 0 {
			continue
		}
		return slot, nil
	}
	return nil, fmt.Errorf("mutate slot %s: %w", key, ErrConflict)
}

func (b *MongoBackend) list(ctx context.Context, filter bson.M) ([]*entity.Slot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}})
	cursor, err := b.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []slotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Slot, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity(len(d.Venues)))
	}
	return out, nil
}

func (b *MongoBackend) ListByDate(ctx context.Context, date string) ([]*entity.Slot, error) {
	slots, err := b.list(ctx, bson.M{"date": date})
	if err != nil {
		logger.Error("MongoBackend:ListByDate", "date", date, "error", err)
		return nil, fmt.Errorf("list slots of %s: %w", date, err)
	}
	return slots, nil
}

func (b *MongoBackend) ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error) {
	slots, err := b.list(ctx, bson.M{"$or": bson.A{
		bson.M{"venues": teamID},
		bson.M{"waitlist": teamID},
	}})
	if err != nil {
		logger.Error("MongoBackend:ListByTeam", "team_id", teamID, "error", err)
		return nil, fmt.Errorf("list slots of team %s: %w", teamID, err)
	}
	return slots, nil
}
