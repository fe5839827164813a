package worker

import (
	"context"
	"errors"
	"testing"

	"court-reservation-api/core/constants"
	"court-reservation-api/modules/reservation/entity"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePromoter struct {
	keys []entity.SlotKey
	err  error
}

func (f *fakePromoter) PromoteWaiting(ctx context.Context, key entity.SlotKey) (int, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestPromotionHandler_ProcessTask(t *testing.T) {
	key := entity.SlotKey{Date: "2024-05-01", TimeSlot: "18:00"}
	task, err := NewPromotionTask(key)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskSlotPromotion, task.Type())

	promoter := &fakePromoter{}
	require.NoError(t, NewPromotionHandler(promoter).ProcessTask(context.Background(), task))
	assert.Equal(t, []entity.SlotKey{key}, promoter.keys)
}

func TestPromotionHandler_StoreFailureIsRetried(t *testing.T) {
	task, err := NewPromotionTask(entity.SlotKey{Date: "2024-05-01", TimeSlot: "18:00"})
	require.NoError(t, err)

	storeErr := errors.New("store down")
	err = NewPromotionHandler(&fakePromoter{err: storeErr}).ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestPromotionHandler_BadPayloadSkipsRetry(t *testing.T) {
	promoter := &fakePromoter{}
	handler := NewPromotionHandler(promoter)

	err := handler.ProcessTask(context.Background(), asynq.NewTask(constants.TaskSlotPromotion, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = handler.ProcessTask(context.Background(), asynq.NewTask(constants.TaskSlotPromotion, []byte(`{"date":"2024-05-01"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, promoter.keys)
}
