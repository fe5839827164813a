package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/entity"

	"github.com/hibiken/asynq"
)

const promotionTaskTimeout = 30 * time.Second

type PromotionPayload struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

func NewPromotionTask(key entity.SlotKey) (*asynq.Task, error) {
	payload, err := json.Marshal(PromotionPayload{Date: key.Date, TimeSlot: key.TimeSlot})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskSlotPromotion, payload), nil
}

// TaskScheduler hands promotion retries to the asynq queue so that they
// survive restarts of the API process.
type TaskScheduler struct {
	client   *asynq.Client
	maxRetry int
}

func NewTaskScheduler(client *asynq.Client, maxRetry int) *TaskScheduler {
	return &TaskScheduler{client: client, maxRetry: maxRetry}
}

func (s *TaskScheduler) SchedulePromotion(ctx context.Context, key entity.SlotKey) error {
	task, err := NewPromotionTask(key)
	if err != nil {
		return fmt.Errorf("build promotion task: %w", err)
	}
	info, err := s.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(s.maxRetry),
		asynq.Timeout(promotionTaskTimeout),
		asynq.ProcessIn(time.Second),
	)
	if err != nil {
		logger.Error("TaskScheduler:SchedulePromotion", "slot", key.String(), "error", err)
		return fmt.Errorf("enqueue promotion task: %w", err)
	}
	logger.Info("TaskScheduler:SchedulePromotion:Enqueued", "slot", key.String(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

type Promoter interface {
	PromoteWaiting(ctx context.Context, key entity.SlotKey) (int, error)
}

type PromotionHandler struct {
	promoter Promoter
}

func NewPromotionHandler(promoter Promoter) *PromotionHandler {
	return &PromotionHandler{promoter: promoter}
}

// ProcessTask fills the freed venues of a slot. Returning an error lets asynq
// retry with its own backoff.
func (h *PromotionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p PromotionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.Error("PromotionHandler:ProcessTask:BadPayload", "error", err)
		return fmt.Errorf("decode promotion payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Date == "" || p.TimeSlot == "" {
		return fmt.Errorf("promotion payload without slot: %w", asynq.SkipRetry)
	}

	key := entity.SlotKey{Date: p.Date, TimeSlot: p.TimeSlot}
	promoted, err := h.promoter.PromoteWaiting(ctx, key)
	if err != nil {
		logger.Warn("PromotionHandler:ProcessTask:Failed", "slot", key.String(), "promoted", promoted, "error", err)
		return err
	}
	logger.Info("PromotionHandler:ProcessTask:Done", "slot", key.String(), "promoted", promoted)
	return nil
}

func Register(mux *asynq.ServeMux, promoter Promoter) {
	mux.Handle(constants.TaskSlotPromotion, NewPromotionHandler(promoter))
}
