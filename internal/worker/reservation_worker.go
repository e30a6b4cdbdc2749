package worker

import (
	"context"
	"errors"

	"luxe-booking/internal/queue"
	"luxe-booking/internal/service"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"go.uber.org/zap"
)

type ReservationWorker interface {
	// 訂閱預約隊列
	Start(ctx context.Context) error
}

type ReservationWorkerImpl struct {
	service service.ReservationService
	queue   queue.ReservationQueue
	log     *zap.Logger
}

func NewReservationWorker(service service.ReservationService, queue queue.ReservationQueue) ReservationWorker {
	return &ReservationWorkerImpl{
		service: service,
		queue:   queue,
		log:     logger.WithComponent("reservation_worker"),
	}
}

func (w *ReservationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeReservations(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			// 把「訊息」變成「資料庫紀錄」；重複送達由 service 視為成功
			if err := w.service.PersistReservation(ctx, msg.Data); err != nil {
				if msg.LastAttempt || isPermanent(err) {
					w.discard(ctx, msg, err)
					continue
				}
				w.log.Warn("persist reservation failed, requeue",
					zap.String("code", msg.Data.Code),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
		w.log.Info("reservation worker stopped")
	}()
	return nil
}

// discard 不再重試：歸還容量後把訊息移出隊列
func (w *ReservationWorkerImpl) discard(ctx context.Context, msg queue.Delivery, cause error) {
	w.log.Error("persist reservation failed, discard",
		zap.String("code", msg.Data.Code),
		zap.Bool("last_attempt", msg.LastAttempt),
		zap.Error(cause),
	)
	if err := w.service.DiscardReservation(ctx, msg.Data); err != nil {
		w.log.Error("discard reservation failed", zap.String("code", msg.Data.Code), zap.Error(err))
	}
	msg.Nack(false)
}

// isPermanent 重試也不會成功的錯誤
func isPermanent(err error) bool {
	return errors.Is(err, apperrors.ErrInsufficientStock) ||
		errors.Is(err, apperrors.ErrTierFull) ||
		errors.Is(err, apperrors.ErrInvalidInput)
}
