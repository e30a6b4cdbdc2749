package queue

import (
	"context"

	"luxe-booking/internal/model"
)

type Delivery struct {
	Data *model.Reservation
	// 這是隊列最後一次投遞；失敗後不會再重試
	LastAttempt bool
	Ack         func()
	Nack        func(requeue bool)
}

// MemoryMaxAttempts 記憶體隊列對同一筆預約的最大投遞次數
const MemoryMaxAttempts = 5

type ReservationQueue interface {
	// 發送預約到隊列
	PublishReservation(ctx context.Context, reservation *model.Reservation) error
	// 訂閱預約隊列
	SubscribeReservations(ctx context.Context) (<-chan Delivery, error)
}

type queuedReservation struct {
	reservation *model.Reservation
	attempt     int
}

type ReservationQueueImpl struct {
	// 使用 Go channel 模擬 MQ，單機開發與測試用
	ch chan queuedReservation
}

func NewReservationQueue(bufferSize int) ReservationQueue {
	return &ReservationQueueImpl{
		ch: make(chan queuedReservation, bufferSize),
	}
}

func (q *ReservationQueueImpl) PublishReservation(ctx context.Context, reservation *model.Reservation) error {
	select {
	case q.ch <- queuedReservation{reservation: reservation, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ReservationQueueImpl) SubscribeReservations(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-q.ch:
				if !ok {
					return
				}

				last := item.attempt >= MemoryMaxAttempts
				d := Delivery{
					Data:        item.reservation,
					LastAttempt: last,
					Ack:         func() {},
					Nack: func(requeue bool) {
						if !requeue || last {
							return
						}
						// 另開 goroutine 重回隊列，隊列已滿時不卡住消費者
						next := queuedReservation{reservation: item.reservation, attempt: item.attempt + 1}
						go func() {
							select {
							case q.ch <- next:
							case <-ctx.Done():
							}
						}()
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
