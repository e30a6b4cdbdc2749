package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"luxe-booking/internal/model"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReservation() *model.Reservation {
	return &model.Reservation{
		Code:    "LX-AB12CD34",
		Kind:    model.ReservationKindTicket,
		EventID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Lines: []model.ReservedLine{
			{OfferingID: uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8"), Name: "General", Category: model.CategoryStandard, Quantity: 2, Subtotal: decimal.RequireFromString("160.00")},
		},
		Contact:     model.ContactInfo{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
		TotalAmount: decimal.RequireFromString("160.00"),
		Status:      model.ReservationStatusPending,
	}
}

func TestReservationQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewReservationQueue(4)
	msgs, err := q.SubscribeReservations(ctx)
	require.NoError(t, err)

	reservation := newTestReservation()
	require.NoError(t, q.PublishReservation(ctx, reservation))

	select {
	case d := <-msgs:
		assert.Equal(t, reservation.Code, d.Data.Code)
		d.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestReservationQueue_NackRequeue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewReservationQueue(4)
	msgs, err := q.SubscribeReservations(ctx)
	require.NoError(t, err)
	require.NoError(t, q.PublishReservation(ctx, newTestReservation()))

	first := <-msgs
	first.Nack(true)

	select {
	case d := <-msgs:
		assert.Equal(t, first.Data.Code, d.Data.Code)
	case <-time.After(time.Second):
		t.Fatal("requeued reservation was not redelivered")
	}
}

func TestReservationQueue_LastAttemptAfterRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewReservationQueue(4)
	msgs, err := q.SubscribeReservations(ctx)
	require.NoError(t, err)
	require.NoError(t, q.PublishReservation(ctx, newTestReservation()))

	for attempt := 1; attempt <= MemoryMaxAttempts; attempt++ {
		select {
		case d := <-msgs:
			assert.Equal(t, attempt == MemoryMaxAttempts, d.LastAttempt, "attempt %d", attempt)
			d.Nack(true)
		case <-time.After(time.Second):
			t.Fatalf("attempt %d was not delivered", attempt)
		}
	}

	select {
	case d := <-msgs:
		t.Fatalf("unexpected redelivery of %s", d.Data.Code)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReservationQueue_PublishHonoursContext(t *testing.T) {
	q := NewReservationQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.PublishReservation(ctx, newTestReservation())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReservationQueue_ClosedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewReservationQueue(1)
	msgs, err := q.SubscribeReservations(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("delivery channel not closed")
	}
}

func newTestStreamQueue(t *testing.T) (*RedisStreamReservationQueueImpl, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	mock.ExpectXGroupCreateMkStream(StreamKey, ConsumerGroupName, "0").SetVal("OK")

	q, err := NewRedisStreamReservationQueue(context.Background(), db, "test", nil)
	require.NoError(t, err)
	return q.(*RedisStreamReservationQueueImpl), mock
}

func TestRedisStreamQueue_New(t *testing.T) {
	t.Run("Group already exists", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectXGroupCreateMkStream(StreamKey, ConsumerGroupName, "0").
			SetErr(errors.New("BUSYGROUP Consumer Group name already exists"))

		q, err := NewRedisStreamReservationQueue(context.Background(), db, "w1", &RedisStreamConfig{MaxRetryCount: 3})
		require.NoError(t, err)

		impl := q.(*RedisStreamReservationQueueImpl)
		assert.Equal(t, "worker:w1", impl.consumerName)
		assert.Equal(t, 3, impl.cfg.MaxRetryCount)
		assert.Equal(t, 5*time.Second, impl.cfg.ClaimMinIdleTime)
	})

	t.Run("Redis error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectXGroupCreateMkStream(StreamKey, ConsumerGroupName, "0").SetErr(errors.New("NOAUTH"))

		_, err := NewRedisStreamReservationQueue(context.Background(), db, "w1", nil)
		assert.ErrorContains(t, err, "ensure consumer group")
	})
}

func TestRedisStreamQueue_Publish(t *testing.T) {
	q, mock := newTestStreamQueue(t)
	reservation := newTestReservation()
	payload, err := json.Marshal(reservation)
	require.NoError(t, err)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: StreamKey,
		ID:     "*",
		Values: map[string]interface{}{messageField: string(payload)},
	}).SetVal("1700000000000-0")

	require.NoError(t, q.PublishReservation(context.Background(), reservation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStreamQueue_NewDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Ack", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		payload, _ := json.Marshal(newTestReservation())
		msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{messageField: string(payload)}}

		d := q.newDelivery(ctx, msg, false)
		require.NotNil(t, d)
		assert.False(t, d.LastAttempt)
		assert.Equal(t, "LX-AB12CD34", d.Data.Code)
		assert.Equal(t, "ada@example.com", d.Data.Contact.Email)

		mock.ExpectXAck(StreamKey, ConsumerGroupName, "1-0").SetVal(1)
		d.Ack()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nack without requeue discards", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		payload, _ := json.Marshal(newTestReservation())
		d := q.newDelivery(ctx, redis.XMessage{ID: "2-0", Values: map[string]interface{}{messageField: string(payload)}}, true)
		require.NotNil(t, d)
		assert.True(t, d.LastAttempt)

		d.Nack(true)
		mock.ExpectXAck(StreamKey, ConsumerGroupName, "2-0").SetVal(1)
		d.Nack(false)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Malformed message is acked and skipped", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXAck(StreamKey, ConsumerGroupName, "3-0").SetVal(1)

		d := q.newDelivery(ctx, redis.XMessage{ID: "3-0", Values: map[string]interface{}{messageField: "{not json"}}, false)
		assert.Nil(t, d)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStreamQueue_ShouldProcessMessage(t *testing.T) {
	ctx := context.Background()
	args := func(id string) *redis.XPendingExtArgs {
		return &redis.XPendingExtArgs{Stream: StreamKey, Group: ConsumerGroupName, Start: id, End: id, Count: 1}
	}

	t.Run("Below retry limit", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXPendingExt(args("4-0")).SetVal([]redis.XPendingExt{{ID: "4-0", RetryCount: 2}})

		process, last := q.shouldProcessMessage(ctx, "4-0")
		assert.True(t, process)
		assert.False(t, last)
	})

	t.Run("Last attempt before discard", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXPendingExt(args("6-0")).SetVal([]redis.XPendingExt{{ID: "6-0", RetryCount: 4}})

		process, last := q.shouldProcessMessage(ctx, "6-0")
		assert.True(t, process)
		assert.True(t, last)
	})

	t.Run("Poison message", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXPendingExt(args("5-0")).SetVal([]redis.XPendingExt{{ID: "5-0", RetryCount: 5}})
		mock.ExpectXAck(StreamKey, ConsumerGroupName, "5-0").SetVal(1)

		process, _ := q.shouldProcessMessage(ctx, "5-0")
		assert.False(t, process)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
