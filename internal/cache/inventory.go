package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InventorySnapshot Redis 中的容量計數
type InventorySnapshot struct {
	Capacity int
	Sold     int
	Active   bool
}

func (s InventorySnapshot) Available() int {
	if s.Sold >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Sold
}

type InventoryManager interface {
	// 預熱：key 不存在時才寫入，避免覆蓋尚未落庫的售出數
	WarmUp(ctx context.Context, key string, snapshot InventorySnapshot) (bool, error)
	// 獲取：容量與已售數量
	Get(ctx context.Context, key string) (InventorySnapshot, error)
	// 保留：檢查剩餘容量並增加已售數量 (使用Lua腳本確保原子性)
	Reserve(ctx context.Context, key string, quantity int) error
	// 釋放：回滾已售數量，不會低於 0 (使用Lua腳本確保原子性)
	Release(ctx context.Context, key string, quantity int) error
	// 上下架：只更新既有計數的 active 旗標，不動已售數量；key 不存在時不做任何事
	SetActive(ctx context.Context, key string, active bool) error
}

type InventoryManagerImpl struct {
	client *redis.Client
}

func NewInventoryManager(client *redis.Client) InventoryManager {
	return &InventoryManagerImpl{
		client: client,
	}
}

// OfferingKey 票種容量 key
func OfferingKey(offeringID uuid.UUID) string {
	return fmt.Sprintf("inventory:offering:%s", offeringID)
}

// TierKey 尊榮方案容量 key，以預約筆數計
func TierKey(tierID uuid.UUID) string {
	return fmt.Sprintf("inventory:tier:%s", tierID)
}

const warmUpScript = `
	local key = KEYS[1]
	if redis.call('EXISTS', key) == 1 then
		return 0
	end
	redis.call('HSET', key, 'capacity', ARGV[1], 'sold', ARGV[2], 'active', ARGV[3])
	return 1
`

const reserveScript = `
	local key = KEYS[1]
	local qty = tonumber(ARGV[1])

	local info = redis.call('HMGET', key, 'capacity', 'sold', 'active')
	local capacity = info[1]
	local sold = info[2]
	local active = info[3]

	-- 尚未預熱
	if not capacity or not sold then
		return -3
	end

	-- 已停售
	if active ~= '1' then
		return -4
	end

	-- 容量不足
	if tonumber(sold) + qty > tonumber(capacity) then
		return -1
	end

	redis.call('HINCRBY', key, 'sold', qty)
	return 1
`

const releaseScript = `
	local key = KEYS[1]
	local qty = tonumber(ARGV[1])

	if redis.call('EXISTS', key) == 0 then
		return 0
	end

	local sold = tonumber(redis.call('HGET', key, 'sold') or '0') - qty
	if sold < 0 then
		sold = 0
	end
	redis.call('HSET', key, 'sold', sold)
	return 1
`

const setActiveScript = `
	local key = KEYS[1]
	if redis.call('EXISTS', key) == 0 then
		return 0
	end
	redis.call('HSET', key, 'active', ARGV[1])
	return 1
`

func (m *InventoryManagerImpl) WarmUp(ctx context.Context, key string, snapshot InventorySnapshot) (bool, error) {
	active := 0
	if snapshot.Active {
		active = 1
	}
	written, err := m.client.Eval(ctx, warmUpScript, []string{key}, snapshot.Capacity, snapshot.Sold, active).Int()
	if err != nil {
		return false, fmt.Errorf("warm up %s: %w", key, err)
	}
	return written == 1, nil
}

func (m *InventoryManagerImpl) Get(ctx context.Context, key string) (InventorySnapshot, error) {
	result, err := m.client.HGetAll(ctx, key).Result()
	if err != nil {
		return InventorySnapshot{}, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return InventorySnapshot{}, apperrors.ErrInventoryNotLoaded
	}

	capacity, err := strconv.Atoi(result["capacity"])
	if err != nil {
		return InventorySnapshot{}, fmt.Errorf("invalid capacity: %w", err)
	}
	sold, err := strconv.Atoi(result["sold"])
	if err != nil {
		return InventorySnapshot{}, fmt.Errorf("invalid sold: %w", err)
	}

	return InventorySnapshot{
		Capacity: capacity,
		Sold:     sold,
		Active:   result["active"] == "1",
	}, nil
}

func (m *InventoryManagerImpl) Reserve(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidInput
	}

	code, err := m.client.Eval(ctx, reserveScript, []string{key}, quantity).Int()
	if err != nil {
		return fmt.Errorf("reserve %s: %w", key, err)
	}

	switch code {
	case 1:
		return nil
	case -1:
		return apperrors.ErrInsufficientStock
	case -3:
		return apperrors.ErrInventoryNotLoaded
	case -4:
		return apperrors.ErrSalesClosed
	default:
		return errors.New("unexpected reserve result")
	}
}

func (m *InventoryManagerImpl) Release(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	if err := m.client.Eval(ctx, releaseScript, []string{key}, quantity).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func (m *InventoryManagerImpl) SetActive(ctx context.Context, key string, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	if err := m.client.Eval(ctx, setActiveScript, []string{key}, flag).Err(); err != nil {
		return fmt.Errorf("set active %s: %w", key, err)
	}
	return nil
}
