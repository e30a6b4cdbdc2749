package mocks

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// TxBeginnerMock 回傳 FakeTx，只記錄 Commit 與 Rollback
type TxBeginnerMock struct {
	mu  sync.Mutex
	Err error
	Txs []*FakeTx
}

func (m *TxBeginnerMock) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	tx := &FakeTx{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// Last 最後一次開啟的交易
func (m *TxBeginnerMock) Last() *FakeTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Txs) == 0 {
		return nil
	}
	return m.Txs[len(m.Txs)-1]
}

// FakeTx 其他方法呼叫時會 panic
type FakeTx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
}

func (tx *FakeTx) Commit(context.Context) error {
	tx.Committed = true
	return nil
}

// Rollback 已提交時與 pgx 相同回傳 ErrTxClosed
func (tx *FakeTx) Rollback(context.Context) error {
	if tx.Committed {
		return pgx.ErrTxClosed
	}
	tx.RolledBack = true
	return nil
}
