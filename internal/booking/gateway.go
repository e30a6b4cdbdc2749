package booking

import (
	"context"
	"fmt"

	"luxe-booking/internal/model"

	"github.com/google/uuid"
)

// Gateway 外部預約服務
type Gateway interface {
	// 取得活動的票種與售票時段設定
	FetchTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error)
	// 送出預約；服務端拒絕時回傳 Success=false 的結果，網路錯誤才回傳 error
	SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.ReservationResult, error)
	// 取得尊榮方案目錄
	FetchVIPTiers(ctx context.Context) ([]model.VIPTier, error)
	// 送出尊榮方案預約
	SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (bool, error)
}

// LoadError 設定或方案目錄載入失敗，頁面層顯示訊息且不提供預約介面
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SubmissionError 預約服務拒絕或網路失敗；使用者輸入保留以便重試
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reservation failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("reservation failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
