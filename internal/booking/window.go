package booking

import (
	"fmt"
	"time"

	"luxe-booking/internal/model"
)

// WindowState 售票時段狀態
type WindowState string

const (
	WindowNotStarted WindowState = "not_started"
	WindowActive     WindowState = "active"
	WindowEnded      WindowState = "ended"
)

// PurchasesAllowed 只有 active 時允許任何購買操作
func (s WindowState) PurchasesAllowed() bool {
	return s == WindowActive
}

// EvaluateWindow 起訖時間皆包含在內
func EvaluateWindow(w model.SalesWindow, now time.Time) WindowState {
	switch {
	case now.Before(w.Start):
		return WindowNotStarted
	case now.After(w.End):
		return WindowEnded
	default:
		return WindowActive
	}
}

// WindowStatusMessage 每次呼叫都重新計算，不做快取
func WindowStatusMessage(w model.SalesWindow, now time.Time) string {
	switch EvaluateWindow(w, now) {
	case WindowNotStarted:
		return fmt.Sprintf("Sales start on %s", w.Start.Format("January 2, 2006 at 15:04 MST"))
	case WindowEnded:
		return "Sales have ended"
	default:
		return "Sales are live!"
	}
}
