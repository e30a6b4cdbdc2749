package booking

import (
	"time"

	"luxe-booking/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectionLine 使用者對單一票種的選擇
type SelectionLine struct {
	Offering   model.Offering  `json:"offering"`
	Quantity   int             `json:"quantity"`
	GuestNames []string        `json:"guest_names"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Ledger 購物車狀態。值型別、不可變：每個事件都產生新的 Ledger。
type Ledger struct {
	lines []SelectionLine
}

func NewLedger() Ledger {
	return Ledger{}
}

// Lines 回傳深拷貝，呼叫端修改不會影響 Ledger
func (l Ledger) Lines() []SelectionLine {
	out := make([]SelectionLine, len(l.lines))
	for i, line := range l.lines {
		out[i] = line
		out[i].GuestNames = append([]string(nil), line.GuestNames...)
	}
	return out
}

func (l Ledger) Line(offeringID uuid.UUID) (SelectionLine, bool) {
	idx := l.indexOf(offeringID)
	if idx < 0 {
		return SelectionLine{}, false
	}
	line := l.lines[idx]
	line.GuestNames = append([]string(nil), line.GuestNames...)
	return line, true
}

func (l Ledger) Len() int {
	return len(l.lines)
}

func (l Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

func (l Ledger) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func (l Ledger) TotalQuantity() int {
	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

func (l Ledger) indexOf(offeringID uuid.UUID) int {
	for i, line := range l.lines {
		if line.Offering.ID == offeringID {
			return i
		}
	}
	return -1
}

// LedgerEvent 對 Ledger 的一次編輯
type LedgerEvent interface {
	apply(l Ledger, now time.Time) Ledger
}

// SetQuantity 數量為 0 時移除該票種；否則重算小計並調整賓客名單長度
type SetQuantity struct {
	Offering model.Offering
	Quantity int
}

// SetGuestName 找不到票種或索引超出範圍時不做任何事
type SetGuestName struct {
	OfferingID uuid.UUID
	Index      int
	Name       string
}

// ClearSelection 提交成功或取消時清空
type ClearSelection struct{}

// Reduce (ledger, event) -> ledger
func Reduce(l Ledger, event LedgerEvent, now time.Time) Ledger {
	if event == nil {
		return l
	}
	return event.apply(l, now)
}

func (e SetQuantity) apply(l Ledger, now time.Time) Ledger {
	idx := l.indexOf(e.Offering.ID)
	quantity := e.Quantity
	if quantity < 0 {
		quantity = 0
	}

	if quantity == 0 {
		if idx < 0 {
			return l
		}
		lines := make([]SelectionLine, 0, len(l.lines)-1)
		lines = append(lines, l.lines[:idx]...)
		lines = append(lines, l.lines[idx+1:]...)
		return Ledger{lines: lines}
	}

	var previous []string
	if idx >= 0 {
		previous = l.lines[idx].GuestNames
	}
	line := SelectionLine{
		Offering:   e.Offering,
		Quantity:   quantity,
		GuestNames: ResizeGuestNames(previous, quantity),
		Subtotal:   Price(e.Offering, quantity, now),
	}

	lines := make([]SelectionLine, len(l.lines), len(l.lines)+1)
	copy(lines, l.lines)
	if idx >= 0 {
		lines[idx] = line
	} else {
		lines = append(lines, line)
	}
	return Ledger{lines: lines}
}

func (e SetGuestName) apply(l Ledger, _ time.Time) Ledger {
	idx := l.indexOf(e.OfferingID)
	if idx < 0 {
		return l
	}
	if e.Index < 0 || e.Index >= len(l.lines[idx].GuestNames) {
		return l
	}

	lines := make([]SelectionLine, len(l.lines))
	copy(lines, l.lines)
	names := append([]string(nil), lines[idx].GuestNames...)
	names[e.Index] = e.Name
	lines[idx].GuestNames = names
	return Ledger{lines: lines}
}

func (ClearSelection) apply(Ledger, time.Time) Ledger {
	return NewLedger()
}

// ResizeGuestNames 回傳長度恰為 n 的新 slice：
// 相同索引的既有名字保留，超出的部分截掉，新增的位置補空字串。
// 不會修改傳入的 slice。
func ResizeGuestNames(names []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	resized := make([]string, n)
	copy(resized, names)
	return resized
}
