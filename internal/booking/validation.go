package booking

import (
	"fmt"
	"strings"

	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"
)

const (
	KeyName       = "name"
	KeyEmail      = "email"
	KeyPhone      = "phone"
	KeyGuestCount = "guestCount"
)

// ValidationErrors 欄位 key -> 錯誤訊息，空 map 表示通過
type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// GuestKey guest-<lineIndex>-<guestIndex>
func GuestKey(lineIndex, guestIndex int) string {
	return fmt.Sprintf("guest-%d-%d", lineIndex, guestIndex)
}

// ValidateContact 三個聯絡欄位去除空白後皆不可為空，與票種分類無關
func ValidateContact(c model.ContactInfo) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs[KeyName] = "Name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errs[KeyEmail] = "Email is required"
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs[KeyPhone] = "Phone is required"
	}
	return errs
}

// ValidateGuestNames 只有 VIP 票種需要每位賓客的姓名
func ValidateGuestNames(errs ValidationErrors, lineIndex int, category model.OfferingCategory, names []string) {
	if category != model.CategoryVIP {
		return
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			errs[GuestKey(lineIndex, i)] = fmt.Sprintf("Guest %d name is required", i+1)
		}
	}
}

// ValidateSelection 購物車為空時直接回傳 ErrEmptySelection，不產生欄位錯誤
func ValidateSelection(l Ledger, c model.ContactInfo) (ValidationErrors, error) {
	if l.IsEmpty() {
		return nil, apperrors.ErrEmptySelection
	}
	errs := ValidateContact(c)
	for i, line := range l.lines {
		ValidateGuestNames(errs, i, line.Offering.Category, line.GuestNames)
	}
	return errs, nil
}

// ValidateVIPBooking 尊榮方案：聯絡資料加上至少一位賓客
func ValidateVIPBooking(guestCount int, c model.ContactInfo) ValidationErrors {
	errs := ValidateContact(c)
	if guestCount < 1 {
		errs[KeyGuestCount] = "At least one guest is required"
	}
	return errs
}
