package booking

import (
	"sort"

	"luxe-booking/internal/model"
)

// OfferingView 票種快照加上本地計算的剩餘數量
type OfferingView struct {
	model.Offering
	Available int `json:"available"`
}

// PurchasableOfferings 過濾掉停售或售完的票種，並依 priority 由小到大排序。
// 本地選票不會改變 CurrentSold，只有重新載入設定時才需要重算。
func PurchasableOfferings(offerings []model.Offering) []OfferingView {
	views := make([]OfferingView, 0, len(offerings))
	for _, o := range offerings {
		if !o.IsPurchasable() {
			continue
		}
		views = append(views, OfferingView{Offering: o, Available: o.Available()})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Priority < views[j].Priority
	})
	return views
}

// ClampQuantity 將數量限制在 [0, min(available, perOrderMax)]
func ClampQuantity(quantity, available, perOrderMax int) int {
	limit := available
	if perOrderMax < limit {
		limit = perOrderMax
	}
	if limit < 0 {
		limit = 0
	}
	if quantity < 0 {
		return 0
	}
	if quantity > limit {
		return limit
	}
	return quantity
}
