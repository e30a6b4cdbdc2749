package booking

import (
	"time"

	"luxe-booking/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice 計算單價（尚未四捨五入）
//  1. 從原價開始
//  2. 早鳥截止前（含截止時間）改用早鳥價
//  3. VIP 票種套用符合門檻中折扣最高的團體折扣
func UnitPrice(o model.Offering, quantity int, now time.Time) decimal.Decimal {
	unit := o.BasePrice
	if o.HasEarlyBird() && !now.After(*o.EarlyBirdDeadline) {
		unit = o.EarlyBirdPrice.Decimal
	}

	// 一般票即使設定了規則也不打折
	if o.Category != model.CategoryVIP {
		return unit
	}
	if rule, ok := BestDiscount(o.GroupDiscounts, quantity); ok {
		unit = unit.Mul(hundred.Sub(rule.DiscountPercent)).Div(hundred)
	}
	return unit
}

// BestDiscount 在 MinQuantity <= quantity 的規則中挑折扣百分比最高者，
// 不是挑門檻最高者。百分比相同時取先出現的規則。
func BestDiscount(rules []model.GroupDiscountRule, quantity int) (model.GroupDiscountRule, bool) {
	var best model.GroupDiscountRule
	found := false
	for _, rule := range rules {
		if rule.MinQuantity > quantity {
			continue
		}
		if !found || rule.DiscountPercent.GreaterThan(best.DiscountPercent) {
			best = rule
			found = true
		}
	}
	return best, found
}

// Price 小計 = round(單價 × 數量, 2)，四捨五入到分
func Price(o model.Offering, quantity int, now time.Time) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return UnitPrice(o, quantity, now).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// TierTotal 尊榮方案依人數計價，沒有折扣規則
func TierTotal(tier model.VIPTier, guestCount int) decimal.Decimal {
	if guestCount <= 0 {
		return decimal.Zero
	}
	return tier.Price.Mul(decimal.NewFromInt(int64(guestCount))).Round(2)
}
