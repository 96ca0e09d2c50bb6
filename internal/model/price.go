package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountMultiplier 折扣率(百分比)换算成乘数，未设置或为 0 时返回 1
func DiscountMultiplier(rate *int) decimal.Decimal {
	if rate == nil || *rate == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(*rate)).Div(hundred))
}

// LineTotal = 单价 × 折扣乘数 × 数量
func LineTotal(price decimal.Decimal, rate *int, quantity int) decimal.Decimal {
	return price.Mul(DiscountMultiplier(rate)).Mul(decimal.NewFromInt(int64(quantity)))
}
