package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardDays 首页统计覆盖今天及之前 29 天
const DashboardDays = 30

type DailyStat struct {
	Date  string          `json:"datetime"` // M/D
	Count int             `json:"count"`
	Sales decimal.Decimal `json:"sales"`
}

type Dashboard struct {
	TotalProduct   int          `json:"total_product"`
	ProductsOnSale int          `json:"products_on_sale"`
	Statistics     []*DailyStat `json:"statistics"`
	OrderPreparing int          `json:"order_preparing"`
	OrderDelivered int          `json:"order_delivered"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DashboardWindowStart 统计窗口起点（29 天前的零点）
func DashboardWindowStart(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -(DashboardDays - 1))
}

// BuildDashboard 纯计算，不访问数据库
// lines 中窗口外的子订单会被忽略
func BuildDashboard(products []*Product, lines []*DetailOrder, now time.Time) *Dashboard {
	d := &Dashboard{
		TotalProduct: len(products),
		Statistics:   make([]*DailyStat, DashboardDays),
	}

	for _, p := range products {
		if p.Available() {
			d.ProductsOnSale++
		}
	}

	start := DashboardWindowStart(now)
	for i := range d.Statistics {
		day := start.AddDate(0, 0, i)
		d.Statistics[i] = &DailyStat{
			Date:  fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
			Sales: decimal.Zero,
		}
	}

	for _, line := range lines {
		orderedDay := startOfDay(line.OrderedAt.In(now.Location()))
		idx := int(math.Round(orderedDay.Sub(start).Hours() / 24))
		if orderedDay.Before(start) || idx >= DashboardDays {
			continue
		}

		stat := d.Statistics[idx]
		stat.Count++
		stat.Sales = stat.Sales.Add(line.LineTotal())

		switch line.StatusID {
		case OrderStatusPreparingItem:
			d.OrderPreparing++
		case OrderStatusDelivered:
			d.OrderDelivered++
		}
	}

	return d
}
