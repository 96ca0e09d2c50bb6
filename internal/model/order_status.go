package model

// ============================================================================
// 子订单状态图
// ============================================================================
//
//   결제완료 -> 상품준비 -> 배송준비 -> 배송중 -> 배송완료 -> 구매확정
//
// 线性流转，每个状态只有一个后继；구매확정 为终态。
// 배송완료 -> 구매확정 这条边同时由定时任务自动触发。
// ============================================================================

const (
	OrderStatusPaymentComplete   = 1 // 결제완료
	OrderStatusPreparingItem     = 2 // 상품준비
	OrderStatusPreparingShipment = 3 // 배송준비
	OrderStatusShipping          = 4 // 배송중
	OrderStatusDelivered         = 5 // 배송완료
	OrderStatusPurchaseConfirmed = 6 // 구매확정
)

var orderStatusNames = map[int]string{
	OrderStatusPaymentComplete:   "결제완료",
	OrderStatusPreparingItem:     "상품준비",
	OrderStatusPreparingShipment: "배송준비",
	OrderStatusShipping:          "배송중",
	OrderStatusDelivered:         "배송완료",
	OrderStatusPurchaseConfirmed: "구매확정",
}

// orderStatusGraph 当前状态 -> 下一个状态
var orderStatusGraph = map[int]int{
	OrderStatusPaymentComplete:   OrderStatusPreparingItem,
	OrderStatusPreparingItem:     OrderStatusPreparingShipment,
	OrderStatusPreparingShipment: OrderStatusShipping,
	OrderStatusShipping:          OrderStatusDelivered,
	OrderStatusDelivered:         OrderStatusPurchaseConfirmed,
}

// ResolveOrderProgress 返回下一个状态，ok=false 表示已是终态或状态不存在
func ResolveOrderProgress(current int) (next int, ok bool) {
	next, ok = orderStatusGraph[current]
	return
}

func OrderStatusName(id int) string {
	return orderStatusNames[id]
}

// 订单列表页签
const OrderBucketAll = "allOrderList"

var orderBuckets = map[string]int{
	OrderBucketAll:         0,
	"prepareList":          OrderStatusPreparingItem,
	"deliveryPrepareList":  OrderStatusPreparingShipment,
	"deliveryList":         OrderStatusShipping,
	"deliveryCompleteList": OrderStatusDelivered,
	"orderConfirmList":     OrderStatusPurchaseConfirmed,
}

// OrderBucketStatus 页签名 -> 状态ID，allOrderList 返回 0 表示不过滤
func OrderBucketStatus(bucket string) (statusID int, ok bool) {
	statusID, ok = orderBuckets[bucket]
	return
}
