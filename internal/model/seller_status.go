package model

import "sort"

// ============================================================================
// 卖家状态图
// ============================================================================
//
// 卖家状态只能沿着下表的边移动，其他地方不允许直接写 status_id。
// 终态 퇴점 没有出边。
// ============================================================================

const (
	SellerStatusPending        = 1 // 입점대기
	SellerStatusActive         = 2 // 입점
	SellerStatusSuspended      = 3 // 휴점
	SellerStatusClosingPending = 4 // 퇴점대기
	SellerStatusTerminated     = 5 // 퇴점
)

const (
	SellerActionApprove        = 1
	SellerActionReject         = 2
	SellerActionSuspend        = 3
	SellerActionResume         = 4
	SellerActionRequestClosing = 5
	SellerActionCancelClosing  = 6
	SellerActionTerminate      = 7
)

var sellerStatusNames = map[int]string{
	SellerStatusPending:        "입점대기",
	SellerStatusActive:         "입점",
	SellerStatusSuspended:      "휴점",
	SellerStatusClosingPending: "퇴점대기",
	SellerStatusTerminated:     "퇴점",
}

var sellerActionNames = map[int]string{
	SellerActionApprove:        "입점 승인",
	SellerActionReject:         "입점 거절",
	SellerActionSuspend:        "휴점 신청",
	SellerActionResume:         "휴점 해제",
	SellerActionRequestClosing: "퇴점 신청 처리",
	SellerActionCancelClosing:  "퇴점 철회 처리",
	SellerActionTerminate:      "퇴점 확정 처리",
}

type sellerEdge struct {
	from   int
	action int
}

// sellerStatusGraph (当前状态, 动作) -> 下一个状态
var sellerStatusGraph = map[sellerEdge]int{
	{SellerStatusPending, SellerActionApprove}:              SellerStatusActive,
	{SellerStatusPending, SellerActionReject}:               SellerStatusTerminated,
	{SellerStatusActive, SellerActionSuspend}:               SellerStatusSuspended,
	{SellerStatusActive, SellerActionRequestClosing}:        SellerStatusClosingPending,
	{SellerStatusSuspended, SellerActionResume}:             SellerStatusActive,
	{SellerStatusSuspended, SellerActionRequestClosing}:     SellerStatusClosingPending,
	{SellerStatusClosingPending, SellerActionCancelClosing}: SellerStatusActive,
	{SellerStatusClosingPending, SellerActionTerminate}:     SellerStatusTerminated,
}

// ResolveSellerAction 查表得到下一个状态，ok=false 表示该动作在当前状态下不合法
func ResolveSellerAction(current, action int) (next int, ok bool) {
	next, ok = sellerStatusGraph[sellerEdge{current, action}]
	return
}

type SellerAction struct {
	ActionID   int    `json:"action_id"`
	ActionName string `json:"action_name"`
}

// SellerActionsFor 列出当前状态下可执行的动作，按动作ID排序
func SellerActionsFor(current int) []SellerAction {
	actions := make([]SellerAction, 0, 2)
	for edge := range sellerStatusGraph {
		if edge.from == current {
			actions = append(actions, SellerAction{ActionID: edge.action, ActionName: sellerActionNames[edge.action]})
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ActionID < actions[j].ActionID })
	return actions
}

func SellerStatusName(id int) string {
	return sellerStatusNames[id]
}

// SellerStatusID 按名称反查状态ID，用于列表筛选
func SellerStatusID(name string) (int, bool) {
	for id, n := range sellerStatusNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

func IsSellerAction(action int) bool {
	_, ok := sellerActionNames[action]
	return ok
}
