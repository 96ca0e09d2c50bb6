package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allSellerStatuses = []int{
	SellerStatusPending, SellerStatusActive, SellerStatusSuspended,
	SellerStatusClosingPending, SellerStatusTerminated,
}

var allSellerActions = []int{
	SellerActionApprove, SellerActionReject, SellerActionSuspend, SellerActionResume,
	SellerActionRequestClosing, SellerActionCancelClosing, SellerActionTerminate,
}

func TestResolveSellerActionEdges(t *testing.T) {
	cases := []struct {
		from, action, want int
	}{
		{SellerStatusPending, SellerActionApprove, SellerStatusActive},
		{SellerStatusPending, SellerActionReject, SellerStatusTerminated},
		{SellerStatusActive, SellerActionSuspend, SellerStatusSuspended},
		{SellerStatusActive, SellerActionRequestClosing, SellerStatusClosingPending},
		{SellerStatusSuspended, SellerActionResume, SellerStatusActive},
		{SellerStatusSuspended, SellerActionRequestClosing, SellerStatusClosingPending},
		{SellerStatusClosingPending, SellerActionCancelClosing, SellerStatusActive},
		{SellerStatusClosingPending, SellerActionTerminate, SellerStatusTerminated},
	}
	for _, c := range cases {
		next, ok := ResolveSellerAction(c.from, c.action)
		assert.True(t, ok, "from=%d action=%d", c.from, c.action)
		assert.Equal(t, c.want, next)
	}
}

func TestResolveSellerActionRejectsEverythingElse(t *testing.T) {
	legal := 0
	for _, s := range allSellerStatuses {
		for _, a := range allSellerActions {
			if _, ok := ResolveSellerAction(s, a); ok {
				legal++
			}
		}
	}
	assert.Equal(t, len(sellerStatusGraph), legal)

	_, ok := ResolveSellerAction(SellerStatusTerminated, SellerActionResume)
	assert.False(t, ok)
	_, ok = ResolveSellerAction(99, SellerActionApprove)
	assert.False(t, ok)
}

func TestSellerActionsFor(t *testing.T) {
	actions := SellerActionsFor(SellerStatusActive)
	if assert.Len(t, actions, 2) {
		assert.Equal(t, SellerActionSuspend, actions[0].ActionID)
		assert.Equal(t, SellerActionRequestClosing, actions[1].ActionID)
		assert.NotEmpty(t, actions[0].ActionName)
	}
	assert.Empty(t, SellerActionsFor(SellerStatusTerminated))
}

func TestSellerStatusNameRoundTrip(t *testing.T) {
	for _, s := range allSellerStatuses {
		id, ok := SellerStatusID(SellerStatusName(s))
		assert.True(t, ok)
		assert.Equal(t, s, id)
	}
	_, ok := SellerStatusID("없음")
	assert.False(t, ok)
}

func TestResolveOrderProgressIsLinear(t *testing.T) {
	status := OrderStatusPaymentComplete
	var path []int
	for {
		next, ok := ResolveOrderProgress(status)
		if !ok {
			break
		}
		path = append(path, next)
		status = next
	}
	assert.Equal(t, []int{
		OrderStatusPreparingItem, OrderStatusPreparingShipment, OrderStatusShipping,
		OrderStatusDelivered, OrderStatusPurchaseConfirmed,
	}, path)

	_, ok := ResolveOrderProgress(OrderStatusPurchaseConfirmed)
	assert.False(t, ok)
	_, ok = ResolveOrderProgress(0)
	assert.False(t, ok)
}

func TestOrderBucketStatus(t *testing.T) {
	id, ok := OrderBucketStatus(OrderBucketAll)
	assert.True(t, ok)
	assert.Zero(t, id)

	id, ok = OrderBucketStatus("deliveryCompleteList")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusDelivered, id)

	_, ok = OrderBucketStatus("unknownList")
	assert.False(t, ok)
}
