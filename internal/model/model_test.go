package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationTypeUrgent(t *testing.T) {
	assert := assert.New(t)

	assert.True(NotificationBudgetExceeded.Urgent())
	assert.True(NotificationRequestRejected.Urgent())
	assert.True(NotificationContractExpiring.Urgent())

	assert.False(NotificationRequestSubmitted.Urgent())
	assert.False(NotificationOrderShipped.Urgent())
	assert.False(NotificationUserMention.Urgent())
}

func TestRoleCapabilities(t *testing.T) {
	assert := assert.New(t)

	assert.True(RoleAdmin.CanApprove())
	assert.True(RoleApprover.CanApprove())
	assert.False(RoleRequester.CanApprove())
	assert.False(RoleViewer.CanApprove())

	assert.True(RoleAdmin.CanManageUsers())
	assert.False(RoleApprover.CanManageUsers())
}

func TestRequestEditable(t *testing.T) {
	assert := assert.New(t)

	assert.True(PurchaseRequest{Status: RequestStatusDraft}.Editable())
	assert.True(PurchaseRequest{Status: RequestStatusRejected}.Editable())
	assert.False(PurchaseRequest{Status: RequestStatusSubmitted}.Editable())
	assert.False(PurchaseRequest{Status: RequestStatusApproved}.Editable())
	assert.False(PurchaseRequest{Status: RequestStatusOrdered}.Editable())
}

func TestRequestItemSubtotal(t *testing.T) {
	item := RequestItem{Description: "Laptop", Quantity: 3, UnitPrice: 1199.50}
	assert.InDelta(t, 3598.50, item.Subtotal(), 0.001)
}

func TestBudgetMath(t *testing.T) {
	assert := assert.New(t)

	b := Budget{Allocated: 10000, Spent: 4000, Committed: 1000}
	assert.InDelta(5000, b.Remaining(), 0.001)
	assert.InDelta(0.5, b.Utilization(), 0.001)

	empty := Budget{}
	assert.Equal(0.0, empty.Utilization())
}

func TestContractExpiresWithin(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	soon := Contract{EndsAt: now.Add(10 * 24 * time.Hour)}
	assert.True(soon.ExpiresWithin(now, 30*24*time.Hour))
	assert.False(soon.ExpiresWithin(now, 5*24*time.Hour))

	// Already lapsed contracts are not "expiring".
	lapsed := Contract{EndsAt: now.Add(-time.Hour)}
	assert.False(lapsed.ExpiresWithin(now, 30*24*time.Hour))
}
