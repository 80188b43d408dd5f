package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func pendingRestock() *RestockRequest {
	return &RestockRequest{ID: "r-1", Status: RestockPending, Quantity: 20}
}

func assertReviewed(t *testing.T, r *RestockRequest) {
	t.Helper()
	reviewed := r.Status == RestockApproved || r.Status == RestockRejected || r.Status == RestockFulfilled
	assert.Equal(t, reviewed, r.ApprovedBy != nil, "approvedBy presence for %s", r.Status)
	assert.Equal(t, reviewed, r.ApprovedAt != nil, "approvedAt presence for %s", r.Status)
}

func TestRestockRequest_Approve(t *testing.T) {
	r := pendingRestock()

	require.NoError(t, r.Approve("manager-1", now))
	assert.Equal(t, RestockApproved, r.Status)
	assert.Equal(t, "manager-1", *r.ApprovedBy)
	assert.Equal(t, now, *r.ApprovedAt)
	assertReviewed(t, r)

	err := r.Approve("manager-2", now.Add(time.Minute))
	assert.True(t, errors.IsIllegalState(err))
	assert.Equal(t, "manager-1", *r.ApprovedBy)
}

func TestRestockRequest_RejectThenFulfillFails(t *testing.T) {
	r := pendingRestock()

	require.NoError(t, r.Reject("manager-1", now))
	assert.Equal(t, RestockRejected, r.Status)
	assert.Equal(t, "manager-1", *r.ApprovedBy)
	assertReviewed(t, r)

	err := r.Fulfill(now)
	assert.True(t, errors.IsIllegalState(err))
	assert.Equal(t, RestockRejected, r.Status)
	assert.Nil(t, r.FulfilledAt)
}

func TestRestockRequest_Fulfill(t *testing.T) {
	r := pendingRestock()
	require.NoError(t, r.Approve("manager-1", now))

	later := now.Add(48 * time.Hour)
	require.NoError(t, r.Fulfill(later))
	assert.Equal(t, RestockFulfilled, r.Status)
	assert.Equal(t, later, *r.FulfilledAt)
	assertReviewed(t, r)

	assert.Error(t, r.Fulfill(later))
}

func TestRestockRequest_Cancel(t *testing.T) {
	r := pendingRestock()
	require.NoError(t, r.Cancel(now))
	assert.Equal(t, RestockCancelled, r.Status)
	assertReviewed(t, r)

	approved := pendingRestock()
	require.NoError(t, approved.Approve("m", now))
	assert.True(t, errors.IsIllegalState(approved.Cancel(now)))
}

func TestRestockRequest_NonPendingRejectsReview(t *testing.T) {
	for _, status := range []RestockStatus{RestockApproved, RestockRejected, RestockFulfilled, RestockCancelled} {
		t.Run(string(status), func(t *testing.T) {
			r := &RestockRequest{Status: status}
			before := *r

			assert.True(t, errors.IsIllegalState(r.Approve("m", now)))
			assert.True(t, errors.IsIllegalState(r.Reject("m", now)))
			assert.Equal(t, before, *r)
		})
	}
}

func TestRestockStatus_Valid(t *testing.T) {
	assert.True(t, RestockFulfilled.Valid())
	assert.False(t, RestockStatus("DONE").Valid())
}
