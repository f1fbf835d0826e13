package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  BookingStatus
		to    BookingStatus
		actor Actor
		want  error
	}{
		{"host confirms pending", StatusPending, StatusConfirmed, ActorHost, nil},
		{"payment confirms pending", StatusPending, StatusConfirmed, ActorPaymentProcessor, nil},
		{"guest cancels pending", StatusPending, StatusCancelled, ActorGuest, nil},
		{"host cancels pending", StatusPending, StatusCancelled, ActorHost, nil},
		{"host cancels confirmed", StatusConfirmed, StatusCancelled, ActorHost, nil},
		{"guest cancels confirmed", StatusConfirmed, StatusCancelled, ActorGuest, ErrContactSupport},
		{"guest confirms pending", StatusPending, StatusConfirmed, ActorGuest, ErrTransitionActor},
		{"payment cancels pending", StatusPending, StatusCancelled, ActorPaymentProcessor, ErrTransitionActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.actor)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckTransition_InvalidEdges(t *testing.T) {
	cases := [][2]BookingStatus{
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusConfirmed, StatusPending},
		{StatusConfirmed, StatusConfirmed},
		{StatusPending, BookingStatus("completed")},
	}
	for _, c := range cases {
		err := CheckTransition(c[0], c[1], ActorHost)
		assert.True(t, domain.HasCode(err, "invalid_transition"), "%s -> %s", c[0], c[1])
	}
}

func TestBookingStatus_Helpers(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusPending.HoldsDates())
	assert.True(t, StatusConfirmed.HoldsDates())
	assert.False(t, StatusCancelled.HoldsDates())
	assert.False(t, BookingStatus("completed").IsValid())

	_, err := ParseBookingStatus("completed")
	assert.Error(t, err)
	s, err := ParseBookingStatus("confirmed")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)
}
