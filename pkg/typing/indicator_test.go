package typing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestIndicator_ExpiresAfterThreeSeconds(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	ind := NewIndicator(0).WithClock(clock.Now)

	// Given a typing event from user 7
	ind.Observe(7, 0)
	require.True(t, ind.Active(7))

	// When 2999ms pass the indicator is still shown
	clock.Advance(2999 * time.Millisecond)
	require.True(t, ind.Active(7))

	// Then at 3000ms without renewal it is gone
	clock.Advance(time.Millisecond)
	require.False(t, ind.Active(7))
}

func TestIndicator_RenewedOnlyByNewEvent(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	ind := NewIndicator(DefaultTTL).WithClock(clock.Now)

	ind.Observe(7, 3000)
	clock.Advance(2 * time.Second)
	ind.Observe(7, 3000)
	clock.Advance(2 * time.Second)
	require.True(t, ind.Active(7))

	clock.Advance(time.Second)
	require.False(t, ind.Active(7))
}

func TestIndicator_ActiveUsers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	ind := NewIndicator(0).WithClock(clock.Now)

	ind.Observe(1, 1000)
	ind.Observe(2, 5000)
	clock.Advance(2 * time.Second)

	require.Equal(t, []uint{2}, ind.ActiveUsers())
	require.False(t, ind.Active(1))
	require.False(t, ind.Active(3))
}
