package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-aio/api"
)

type nopPoller struct{}

func (nopPoller) Add(int, Interest, PollMode) error    { return nil }
func (nopPoller) Modify(int, Interest, PollMode) error { return nil }
func (nopPoller) Delete(int) error                     { return nil }
func (nopPoller) Wait([]Event, time.Duration) (int, error) {
	return 0, nil
}
func (nopPoller) Wake() error  { return nil }
func (nopPoller) Close() error { return nil }

type fdOnly int

func (f fdOnly) Fd() int { return int(f) }

func TestWrongDirectionIsDefect(t *testing.T) {
	r, err := New(WithPoller(nopPoller{}))
	require.NoError(t, err)

	reads := 0
	var got *api.Error
	reg := NewRegistration(fdOnly(8), Readable, Level, func(ReadHint) Action {
		reads++
		return Continue()
	}, nil).OnEnd(func(err *api.Error) { got = err })
	_, err = r.Register(reg)
	require.NoError(t, err)

	// corrupt the bookkeeping so a writable event reaches a read-only registration
	r.slots[8].write = reg
	r.dispatch(Event{Fd: 8, Ready: Writable})

	require.NotNil(t, got)
	assert.True(t, IsDefect(got))
	assert.Equal(t, "other: received writable on a readable registration", got.Error())
	assert.Zero(t, reads)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.slots)
}

func TestActionConstructors(t *testing.T) {
	assert.Equal(t, StatusContinue, Continue().Status)
	assert.Equal(t, StatusDone, Done().Status)
	f := Fail(nil)
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, api.KindOther, f.Err.Kind)
	assert.Equal(t, api.KindWouldBlock, Fail(api.ErrWouldBlock).Err.Kind)
	assert.Equal(t, "readable|writable", (Readable | Writable).String())
	assert.Equal(t, "edge", Edge.String())
}
