package future_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/future"
)

func TestStreamOrderThenClose(t *testing.T) {
	tx, rx := future.NewStream[int]()
	for i := 0; i < 100; i++ {
		tx.Send(i)
	}
	tx.Close()
	assert.True(t, tx.Ended())

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		v, err := rx.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, api.ErrEOF)
	_, err = rx.Recv(ctx)
	assert.ErrorIs(t, err, api.ErrEOF, "terminal result is sticky")
}

func TestStreamFailIsTerminal(t *testing.T) {
	tx, rx := future.NewStream[string]()
	tx.Send("a")
	tx.Fail(api.ErrConnectionReset)
	assert.PanicsWithValue(t, future.ErrAlreadyResolved, func() { tx.Send("b") })
	assert.PanicsWithValue(t, future.ErrAlreadyResolved, func() { tx.Close() })

	var got []string
	var final error
	for v, err := range rx.All(context.Background()) {
		if err != nil {
			final = err
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []string{"a"}, got)
	assert.ErrorIs(t, final, api.ErrConnectionReset)
}

func TestStreamAllStopsOnClose(t *testing.T) {
	tx, rx := future.NewStream[int]()
	go func() {
		for i := 1; i <= 3; i++ {
			tx.Send(i)
			time.Sleep(time.Millisecond)
		}
		tx.Close()
	}()
	var got []int
	for v, err := range rx.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestStreamRecvHonoursContext(t *testing.T) {
	_, rx := future.NewStream[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := rx.TryRecv()
	assert.False(t, ok)
}

func TestStreamSubscribeReplaysBuffered(t *testing.T) {
	tx, rx := future.NewStream[int]()
	tx.Send(1)
	tx.Send(2)

	var got []int
	ends := 0
	rx.Subscribe(func(v int) { got = append(got, v) }, func(err error) {
		ends++
		assert.NoError(t, err)
	})
	tx.Send(3)
	tx.Close()

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, ends)
	assert.PanicsWithValue(t, future.ErrAlreadyConsumed, func() { rx.Subscribe(func(int) {}, nil) })
}

func TestStreamSubscribeAfterFailure(t *testing.T) {
	tx, rx := future.NewStream[int]()
	tx.Send(7)
	tx.Fail(api.ErrBrokenPipe)
	var got []int
	var end error
	rx.Subscribe(func(v int) { got = append(got, v) }, func(err error) { end = err })
	assert.Equal(t, []int{7}, got)
	assert.ErrorIs(t, end, api.ErrBrokenPipe)
}
