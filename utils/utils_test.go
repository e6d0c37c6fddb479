package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestInt16FromBytesLE(t *testing.T) {
	test.That(t, Int16FromBytesLE([]byte{0x10, 0x00}), test.ShouldEqual, 16)
	test.That(t, Int16FromBytesLE([]byte{0x00, 0x01}), test.ShouldEqual, 256)
	test.That(t, Int16FromBytesLE([]byte{0xFF, 0xFF}), test.ShouldEqual, -1)
	test.That(t, Int16FromBytesLE([]byte{0x00, 0x80}), test.ShouldEqual, -32768)
	test.That(t, Int16FromBytesLE([]byte{0xFF, 0x7F}), test.ShouldEqual, 32767)
}

func TestBytesFromInt16LE(t *testing.T) {
	test.That(t, BytesFromInt16LE(16), test.ShouldResemble, []byte{0x10, 0x00})
	test.That(t, BytesFromInt16LE(-1), test.ShouldResemble, []byte{0xFF, 0xFF})
	test.That(t, BytesFromInt16LE(-32768), test.ShouldResemble, []byte{0x00, 0x80})

	for _, v := range []int16{0, 1, -1, 255, -256, 12345, -12345, 32767, -32768} {
		test.That(t, Int16FromBytesLE(BytesFromInt16LE(v)), test.ShouldEqual, v)
	}
}

func TestSelectContextOrWait(t *testing.T) {
	t.Run("returns true once the clock fires", func(t *testing.T) {
		mock := clock.NewMock()
		done := make(chan bool)
		go func() {
			done <- SelectContextOrWait(context.Background(), mock, 5*time.Millisecond)
		}()
		// Let the waiter reach its select before moving time forward.
		time.Sleep(10 * time.Millisecond)
		mock.Add(5 * time.Millisecond)
		test.That(t, <-done, test.ShouldBeTrue)
	})

	t.Run("returns false on a done context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ok := SelectContextOrWait(ctx, clock.NewMock(), time.Hour)
		test.That(t, ok, test.ShouldBeFalse)
	})
}
