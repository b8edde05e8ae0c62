package portal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, f *RequestFrame, text string) bool {
	t.Helper()
	for i := 0; i < len(text); i++ {
		done, err := f.Append(text[i])
		require.NoError(t, err)
		if done {
			return true
		}
	}
	return false
}

func TestFrameHeaderTermination(t *testing.T) {
	f := NewFrame()
	done := feed(t, f, "GET / HTTP/1.1\r\nHost: node\r\n\r\n")
	assert.True(t, done)
	assert.True(t, f.HeaderDone())
	assert.Equal(t, "GET / HTTP/1.1", f.FirstLine())
}

func TestFrameNotDoneMidHeaders(t *testing.T) {
	f := NewFrame()
	done := feed(t, f, "GET / HTTP/1.1\r\nHost: node\r\n")
	assert.False(t, done)
	assert.False(t, f.HeaderDone())
}

func TestFrameBareNewlineTerminates(t *testing.T) {
	// some clients send \n\n instead of \r\n\r\n
	f := NewFrame()
	done := feed(t, f, "GET / HTTP/1.1\nHost: node\n\n")
	assert.True(t, done)
}

func TestFrameOverflow(t *testing.T) {
	f := NewFrame()
	long := strings.Repeat("x", MaxFrameBytes)
	for i := 0; i < len(long); i++ {
		_, err := f.Append(long[i])
		require.NoError(t, err)
	}
	_, err := f.Append('x')
	assert.ErrorIs(t, err, ErrFrameOverflow)
}

func TestFrameAppendBodyCapped(t *testing.T) {
	f := NewFrame()
	feed(t, f, "POST /guardar HTTP/1.1\r\n\r\n")
	require.NoError(t, f.AppendBody([]byte("ssid=Net")))
	assert.Contains(t, f.Text(), "ssid=Net")

	err := f.AppendBody(make([]byte, MaxFrameBytes))
	assert.ErrorIs(t, err, ErrFrameOverflow)
}
