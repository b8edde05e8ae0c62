package record

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedTextTruncates(t *testing.T) {
	bt := NewBoundedText(8)

	truncated := bt.Set("short")
	assert.False(t, truncated)
	assert.Equal(t, "short", bt.String())

	// capacity 8 stores at most 7 bytes
	truncated = bt.Set("12345678901")
	assert.True(t, truncated)
	assert.Equal(t, "1234567", bt.String())
	assert.Len(t, bt.String(), bt.Cap()-1)

	truncated = bt.Set("1234567")
	assert.False(t, truncated)
	assert.Equal(t, "1234567", bt.String())
}

func TestRecordMarshalSize(t *testing.T) {
	r := New()
	assert.Len(t, r.Marshal(), SlotSize)
}

func TestRecordRoundTrip(t *testing.T) {
	r := New()
	r.Configured = true
	r.NetworkName.Set("ClassNet")
	r.NetworkSecret.Set("hunter22")
	r.SiteLabel.Set("aula 21")
	r.UploadHost.Set("db.example.edu")
	r.UploadUser.Set("monitor")
	r.UploadSecret.Set("s3cret")
	r.UploadDatabase.Set("mediaedu")
	r.Window = Window{StartHour: 22, StartMinute: 0, EndHour: 6, EndMinute: 30}

	got := New()
	require.NoError(t, got.Unmarshal(r.Marshal()))

	assert.True(t, got.Configured)
	assert.Equal(t, "ClassNet", got.NetworkName.String())
	assert.Equal(t, "hunter22", got.NetworkSecret.String())
	assert.Equal(t, "aula 21", got.SiteLabel.String())
	assert.Equal(t, "db.example.edu", got.UploadHost.String())
	assert.Equal(t, "monitor", got.UploadUser.String())
	assert.Equal(t, "s3cret", got.UploadSecret.String())
	assert.Equal(t, "mediaedu", got.UploadDatabase.String())
	assert.Equal(t, r.Window, got.Window)
}

func TestRecordUnmarshalShortBlock(t *testing.T) {
	r := New()
	assert.Error(t, r.Unmarshal(make([]byte, SlotSize-1)))
}

func TestRecordSiteLabelOverflowStored(t *testing.T) {
	r := New()
	long := strings.Repeat("x", CapSiteLabel*2)
	truncated := r.SiteLabel.Set(long)
	assert.True(t, truncated)
	assert.Len(t, r.SiteLabel.String(), CapSiteLabel-1)

	got := New()
	require.NoError(t, got.Unmarshal(r.Marshal()))
	assert.Equal(t, long[:CapSiteLabel-1], got.SiteLabel.String())
}

func TestRecordFieldsRedactSecrets(t *testing.T) {
	r := New()
	r.NetworkSecret.Set("wifi-secret")
	r.UploadSecret.Set("db-secret")

	for _, v := range r.Fields() {
		s, ok := v.(string)
		if !ok {
			continue
		}
		assert.NotContains(t, s, "wifi-secret")
		assert.NotContains(t, s, "db-secret")
	}
}

func TestFileSlot(t *testing.T) {
	slot := NewFileSlot(filepath.Join(t.TempDir(), "config.dat"))

	_, present, err := slot.Load()
	require.NoError(t, err)
	assert.False(t, present)

	r := New()
	r.Configured = true
	r.NetworkName.Set("ClassNet")
	require.NoError(t, slot.Store(r.Marshal()))

	block, present, err := slot.Load()
	require.NoError(t, err)
	require.True(t, present)

	got := New()
	require.NoError(t, got.Unmarshal(block))
	assert.True(t, got.Configured)
	assert.Equal(t, "ClassNet", got.NetworkName.String())
}

func TestLoadRecordAbsentSlot(t *testing.T) {
	r, err := LoadRecord(&MemorySlot{})
	require.NoError(t, err)
	assert.False(t, r.Configured)
	assert.True(t, r.NetworkName.Empty())
}
