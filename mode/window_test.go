package mode

import (
	"testing"

	"github.com/jlpinilla/MediaEdu/record"
	"github.com/stretchr/testify/assert"
)

func TestInWindowSameDay(t *testing.T) {
	w := record.Window{StartHour: 9, StartMinute: 0, EndHour: 17, EndMinute: 0}

	assert.True(t, InWindow(10, 0, w))
	assert.False(t, InWindow(8, 59, w))
	assert.False(t, InWindow(17, 1, w))

	// bounds are inclusive
	assert.True(t, InWindow(9, 0, w))
	assert.True(t, InWindow(17, 0, w))
}

func TestInWindowWrapsMidnight(t *testing.T) {
	w := record.Window{StartHour: 22, StartMinute: 0, EndHour: 6, EndMinute: 0}

	assert.True(t, InWindow(23, 30, w))
	assert.True(t, InWindow(2, 0, w))
	assert.False(t, InWindow(12, 0, w))

	assert.True(t, InWindow(22, 0, w))
	assert.True(t, InWindow(6, 0, w))
	assert.False(t, InWindow(6, 1, w))
	assert.False(t, InWindow(21, 59, w))
}

func TestInWindowZeroWindow(t *testing.T) {
	// an all-zero record permits upload only at exactly midnight
	w := record.Window{}
	assert.True(t, InWindow(0, 0, w))
	assert.False(t, InWindow(0, 1, w))
}
