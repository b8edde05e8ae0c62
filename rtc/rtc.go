package rtc

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

// RTC is the real-time-clock peripheral as the node sees it: readable every
// tick and settable from the portal's date/time field.
type RTC interface {
	Now() time.Time
	Set(t time.Time) error
}

// OffsetRTC tracks operator-set time as an offset over the process clock,
// so setting the RTC needs no privileged system call. The offset is lost on
// restart, matching a battery-less clock chip.
type OffsetRTC struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	offset time.Duration
}

func New(clock clockwork.Clock) *OffsetRTC {
	return &OffsetRTC{clock: clock}
}

func (r *OffsetRTC) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.Now().Add(r.offset)
}

func (r *OffsetRTC) Set(t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offset = t.Sub(r.clock.Now())
	logger.Infof("RTC set to [%v]", t.Format("2006-01-02 15:04"))
	return nil
}
