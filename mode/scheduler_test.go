package mode

import (
	"errors"
	"testing"
	"time"

	"github.com/jlpinilla/MediaEdu/data"
	"github.com/jlpinilla/MediaEdu/record"
	"github.com/jlpinilla/MediaEdu/rtc"
	"github.com/jlpinilla/MediaEdu/sensors"
	"github.com/jlpinilla/MediaEdu/uplink"
	"github.com/jlpinilla/MediaEdu/wireless"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureUplink records the stubbed upload path.
type captureUplink struct {
	ConnectErr error
	Targets    []uplink.Target
	Sent       []data.Snapshot
	Closes     int
}

func (c *captureUplink) Connect(t uplink.Target) error {
	if c.ConnectErr != nil {
		return c.ConnectErr
	}
	c.Targets = append(c.Targets, t)
	return nil
}

func (c *captureUplink) Send(s data.Snapshot) error {
	c.Sent = append(c.Sent, s)
	return nil
}

func (c *captureUplink) Close() { c.Closes++ }

func testRecord() *record.Record {
	rec := record.New()
	rec.Configured = true
	rec.NetworkName.Set("ClassNet")
	rec.NetworkSecret.Set("hunter22")
	rec.SiteLabel.Set("aula 21")
	rec.UploadHost.Set("db.example.edu")
	// window covers the whole day
	rec.Window = record.Window{EndHour: 23, EndMinute: 59}
	return rec
}

func newTestScheduler(at time.Time) (*Scheduler, clockwork.FakeClock, *wireless.SimRadio, *sensors.SimSuite, *captureUplink) {
	fc := clockwork.NewFakeClockAt(at)
	radio := wireless.NewSimRadio("b8:27:eb:12:34:56")
	radio.SetState(wireless.StateConnected)
	sim := sensors.NewSimSuite()
	up := &captureUplink{}
	s := NewScheduler(fc, testRecord(), radio, sim.Suite(), rtc.New(fc), up, "MediaEdu-EB123456")
	return s, fc, radio, sim, up
}

func TestSchedulerSamplingCadence(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	s, fc, _, _, _ := newTestScheduler(noon)

	var samples []data.Snapshot
	s.OnSample = func(snap data.Snapshot) { samples = append(samples, snap) }

	// first tick fires immediately
	s.Tick()
	require.Len(t, samples, 1)

	fc.Advance(5 * time.Second)
	s.Tick()
	assert.Len(t, samples, 1)

	fc.Advance(5 * time.Second)
	s.Tick()
	assert.Len(t, samples, 2)
}

func TestSchedulerUploadInsideWindow(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	s, fc, _, _, up := newTestScheduler(noon)

	s.Tick()
	require.Len(t, up.Sent, 1)
	assert.Equal(t, 1, up.Closes)
	require.Len(t, up.Targets, 1)
	assert.Equal(t, "db.example.edu", up.Targets[0].Host)
	assert.Equal(t, "aula 21", up.Targets[0].Site)
	assert.Equal(t, "MediaEdu-EB123456", up.Targets[0].Label)

	// a second tick inside the ten-minute gate does nothing
	fc.Advance(time.Minute)
	s.Tick()
	assert.Len(t, up.Sent, 1)

	fc.Advance(9 * time.Minute)
	s.Tick()
	assert.Len(t, up.Sent, 2)
}

func TestSchedulerUploadSkippedOutsideWindow(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	s, fc, _, _, up := newTestScheduler(noon)
	s.rec.Window = record.Window{StartHour: 22, EndHour: 6}

	s.Tick()
	assert.Empty(t, up.Sent)

	// the gate advanced anyway: the missed window is skipped, not queued
	fc.Advance(time.Minute)
	s.Tick()
	assert.Empty(t, up.Sent)
}

func TestSchedulerUploadConnectFailureNonFatal(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	s, _, _, _, up := newTestScheduler(noon)
	up.ConnectErr = errors.New("no route to host")

	var uploadErr error
	s.OnUpload = func(snap data.Snapshot, err error) { uploadErr = err }

	s.Tick()
	assert.Empty(t, up.Sent)
	assert.Error(t, uploadErr)
}

func TestSchedulerSensorFaultReportedDistinctly(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	s, _, _, sim, _ := newTestScheduler(noon)
	sim.TempHumFault = true

	var snap data.Snapshot
	s.OnSample = func(got data.Snapshot) { snap = got }

	s.Tick()
	assert.False(t, snap.TempHumOK)
	// the other sensors still report
	assert.Equal(t, sim.SoundDB, snap.SoundDB)
	assert.Equal(t, sim.LightLux, snap.LightLux)
}

func TestJoinNetworkBoundedRetry(t *testing.T) {
	rec := testRecord()
	radio := wireless.NewSimRadio("")
	clk := clockwork.NewRealClock()
	sim := sensors.NewSimSuite()
	s := NewScheduler(clk, rec, radio, sim.Suite(), rtc.New(clk), &captureUplink{}, "node")
	s.JoinPoll = time.Millisecond
	s.JoinTries = 5

	// link comes up on the third status poll
	radio.JoinAfterPolls = 3
	assert.True(t, s.JoinNetwork())
	assert.Equal(t, 1, radio.JoinCalls)

	// link never comes up within the bounded polls: give up, non-fatal
	radio.SetState(wireless.StateDisconnected)
	radio.JoinAfterPolls = 50
	assert.False(t, s.JoinNetwork())
}

func TestJoinNetworkNoWaitAfterLastPoll(t *testing.T) {
	rec := testRecord()
	radio := wireless.NewSimRadio("")
	clk := clockwork.NewRealClock()
	sim := sensors.NewSimSuite()
	s := NewScheduler(clk, rec, radio, sim.Suite(), rtc.New(clk), &captureUplink{}, "node")
	s.JoinPoll = 100 * time.Millisecond
	s.JoinTries = 2

	// link never comes up: two polls with a single wait between them,
	// none after the second
	radio.JoinAfterPolls = 50
	start := time.Now()
	assert.False(t, s.JoinNetwork())
	assert.Equal(t, 2, radio.StatusPolls)
	assert.Less(t, time.Since(start), 2*s.JoinPoll)
}

func TestJoinNetworkSkippedWithoutSSID(t *testing.T) {
	rec := record.New()
	radio := wireless.NewSimRadio("")
	clk := clockwork.NewRealClock()
	sim := sensors.NewSimSuite()
	s := NewScheduler(clk, rec, radio, sim.Suite(), rtc.New(clk), &captureUplink{}, "node")

	assert.False(t, s.JoinNetwork())
	assert.Zero(t, radio.JoinCalls)
}
