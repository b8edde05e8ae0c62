package mode

import (
	"math"
	"time"

	"github.com/jlpinilla/MediaEdu/data"
	"github.com/jlpinilla/MediaEdu/record"
	"github.com/jlpinilla/MediaEdu/rtc"
	"github.com/jlpinilla/MediaEdu/sensors"
	"github.com/jlpinilla/MediaEdu/uplink"
	"github.com/jlpinilla/MediaEdu/wireless"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

// Normal-mode cadences and the join retry bounds.
const (
	DefaultSampleEvery = 10 * time.Second
	DefaultUploadEvery = 10 * time.Minute
	DefaultJoinPoll    = 500 * time.Millisecond
	DefaultJoinTries   = 20
)

// Scheduler runs the normal-mode work: keep the link up, sample on cadence,
// and upload on cadence when inside the window. All waiting goes through
// the injected clock.
type Scheduler struct {
	clock clockwork.Clock
	rec   *record.Record
	radio wireless.Radio
	suite *sensors.Suite
	rtc   rtc.RTC
	up    uplink.Uplink
	site  string // device label for the upload target

	SampleEvery time.Duration
	UploadEvery time.Duration
	JoinPoll    time.Duration
	JoinTries   int

	// OnSample and OnUpload are observation hooks; main wires the history
	// buffers and gauges through them.
	OnSample func(data.Snapshot)
	OnUpload func(data.Snapshot, error)

	lastSample time.Time
	lastUpload time.Time
}

func NewScheduler(clock clockwork.Clock, rec *record.Record, radio wireless.Radio,
	suite *sensors.Suite, clk rtc.RTC, up uplink.Uplink, label string) *Scheduler {
	return &Scheduler{
		clock:       clock,
		rec:         rec,
		radio:       radio,
		suite:       suite,
		rtc:         clk,
		up:          up,
		site:        label,
		SampleEvery: DefaultSampleEvery,
		UploadEvery: DefaultUploadEvery,
		JoinPoll:    DefaultJoinPoll,
		JoinTries:   DefaultJoinTries,
	}
}

// Tick does one pass of normal-mode work. The zero-valued last-run stamps
// make the first sampling and upload checks fire immediately after entering
// normal mode.
func (s *Scheduler) Tick() {
	if s.radio.Status() != wireless.StateConnected {
		s.JoinNetwork()
	}

	now := s.clock.Now()
	if now.Sub(s.lastSample) >= s.SampleEvery {
		s.lastSample = now
		s.sample()
	}
	if now.Sub(s.lastUpload) >= s.UploadEvery {
		// the gate advances whether or not the window check passes, so a
		// missed window is skipped, never queued
		s.lastUpload = now
		t := s.rtc.Now()
		if InWindow(t.Hour(), t.Minute(), s.rec.Window) {
			s.upload()
		} else {
			logger.Infof("Outside upload window %v, skipping", s.rec.Window)
		}
	}
}

// JoinNetwork starts association with the configured network and polls the
// link for a bounded time. Giving up is non-fatal: the next tick retries.
func (s *Scheduler) JoinNetwork() bool {
	name := s.rec.NetworkName.String()
	if name == "" {
		return false
	}
	logger.Infof("Joining network [%v]", name)
	if err := s.radio.Join(name, s.rec.NetworkSecret.String()); err != nil {
		logger.Errorf("Join failed [%v]", err)
		return false
	}
	for i := 0; i < s.JoinTries; i++ {
		if s.radio.Status() == wireless.StateConnected {
			logger.Infof("Joined [%v]", name)
			return true
		}
		if i == s.JoinTries-1 {
			// no point waiting after the last poll
			break
		}
		s.clock.Sleep(s.JoinPoll)
	}
	logger.Infof("Network [%v] not up after %v polls, will retry later", name, s.JoinTries)
	return false
}

func (s *Scheduler) readSnapshot() data.Snapshot {
	t, rh := s.suite.TempHum.Read()
	return data.Snapshot{
		TempC:      t,
		Humidity:   rh,
		SoundDB:    s.suite.Sound.Level(),
		AirQuality: s.suite.Air.Index(),
		LightLux:   s.suite.Light.Lux(),
		TempHumOK:  !math.IsNaN(t) && !math.IsNaN(rh),
		At:         s.rtc.Now(),
	}
}

func (s *Scheduler) sample() {
	snap := s.readSnapshot()
	if snap.TempHumOK {
		logger.Infof("Readings: %.1fC %.0f%%RH, sound %.1fdB, air %.0f, light %.0flx at %v",
			snap.TempC, snap.Humidity, snap.SoundDB, snap.AirQuality, snap.LightLux,
			snap.At.Format("15:04:05"))
	} else {
		logger.Errorf("Temperature/humidity sensor fault (NaN); sound %.1fdB, air %.0f, light %.0flx at %v",
			snap.SoundDB, snap.AirQuality, snap.LightLux, snap.At.Format("15:04:05"))
	}
	if s.OnSample != nil {
		s.OnSample(snap)
	}
}

func (s *Scheduler) upload() {
	target := uplink.Target{
		Host:     s.rec.UploadHost.String(),
		User:     s.rec.UploadUser.String(),
		Secret:   s.rec.UploadSecret.String(),
		Database: s.rec.UploadDatabase.String(),
		Site:     s.rec.SiteLabel.String(),
		Label:    s.site,
	}

	snap := s.readSnapshot()
	if err := s.up.Connect(target); err != nil {
		logger.Errorf("Upload connect failed [%v]", err)
		if s.OnUpload != nil {
			s.OnUpload(snap, err)
		}
		return
	}
	defer s.up.Close()

	err := s.up.Send(snap)
	if err != nil {
		logger.Errorf("Upload failed [%v]", err)
	} else {
		logger.Info("Upload complete")
	}
	if s.OnUpload != nil {
		s.OnUpload(snap, err)
	}
}
