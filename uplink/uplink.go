package uplink

import (
	"github.com/jlpinilla/MediaEdu/data"

	logger "github.com/sirupsen/logrus"
)

// Target is the upload destination built from the persisted record plus the
// device identity.
type Target struct {
	Host     string
	User     string
	Secret   string
	Database string
	Site     string
	Label    string
}

// Fields renders the target for diagnostics. The secret is never included.
func (t Target) Fields() logger.Fields {
	return logger.Fields{
		"host":     t.Host,
		"user":     t.User,
		"database": t.Database,
		"site":     t.Site,
		"device":   t.Label,
	}
}

// Uplink delivers one snapshot of all sensor values plus device identity.
// Drivers are invoked synchronously from the tick flow: Connect, Send,
// Close, once per upload pass.
type Uplink interface {
	Connect(t Target) error
	Send(s data.Snapshot) error
	Close()
}

// Log is the stub upload path: no wire protocol, just a logged delivery
// that always succeeds.
type Log struct {
	target Target
}

func (l *Log) Connect(t Target) error {
	l.target = t
	logger.WithFields(t.Fields()).Info("Uplink (stub) connected")
	return nil
}

func (l *Log) Send(s data.Snapshot) error {
	logger.Infof("Uplink (stub) delivered: %.1fC %.0f%%RH sound %.1fdB air %.0f light %.0flx from [%v]",
		s.TempC, s.Humidity, s.SoundDB, s.AirQuality, s.LightLux, l.target.Label)
	return nil
}

func (l *Log) Close() {}
