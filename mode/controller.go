package mode

import (
	"time"

	"github.com/jlpinilla/MediaEdu/portal"
	"github.com/jlpinilla/MediaEdu/record"
	"github.com/jlpinilla/MediaEdu/sensors"
	"github.com/jlpinilla/MediaEdu/wireless"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

// Mode is the node's operating state.
type Mode int

const (
	// ModeConfiguration hosts the access point and the portal.
	ModeConfiguration Mode = iota
	// ModeNormal joins the configured network and runs the scheduler.
	ModeNormal
)

func (m Mode) String() string {
	if m == ModeConfiguration {
		return "configuration"
	}
	return "normal"
}

// Indicator is the configuration-mode output (an LED on hardware).
type Indicator interface {
	On()
	Off()
	Flicker(pulses int)
}

const (
	// DefaultHold is how long the trigger must stay active to request
	// configuration mode.
	DefaultHold = 10 * time.Second
	// DefaultAckDelay lets the confirmation page reach the operator before
	// the access point goes away.
	DefaultAckDelay = 5 * time.Second
)

// Config wires a Controller. Record and Scheduler are required; zero
// durations take the defaults, a nil Clock takes the real one.
type Config struct {
	Clock     clockwork.Clock
	Record    *record.Record
	Radio     wireless.Radio
	Trigger   sensors.Trigger
	Indicator Indicator
	Handler   *portal.Handler
	Scheduler *Scheduler

	// OpenListener opens the portal listener on configuration-mode entry.
	OpenListener func() (portal.Listener, error)

	APName   string
	APSecret string

	Hold     time.Duration
	AckDelay time.Duration
}

// Controller is the top-level state machine. Tick is cooperative: one pass
// reads the trigger and dispatches to the portal or the scheduler. All
// state lives here and is touched only from the tick flow.
type Controller struct {
	cfg Config

	mode    Mode
	entered bool

	listener portal.Listener

	pressed       bool
	pressStart    time.Time
	pressConsumed bool
}

// NewController picks the initial mode from the persisted record: an
// unconfigured node boots straight into configuration mode. Mode entry
// itself runs on the first Tick.
func NewController(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Hold == 0 {
		cfg.Hold = DefaultHold
	}
	if cfg.AckDelay == 0 {
		cfg.AckDelay = DefaultAckDelay
	}
	c := &Controller{cfg: cfg}
	if cfg.Record.Configured {
		c.mode = ModeNormal
	} else {
		c.mode = ModeConfiguration
	}
	logger.Infof("Booting in %v mode", c.mode)
	return c
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Tick runs one cooperative pass. It never blocks beyond the two sanctioned
// stalls: the join retry loop and the post-submission acknowledgment delay.
func (c *Controller) Tick() {
	if !c.entered {
		c.entered = true
		c.enter(c.mode)
	}

	c.checkTrigger()

	switch c.mode {
	case ModeConfiguration:
		if c.listener == nil {
			return
		}
		conn := c.listener.Poll()
		if conn == nil {
			return
		}
		res := c.cfg.Handler.Serve(conn)
		if res.Applied {
			logger.Infof("Configuration applied, switching to normal mode in %v", c.cfg.AckDelay)
			c.cfg.Clock.Sleep(c.cfg.AckDelay)
			c.switchTo(ModeNormal)
		}
	case ModeNormal:
		c.cfg.Scheduler.Tick()
	}
}

// checkTrigger applies the debounce rule: a continuous hold of at least the
// qualification time switches a normal-mode node into configuration mode,
// once per hold. Any release resets the timer.
func (c *Controller) checkTrigger() {
	if c.cfg.Trigger == nil {
		return
	}
	if !c.cfg.Trigger.Active() {
		c.pressed = false
		c.pressConsumed = false
		return
	}
	now := c.cfg.Clock.Now()
	if !c.pressed {
		c.pressed = true
		c.pressStart = now
		return
	}
	if c.pressConsumed || c.mode != ModeNormal {
		return
	}
	if now.Sub(c.pressStart) >= c.cfg.Hold {
		logger.Infof("Trigger held %v, switching to configuration mode", c.cfg.Hold)
		c.pressConsumed = true
		c.switchTo(ModeConfiguration)
	}
}

func (c *Controller) switchTo(m Mode) {
	if m == c.mode {
		return
	}
	c.mode = m
	c.enter(m)
}

func (c *Controller) enter(m Mode) {
	switch m {
	case ModeConfiguration:
		logger.Info("Entering configuration mode")
		if c.cfg.Indicator != nil {
			c.cfg.Indicator.On()
		}
		if err := c.cfg.Radio.StartAccessPoint(c.cfg.APName, c.cfg.APSecret); err != nil {
			// still configuration mode, just with no reachable portal
			logger.Errorf("Failed to start access point [%v]", err)
			if c.cfg.Indicator != nil {
				c.cfg.Indicator.Flicker(3)
			}
			return
		}
		ln, err := c.cfg.OpenListener()
		if err != nil {
			logger.Errorf("Failed to open portal listener [%v]", err)
			return
		}
		c.listener = ln
	case ModeNormal:
		logger.Info("Entering normal mode")
		if c.cfg.Indicator != nil {
			c.cfg.Indicator.Off()
		}
		if c.listener != nil {
			_ = c.listener.Close()
			c.listener = nil
		}
		c.cfg.Radio.StopAccessPoint()
		// join outcome is ignored here; the scheduler retries every tick
		c.cfg.Scheduler.JoinNetwork()
	}
}
