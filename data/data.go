package data

import (
	"math"
	"sync"
	"time"

	"github.com/jlpinilla/MediaEdu/buffer"
)

// holder for all the data being produced by the sensors

// Snapshot is one sampling pass over the full sensor set. TempHumOK is
// false when the temperature/humidity sensor faulted (NaN reading).
type Snapshot struct {
	TempC      float64   `json:"temp_C"`
	Humidity   float64   `json:"humidity_RH"`
	SoundDB    float64   `json:"sound_dB"`
	AirQuality float64   `json:"air_quality"`
	LightLux   float64   `json:"light_lux"`
	TempHumOK  bool      `json:"temp_hum_ok"`
	At         time.Time `json:"taken_at"`
}

// Channel names for the history buffers.
const (
	ChanTemp  = "temperature"
	ChanHum   = "humidity"
	ChanSound = "sound"
	ChanAir   = "airquality"
	ChanLight = "light"
)

// History keeps per-channel rolling buffers plus the latest snapshot. It is
// the one structure read outside the tick flow (by the status service), so
// it carries its own lock.
type History struct {
	mu      sync.RWMutex
	buffers map[string]*buffer.SampleBuffer
	latest  Snapshot
	have    bool
}

func NewHistory(depth int) *History {
	h := &History{buffers: make(map[string]*buffer.SampleBuffer)}
	for _, name := range []string{ChanTemp, ChanHum, ChanSound, ChanAir, ChanLight} {
		h.buffers[name] = buffer.NewBuffer(depth)
	}
	return h
}

func (h *History) Buffer(name string) *buffer.SampleBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buffers[name]
}

// Record folds a snapshot into the buffers. Faulted readings are kept out
// of the temperature/humidity history so averages stay meaningful.
func (h *History) Record(s Snapshot) {
	h.mu.Lock()
	h.latest = s
	h.have = true
	h.mu.Unlock()

	if s.TempHumOK && !math.IsNaN(s.TempC) {
		h.buffers[ChanTemp].AddItem(s.TempC)
		h.buffers[ChanHum].AddItem(s.Humidity)
	}
	h.buffers[ChanSound].AddItem(s.SoundDB)
	h.buffers[ChanAir].AddItem(s.AirQuality)
	h.buffers[ChanLight].AddItem(s.LightLux)
}

// Latest returns the most recent snapshot; the bool reports whether any
// sampling pass has happened yet.
func (h *History) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.have
}
