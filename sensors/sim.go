package sensors

import "math"

// SimSuite is a scriptable sensor set for bench runs and tests.
type SimSuite struct {
	TempC    float64
	Humidity float64
	SoundDB  float64
	AirIdx   float64
	LightLux float64

	// TempHumFault makes the temperature/humidity read report NaN.
	TempHumFault bool
}

func NewSimSuite() *SimSuite {
	return &SimSuite{TempC: 21.5, Humidity: 45, SoundDB: 40, AirIdx: 120, LightLux: 300}
}

func (s *SimSuite) Read() (float64, float64) {
	if s.TempHumFault {
		return math.NaN(), math.NaN()
	}
	return s.TempC, s.Humidity
}

func (s *SimSuite) Level() float64 { return s.SoundDB }
func (s *SimSuite) Index() float64 { return s.AirIdx }
func (s *SimSuite) Lux() float64   { return s.LightLux }

// Suite exposes the sim as the scheduler's sensor set.
func (s *SimSuite) Suite() *Suite {
	return &Suite{TempHum: s, Sound: s, Air: s, Light: s}
}

// SimTrigger is a settable trigger input.
type SimTrigger struct {
	Pressed bool
}

func (t *SimTrigger) Active() bool { return t.Pressed }
