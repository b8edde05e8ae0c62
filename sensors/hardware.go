package sensors

import (
	"math"
	"time"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpioutil"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
)

/*
 * Hardware wiring: a BME280 on the I2C bus for temperature and humidity,
 * and an ADS1115 ADC carrying the analog sound, air-quality and light
 * sensors on channels 0-2. host.Init is the caller's job; everything here
 * assumes the periph host is already up.
 */

type Hardware struct {
	Bus i2c.BusCloser

	bme   *bmxx80.Dev
	sound ads1x15.PinADC
	air   ads1x15.PinADC
	light ads1x15.PinADC
}

// Init opens the I2C bus and brings up the sensor set. On failure the bus
// is closed and nothing is usable.
func Init(busName string) (*Hardware, error) {
	h := &Hardware{}

	bus, err := i2creg.Open(busName)
	if err != nil {
		logger.Errorf("Failed to open I2C bus [%v]", err)
		return nil, err
	}
	h.Bus = bus

	logger.Info("Starting BME280 reader...")
	bme, err := bmxx80.NewI2C(bus, 0x76, &bmxx80.DefaultOpts)
	if err != nil {
		logger.Errorf("failed to initialize bme280: %v", err)
		_ = bus.Close()
		return nil, err
	}
	h.bme = bme

	logger.Info("Starting ADS1115 ADC")
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		logger.Error(err)
		_ = bus.Close()
		return nil, err
	}

	channels := []struct {
		ch  ads1x15.Channel
		pin *ads1x15.PinADC
	}{
		{ads1x15.Channel0, &h.sound},
		{ads1x15.Channel1, &h.air},
		{ads1x15.Channel2, &h.light},
	}
	for _, c := range channels {
		pin, err := adc.PinForChannel(c.ch, 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			logger.Error(err)
			_ = bus.Close()
			return nil, err
		}
		*c.pin = pin
	}

	logger.Info("Sensors initialized.")
	return h, nil
}

func (h *Hardware) Close() {
	if h.Bus != nil {
		_ = h.Bus.Close()
	}
}

// Suite exposes the hardware as the scheduler's sensor set.
func (h *Hardware) Suite() *Suite {
	return &Suite{
		TempHum: (*bmeSensor)(h),
		Sound:   (*soundSensor)(h),
		Air:     (*airSensor)(h),
		Light:   (*lightSensor)(h),
	}
}

type bmeSensor Hardware

func (b *bmeSensor) Read() (float64, float64) {
	env := physic.Env{}
	if err := b.bme.Sense(&env); err != nil {
		logger.Errorf("BME280 read failed [%v]", err)
		return math.NaN(), math.NaN()
	}
	return env.Temperature.Celsius(), float64(env.Humidity) / float64(physic.PercentRH)
}

// readVolts samples one ADC pin and returns the voltage, 0 on error.
func readVolts(pin ads1x15.PinADC) float64 {
	sample, err := pin.Read()
	if err != nil {
		logger.Errorf("ADC read failed on %v [%v]", pin.Name(), err)
		return 0
	}
	return float64(sample.V) / float64(physic.Volt)
}

const adcMaxVolts = 3.3

type soundSensor Hardware

func (s *soundSensor) Level() float64 {
	return Scale(readVolts(s.sound), 0, adcMaxVolts, SoundMinDB, SoundMaxDB)
}

type airSensor Hardware

func (a *airSensor) Index() float64 {
	return Scale(readVolts(a.air), 0, adcMaxVolts, AirMinIdx, AirMaxIdx)
}

type lightSensor Hardware

func (l *lightSensor) Lux() float64 {
	// photocell divider, roughly linear over the indoor range
	return Scale(readVolts(l.light), 0, adcMaxVolts, 0, 1000)
}

// Button is the configuration-mode trigger on a GPIO pin, wired active-low
// with the internal pull-up.
type Button struct {
	pin gpio.PinIO
}

// NewButton looks the pin up and debounces short glitches. The long
// hold-to-configure qualification is the mode controller's job; this only
// filters contact bounce.
func NewButton(pinName string) (*Button, error) {
	p := gpioreg.ByName(pinName)
	if p == nil {
		logger.Errorf("Failed to find %v - trigger pin", pinName)
		return nil, errNoPin(pinName)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		logger.Errorf("Failed to configure %v [%v]", pinName, err)
		return nil, err
	}
	debounced, err := gpioutil.Debounce(p, 30*time.Millisecond, 0, gpio.NoEdge)
	if err != nil {
		logger.Errorf("Failed to set debounce [%v]", err)
		return nil, err
	}
	return &Button{pin: debounced}, nil
}

func (b *Button) Active() bool {
	return b.pin.Read() == gpio.Low
}

type errNoPin string

func (e errNoPin) Error() string { return "no such pin: " + string(e) }
