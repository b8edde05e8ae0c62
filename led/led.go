package led

import (
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED drives an indicator on a GPIO pin. A missing pin is tolerated: the
// node still runs headless, the indicator just does nothing.
type LED struct {
	Name    string
	lock    *sync.Mutex
	on      bool
	gpioPin gpio.PinIO
}

func NewLED(name string, GPIOPin string) *LED {
	logger.Infof("Creating new LED on pin [%v] called [%v]", GPIOPin, name)
	l := &LED{
		Name: name,
		lock: &sync.Mutex{},
		on:   false,
	}
	l.gpioPin = gpioreg.ByName(GPIOPin)
	if l.gpioPin == nil {
		logger.Errorf("Failed to find %v pin", GPIOPin)
		return l
	}

	// flicker to show it's working
	_ = l.gpioPin.Out(gpio.Low)
	_ = l.gpioPin.Out(gpio.High)
	time.Sleep(time.Millisecond * 100)
	_ = l.gpioPin.Out(gpio.Low)
	time.Sleep(time.Millisecond * 100)
	_ = l.gpioPin.Out(gpio.High)
	time.Sleep(time.Millisecond * 100)
	_ = l.gpioPin.Out(gpio.Low)

	return l
}

func (l *LED) On() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = true
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.High)
	}
}

func (l *LED) Off() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = false
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.Low)
	}
}

func (l *LED) Flicker(pulses int) {
	if l.gpioPin == nil {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if pulses < 1 || pulses > 100 {
		// reject daft or excessive requests
		return
	}
	for i := 0; i < pulses; i++ {
		_ = l.gpioPin.Out(gpio.High)
		time.Sleep(time.Millisecond * 100)
		_ = l.gpioPin.Out(gpio.Low)
	}
}

func (l *LED) IsOn() bool {
	return l.on
}
