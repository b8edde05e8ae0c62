package sensors

/*
 * Sensor contracts for the monitoring node. The scheduler only sees these
 * interfaces; the periph-backed implementations live in hardware.go and the
 * scriptable ones in sim.go.
 */

// TempHumidity reads the combined temperature/humidity sensor. A faulted
// sensor reports NaN for both values rather than an error: the cycle keeps
// running and the fault is reported in the snapshot.
type TempHumidity interface {
	Read() (tempC float64, relHumidity float64)
}

// Sound reports the ambient sound level scaled into [30,120] dB.
type Sound interface {
	Level() float64
}

// Air reports an air-quality index scaled into [0,1000].
type Air interface {
	Index() float64
}

// Light reports ambient light in lux.
type Light interface {
	Lux() float64
}

// Trigger is the momentary physical input that requests configuration mode.
type Trigger interface {
	Active() bool
}

// Suite bundles the node's sensor set.
type Suite struct {
	TempHum TempHumidity
	Sound   Sound
	Air     Air
	Light   Light
}

// Output ranges for the analog channels.
const (
	SoundMinDB = 30.0
	SoundMaxDB = 120.0
	AirMinIdx  = 0.0
	AirMaxIdx  = 1000.0
)

// Scale maps x from [inMin,inMax] into [outMin,outMax], clamping to the
// output range so a noisy sample never escapes it.
func Scale(x, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	out := outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
	if out < outMin {
		return outMin
	}
	if out > outMax {
		return outMax
	}
	return out
}
