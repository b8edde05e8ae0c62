package env

import "time"

const (
	GPIO02 = "GPIO02" // SDA
	GPIO03 = "GPIO03" // SDC
	GPIO17 = "GPIO17" // config trigger button
	GPIO20 = "GPIO20" // config mode LED

	TriggerButtonIn = GPIO17
	IndicatorLed    = GPIO20

	// Access point the portal runs on while in configuration mode.
	APName   = "MediaEdu"
	APSecret = "mediaedu1234"

	// TickEvery paces the cooperative control loop.
	TickEvery = 100 * time.Millisecond

	// HistoryDepth is how many sampling passes the rolling buffers keep;
	// about an hour at the 10s cadence.
	HistoryDepth = 360
)
