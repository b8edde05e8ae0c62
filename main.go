package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/jlpinilla/MediaEdu/data"
	"github.com/jlpinilla/MediaEdu/env"
	"github.com/jlpinilla/MediaEdu/identity"
	"github.com/jlpinilla/MediaEdu/led"
	"github.com/jlpinilla/MediaEdu/mode"
	"github.com/jlpinilla/MediaEdu/portal"
	"github.com/jlpinilla/MediaEdu/record"
	"github.com/jlpinilla/MediaEdu/rtc"
	"github.com/jlpinilla/MediaEdu/sensors"
	"github.com/jlpinilla/MediaEdu/uplink"
	"github.com/jlpinilla/MediaEdu/wireless"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/host/v3"

	logger "github.com/sirupsen/logrus"
)

const version = "MediaEdu-1.0.0"

type node struct {
	ctrl     *mode.Controller
	history  *data.History
	id       identity.Identity
	testMode bool
}

type webdata struct {
	TimeNow      string    `json:"time"`
	Device       string    `json:"device"`
	TempC        float64   `json:"temp_C"`
	TempAvg      float64   `json:"temp_C_avg"`
	Humidity     float64   `json:"humidity_RH"`
	SoundDB      float64   `json:"sound_dB"`
	SoundAvg     float64   `json:"sound_dB_avg"`
	SoundMin     float64   `json:"sound_dB_min"`
	SoundMax     float64   `json:"sound_dB_max"`
	SoundHistory []float64 `json:"sound_history"`
	AirQuality   float64   `json:"air_quality"`
	LightLux     float64   `json:"light_lux"`
	SensorOK     bool      `json:"temp_hum_ok"`
}

var Prom_temperature = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "temperature",
		Help: "Temperature C",
	},
)

var Prom_humidity = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "relative_humidity",
		Help: "Relative Humidity",
	},
)

var Prom_sound = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "sound_level",
		Help: "Sound level dB",
	},
)

var Prom_airQuality = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "air_quality",
		Help: "Air quality index",
	},
)

var Prom_light = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "light_level",
		Help: "Light level lux",
	},
)

var Prom_uploads = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Completed snapshot uploads",
	},
)

var Prom_uploadFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "upload_failures_total",
		Help: "Failed snapshot uploads",
	},
)

// called by prometheus
func init() {
	logger.Infof("%v: Initialize prometheus...", time.Now().Format(time.RFC822))
	prometheus.MustRegister(
		Prom_temperature,
		Prom_humidity,
		Prom_sound,
		Prom_airQuality,
		Prom_light,
		Prom_uploads,
		Prom_uploadFailures)
}

func main() {
	logger.Infof("Starting monitoring node [%v]", version)

	args := env.Args{
		Test:    flag.Bool("test", false, "test mode, simulated radio and sensors"),
		Verbose: flag.Bool("verbose", false, "debug logging"),
		Config:  flag.String("config", "/etc/mediaedu/boot.yaml", "boot config file"),
	}
	flag.Parse()

	if *args.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if *args.Test {
		logger.Info("TEST MODE")
	}

	cfg, err := env.Load(*args.Config)
	if err != nil {
		logger.Errorf("Failed to load boot config!! [%v]", err)
		logger.Exit(1)
	}

	n := &node{testMode: *args.Test}
	n.history = data.NewHistory(env.HistoryDepth)

	var (
		radio   wireless.Radio
		suite   *sensors.Suite
		trigger sensors.Trigger
		blinker mode.Indicator
	)

	if *args.Test {
		radio = wireless.NewSimRadio("b8:27:eb:00:00:01")
		sim := sensors.NewSimSuite()
		suite = sim.Suite()
		trigger = &sensors.SimTrigger{}
		blinker = noIndicator{}
	} else {
		logger.Infof("%v: Initialize hardware...", time.Now().Format(time.RFC822))
		if _, err := host.Init(); err != nil {
			logger.Errorf("Failed to init periph host!! [%v]", err)
			logger.Exit(1)
		}
		hw, err := sensors.Init(cfg.Bus)
		if err != nil {
			logger.Errorf("Failed to initialise sensors!! [%v]", err)
			logger.Exit(1)
		}
		defer hw.Close()
		suite = hw.Suite()

		button, err := sensors.NewButton(env.TriggerButtonIn)
		if err != nil {
			// a dead button never requests configuration mode; keep running
			logger.Errorf("Trigger button unavailable [%v]", err)
		} else {
			trigger = button
		}
		blinker = led.NewLED("config", env.IndicatorLed)
		radio = wireless.NewWPACli(cfg.Iface)
	}

	hwaddr, err := radio.HardwareAddress()
	if err != nil {
		logger.Errorf("Failed to read hardware address [%v]", err)
		hwaddr = "00:00:00:00:00:00"
	}
	n.id = identity.Derive(hwaddr)
	logger.Infof("Device [%v] at [%v]", n.id.Label, n.id.Address)

	rec, err := record.LoadRecord(record.NewFileSlot(cfg.Slot))
	if err != nil {
		logger.Errorf("Failed to load configuration record!! [%v]", err)
		logger.Exit(1)
	}

	clock := clockwork.NewRealClock()
	nodeRTC := rtc.New(clock)

	up := selectUplink(cfg, *args.Test)
	sched := mode.NewScheduler(clock, rec, radio, suite, nodeRTC, up, n.id.Label)
	sched.OnSample = n.onSample
	sched.OnUpload = n.onUpload

	handler := portal.NewHandler(rec, record.NewFileSlot(cfg.Slot), n.id, nodeRTC)

	n.ctrl = mode.NewController(mode.Config{
		Clock:     clock,
		Record:    rec,
		Radio:     radio,
		Trigger:   trigger,
		Indicator: blinker,
		Handler:   handler,
		Scheduler: sched,
		OpenListener: func() (portal.Listener, error) {
			return portal.OpenTCP(cfg.Portal.Addr)
		},
		APName:   env.APName,
		APSecret: env.APSecret,
	})

	// the cooperative control loop
	go func() {
		for {
			n.ctrl.Tick()
			time.Sleep(env.TickEvery)
		}
	}()

	// status web service, outside the tick flow; reads only the locked
	// history and prometheus
	if cfg.Status.Enabled {
		logger.Info("Starting webservice...")
		http.HandleFunc("/", n.handler)
		if !n.testMode {
			http.Handle("/metrics", promhttp.Handler())
		}
		logger.Fatal(http.ListenAndServe(cfg.Status.Addr, nil))
	}
	logger.Info("Status service disabled")
	select {}
}

func selectUplink(cfg *env.BootConfig, testMode bool) uplink.Uplink {
	if testMode {
		return &uplink.Log{}
	}
	switch cfg.Uplink.Driver {
	case "postgres":
		return &uplink.Postgres{}
	case "mqtt":
		return &uplink.MQTT{}
	case "http":
		return &uplink.HTTPFeed{BaseURL: cfg.Uplink.FeedURL}
	default:
		return &uplink.Log{}
	}
}

func (n *node) onSample(s data.Snapshot) {
	n.history.Record(s)
	if s.TempHumOK {
		Prom_temperature.Set(s.TempC)
		Prom_humidity.Set(s.Humidity)
	}
	Prom_sound.Set(s.SoundDB)
	Prom_airQuality.Set(s.AirQuality)
	Prom_light.Set(s.LightLux)
}

func (n *node) onUpload(s data.Snapshot, err error) {
	if err != nil {
		Prom_uploadFailures.Inc()
		return
	}
	Prom_uploads.Inc()
}

func (n *node) handler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")

	latest, _ := n.history.Latest()
	tempAvg, _, _, _ := n.history.Buffer(data.ChanTemp).GetAverageMinMaxSum()
	// sound swings fast; average and spread over the last few minutes only
	sound := n.history.Buffer(data.ChanSound)
	soundAvg := sound.AverageLast(30)
	_, soundMin, soundMax := sound.SumMinMaxLast(30)

	// full sound ring, rotated so the oldest sample comes first
	raw, size, pos := sound.GetRawData()
	hist := make([]float64, 0, int(size))
	hist = append(hist, raw[int(pos):]...)
	hist = append(hist, raw[:int(pos)]...)

	wd := webdata{
		TimeNow:      time.Now().Format(time.RFC822),
		Device:       n.id.Label,
		TempAvg:      float64(tempAvg),
		SoundDB:      latest.SoundDB,
		SoundAvg:     float64(soundAvg),
		SoundMin:     float64(soundMin),
		SoundMax:     float64(soundMax),
		SoundHistory: hist,
		AirQuality:   latest.AirQuality,
		LightLux:     latest.LightLux,
		SensorOK:     latest.TempHumOK,
	}
	if latest.TempHumOK {
		// NaN from a faulted sensor has no JSON rendering
		wd.TempC = latest.TempC
		wd.Humidity = latest.Humidity
	}

	js, err := json.Marshal(wd)
	if err != nil {
		logger.Errorf("JSON error [%v]", err)
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = rw.Write(js) // not much we can do if this fails
}

// noIndicator stands in for the LED in test mode.
type noIndicator struct{}

func (noIndicator) On()         {}
func (noIndicator) Off()        {}
func (noIndicator) Flicker(int) {}
