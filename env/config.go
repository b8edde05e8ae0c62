package env

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// BootConfig is the node's boot-time configuration: everything that is not
// operator state (that lives in the persisted record) and not hardware
// constant.
type BootConfig struct {
	// Slot is the file path backing the persisted configuration record.
	Slot string `yaml:"slot"`
	// Iface is the wireless interface the radio drives.
	Iface string `yaml:"iface"`
	// Bus is the I2C bus name; empty picks the first.
	Bus string `yaml:"bus"`

	Portal PortalConfig `yaml:"portal"`
	Uplink UplinkConfig `yaml:"uplink"`
	Status StatusConfig `yaml:"status"`
}

type PortalConfig struct {
	Addr string `yaml:"addr"`
}

type UplinkConfig struct {
	// Driver selects the upload path: log, postgres, mqtt or http.
	Driver string `yaml:"driver"`
	// FeedURL is the endpoint for the http driver.
	FeedURL string `yaml:"feed_url"`
}

type StatusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func defaults() *BootConfig {
	return &BootConfig{
		Slot:   "/var/lib/mediaedu/config.dat",
		Iface:  "wlan0",
		Portal: PortalConfig{Addr: ":80"},
		Uplink: UplinkConfig{Driver: "log"},
		Status: StatusConfig{Addr: ":8080"},
	}
}

// Load reads the boot configuration file and applies environment
// overrides. A missing file is not an error: defaults apply.
func Load(filename string) (*BootConfig, error) {
	cfg := defaults()

	raw, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		logger.Infof("No boot config at [%v], using defaults", filename)
	} else if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	} else if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (c *BootConfig) applyEnvOverrides() {
	if slot := os.Getenv("MEDIAEDU_SLOT"); slot != "" {
		c.Slot = slot
	}
	if iface := os.Getenv("MEDIAEDU_IFACE"); iface != "" {
		c.Iface = iface
	}
	if driver := os.Getenv("MEDIAEDU_UPLINK"); driver != "" {
		c.Uplink.Driver = driver
	}
	if send, ok := os.LookupEnv("SENDPROMDATA"); ok {
		c.Status.Enabled = send == "true"
	}
	if addr := os.Getenv("MEDIAEDU_STATUS_ADDR"); addr != "" {
		c.Status.Addr = addr
	}
}
