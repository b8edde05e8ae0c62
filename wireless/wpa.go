package wireless

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
)

/*
 * WPACli drives a Linux wlan interface through the wpa_cli control socket.
 * Joining replaces network 0 with the configured credentials; access-point
 * mode uses a mode=2 network block on the same interface, which is what
 * wpa_supplicant supports without pulling in hostapd.
 */

type WPACli struct {
	Iface string
	// run is swapped out in tests.
	run func(args ...string) (string, error)

	apActive bool
}

func NewWPACli(iface string) *WPACli {
	w := &WPACli{Iface: iface}
	w.run = func(args ...string) (string, error) {
		full := append([]string{"-i", w.Iface}, args...)
		out, err := exec.Command("wpa_cli", full...).CombinedOutput()
		return strings.TrimSpace(string(out)), err
	}
	return w
}

func (w *WPACli) Status() LinkState {
	if w.apActive {
		return StateAccessPoint
	}
	out, err := w.run("status")
	if err != nil {
		logger.Errorf("wpa_cli status failed [%v]", err)
		return StateFailed
	}
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "wpa_state="); ok {
			switch v {
			case "COMPLETED":
				return StateConnected
			case "SCANNING", "AUTHENTICATING", "ASSOCIATING", "ASSOCIATED",
				"4WAY_HANDSHAKE", "GROUP_HANDSHAKE":
				return StateConnecting
			default:
				return StateDisconnected
			}
		}
	}
	return StateDisconnected
}

func (w *WPACli) Join(name, secret string) error {
	w.apActive = false
	return w.configureNetwork(name, secret, false)
}

func (w *WPACli) StartAccessPoint(name, secret string) error {
	if err := w.configureNetwork(name, secret, true); err != nil {
		return err
	}
	w.apActive = true
	return nil
}

func (w *WPACli) StopAccessPoint() {
	w.apActive = false
	if _, err := w.run("disable_network", "0"); err != nil {
		logger.Errorf("wpa_cli disable_network failed [%v]", err)
	}
}

func (w *WPACli) HardwareAddress() (string, error) {
	raw, err := os.ReadFile(filepath.Join("/sys/class/net", w.Iface, "address"))
	if err != nil {
		return "", fmt.Errorf("read %v hardware address: %w", w.Iface, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (w *WPACli) configureNetwork(name, secret string, accessPoint bool) error {
	// Rebuild network 0 from scratch each time; the persisted record is
	// the source of truth, not the supplicant config.
	if _, err := w.run("remove_network", "all"); err != nil {
		return fmt.Errorf("remove_network: %w", err)
	}
	if out, err := w.run("add_network"); err != nil || strings.Contains(out, "FAIL") {
		return fmt.Errorf("add_network: %v [%v]", out, err)
	}
	steps := [][]string{
		{"set_network", "0", "ssid", fmt.Sprintf("%q", name)},
		{"set_network", "0", "psk", fmt.Sprintf("%q", secret)},
	}
	if accessPoint {
		steps = append(steps, []string{"set_network", "0", "mode", "2"})
	}
	steps = append(steps, []string{"enable_network", "0"})
	for _, args := range steps {
		out, err := w.run(args...)
		if err != nil || strings.Contains(out, "FAIL") {
			return fmt.Errorf("%v: %v [%v]", strings.Join(args, " "), out, err)
		}
	}
	return nil
}
