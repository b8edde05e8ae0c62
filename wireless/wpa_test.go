package wireless

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(responses map[string]string, log *[]string) func(args ...string) (string, error) {
	return func(args ...string) (string, error) {
		cmd := strings.Join(args, " ")
		*log = append(*log, cmd)
		if out, ok := responses[cmd]; ok {
			return out, nil
		}
		return "OK", nil
	}
}

func TestWPACliStatus(t *testing.T) {
	var log []string
	w := &WPACli{Iface: "wlan0"}

	w.run = fakeRunner(map[string]string{
		"status": "bssid=aa:bb:cc:dd:ee:ff\nssid=ClassNet\nwpa_state=COMPLETED",
	}, &log)
	assert.Equal(t, StateConnected, w.Status())

	w.run = fakeRunner(map[string]string{
		"status": "wpa_state=SCANNING",
	}, &log)
	assert.Equal(t, StateConnecting, w.Status())

	w.run = fakeRunner(map[string]string{
		"status": "wpa_state=DISCONNECTED",
	}, &log)
	assert.Equal(t, StateDisconnected, w.Status())
}

func TestWPACliJoinSequence(t *testing.T) {
	var log []string
	w := &WPACli{Iface: "wlan0"}
	w.run = fakeRunner(map[string]string{"add_network": "0"}, &log)

	require.NoError(t, w.Join("ClassNet", "hunter22"))

	assert.Equal(t, []string{
		"remove_network all",
		"add_network",
		`set_network 0 ssid "ClassNet"`,
		`set_network 0 psk "hunter22"`,
		"enable_network 0",
	}, log)
}

func TestWPACliAccessPointSequence(t *testing.T) {
	var log []string
	w := &WPACli{Iface: "wlan0"}
	w.run = fakeRunner(map[string]string{"add_network": "0"}, &log)

	require.NoError(t, w.StartAccessPoint("MediaEdu", "mediaedu1234"))
	assert.Contains(t, log, "set_network 0 mode 2")
	assert.Equal(t, StateAccessPoint, w.Status())

	w.StopAccessPoint()
	assert.Contains(t, log, "disable_network 0")
}

func TestWPACliSetNetworkFailure(t *testing.T) {
	var log []string
	w := &WPACli{Iface: "wlan0"}
	w.run = fakeRunner(map[string]string{
		"add_network":               "0",
		`set_network 0 psk "short"`: "FAIL",
	}, &log)

	assert.Error(t, w.Join("ClassNet", "short"))
}
