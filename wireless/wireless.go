package wireless

// LinkState is the wireless link as the mode controller sees it.
type LinkState string

const (
	StateDisconnected LinkState = "disconnected"
	StateConnecting   LinkState = "connecting"
	StateConnected    LinkState = "connected"
	StateAccessPoint  LinkState = "access-point"
	StateFailed       LinkState = "failed"
)

// Radio is the link-layer collaborator. Join and StartAccessPoint only
// initiate; the caller polls Status to learn the outcome.
type Radio interface {
	Status() LinkState
	// Join starts association with an existing network.
	Join(name, secret string) error
	// StartAccessPoint stands the node up as its own network for the
	// configuration portal.
	StartAccessPoint(name, secret string) error
	// StopAccessPoint tears the portal network down again.
	StopAccessPoint()
	// HardwareAddress returns the radio MAC, used to derive the device
	// identity.
	HardwareAddress() (string, error)
}
