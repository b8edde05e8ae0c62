package record

import (
	"bytes"
	"encoding/binary"
	"fmt"

	logger "github.com/sirupsen/logrus"
)

/*
 * The persisted configuration record. A single instance lives for the whole
 * process: the mode controller owns it and the portal apply step is the only
 * writer. It survives power cycles as one opaque fixed-layout block (see
 * SlotSize); there is no version tag, so a layout change makes an old block
 * read back as garbage.
 */

// Field capacities, terminator byte included. Stored text never exceeds
// capacity-1 bytes.
const (
	CapNetworkName    = 32
	CapNetworkSecret  = 64
	CapSiteLabel      = 64
	CapUploadHost     = 64
	CapUploadUser     = 32
	CapUploadSecret   = 32
	CapUploadDatabase = 32
)

// SlotSize is the exact size of the marshalled block: the configured flag,
// the seven text fields and the four window bytes.
const SlotSize = 1 +
	CapNetworkName + CapNetworkSecret + CapSiteLabel +
	CapUploadHost + CapUploadUser + CapUploadSecret + CapUploadDatabase +
	4

// BoundedText is a text value with a fixed storage capacity. Set truncates
// deterministically to capacity-1 bytes, keeping room for the terminator in
// the marshalled layout, and reports whether it truncated.
type BoundedText struct {
	cap int
	val string
}

func NewBoundedText(capacity int) BoundedText {
	if capacity < 1 {
		capacity = 1
	}
	return BoundedText{cap: capacity}
}

// Set stores s, truncated to capacity-1 bytes. The return value reports
// truncation.
func (t *BoundedText) Set(s string) bool {
	if t.cap < 1 {
		// zero value; nothing can be stored
		t.val = ""
		return s != ""
	}
	if len(s) > t.cap-1 {
		t.val = s[:t.cap-1]
		return true
	}
	t.val = s
	return false
}

func (t BoundedText) String() string { return t.val }

func (t BoundedText) Cap() int { return t.cap }

func (t BoundedText) Empty() bool { return t.val == "" }

// Window is the daily upload-permitted interval. Start past End means the
// window wraps past midnight. Both bounds are inclusive.
type Window struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.StartHour, w.StartMinute, w.EndHour, w.EndMinute)
}

// Record is the persisted configuration. Configured stays false only until
// the first successful portal submission and drives initial-boot routing.
type Record struct {
	Configured bool

	NetworkName   BoundedText
	NetworkSecret BoundedText

	SiteLabel BoundedText

	UploadHost     BoundedText
	UploadUser     BoundedText
	UploadSecret   BoundedText
	UploadDatabase BoundedText

	Window Window
}

// New returns an empty unconfigured record with all field capacities set.
func New() *Record {
	return &Record{
		NetworkName:    NewBoundedText(CapNetworkName),
		NetworkSecret:  NewBoundedText(CapNetworkSecret),
		SiteLabel:      NewBoundedText(CapSiteLabel),
		UploadHost:     NewBoundedText(CapUploadHost),
		UploadUser:     NewBoundedText(CapUploadUser),
		UploadSecret:   NewBoundedText(CapUploadSecret),
		UploadDatabase: NewBoundedText(CapUploadDatabase),
	}
}

// slotLayout is the on-flash shape of the record. Field order is the wire
// contract; encoding/binary writes it without padding.
type slotLayout struct {
	Configured     uint8
	NetworkName    [CapNetworkName]byte
	NetworkSecret  [CapNetworkSecret]byte
	SiteLabel      [CapSiteLabel]byte
	UploadHost     [CapUploadHost]byte
	UploadUser     [CapUploadUser]byte
	UploadSecret   [CapUploadSecret]byte
	UploadDatabase [CapUploadDatabase]byte
	StartHour      uint8
	StartMinute    uint8
	EndHour        uint8
	EndMinute      uint8
}

func putText(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, s[:n])
}

func textFrom(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}

// Marshal renders the record as its fixed SlotSize block.
func (r *Record) Marshal() []byte {
	lay := slotLayout{}
	if r.Configured {
		lay.Configured = 1
	}
	putText(lay.NetworkName[:], r.NetworkName.String())
	putText(lay.NetworkSecret[:], r.NetworkSecret.String())
	putText(lay.SiteLabel[:], r.SiteLabel.String())
	putText(lay.UploadHost[:], r.UploadHost.String())
	putText(lay.UploadUser[:], r.UploadUser.String())
	putText(lay.UploadSecret[:], r.UploadSecret.String())
	putText(lay.UploadDatabase[:], r.UploadDatabase.String())
	lay.StartHour = uint8(r.Window.StartHour)
	lay.StartMinute = uint8(r.Window.StartMinute)
	lay.EndHour = uint8(r.Window.EndHour)
	lay.EndMinute = uint8(r.Window.EndMinute)

	buf := bytes.NewBuffer(make([]byte, 0, SlotSize))
	_ = binary.Write(buf, binary.LittleEndian, &lay)
	return buf.Bytes()
}

// Unmarshal fills the record from a block. The block is trusted to be the
// current layout; an old-layout block decodes as garbage by contract.
func (r *Record) Unmarshal(block []byte) error {
	if len(block) < SlotSize {
		return fmt.Errorf("record block too short: %d < %d", len(block), SlotSize)
	}
	lay := slotLayout{}
	if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &lay); err != nil {
		return fmt.Errorf("decode record block: %w", err)
	}
	r.Configured = lay.Configured != 0
	r.NetworkName.Set(textFrom(lay.NetworkName[:]))
	r.NetworkSecret.Set(textFrom(lay.NetworkSecret[:]))
	r.SiteLabel.Set(textFrom(lay.SiteLabel[:]))
	r.UploadHost.Set(textFrom(lay.UploadHost[:]))
	r.UploadUser.Set(textFrom(lay.UploadUser[:]))
	r.UploadSecret.Set(textFrom(lay.UploadSecret[:]))
	r.UploadDatabase.Set(textFrom(lay.UploadDatabase[:]))
	r.Window = Window{
		StartHour:   int(lay.StartHour),
		StartMinute: int(lay.StartMinute),
		EndHour:     int(lay.EndHour),
		EndMinute:   int(lay.EndMinute),
	}
	return nil
}

// Fields renders the record for diagnostics. Secrets are never included.
func (r *Record) Fields() logger.Fields {
	return logger.Fields{
		"configured": r.Configured,
		"ssid":       r.NetworkName.String(),
		"site":       r.SiteLabel.String(),
		"uploadHost": r.UploadHost.String(),
		"uploadUser": r.UploadUser.String(),
		"uploadDb":   r.UploadDatabase.String(),
		"window":     r.Window.String(),
	}
}
