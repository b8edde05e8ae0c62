package record

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
)

// Slot is the flash-backed persistence primitive the record lives in: one
// opaque block, written whole. There is no partial-write recovery.
type Slot interface {
	// Load returns the stored block. The bool reports presence: a slot that
	// has never been written returns (nil, false, nil).
	Load() ([]byte, bool, error)
	// Store replaces the block.
	Store(block []byte) error
}

// FileSlot keeps the block in a single file. A missing or short file counts
// as an absent slot, which boots the node unconfigured.
type FileSlot struct {
	Path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{Path: path}
}

func (f *FileSlot) Load() ([]byte, bool, error) {
	block, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %v: %w", f.Path, err)
	}
	if len(block) < SlotSize {
		logger.Infof("Slot file %v too short [%v bytes], treating as absent", f.Path, len(block))
		return nil, false, nil
	}
	return block, true, nil
}

func (f *FileSlot) Store(block []byte) error {
	if err := os.WriteFile(f.Path, block, 0o600); err != nil {
		return fmt.Errorf("write slot %v: %w", f.Path, err)
	}
	return nil
}

// MemorySlot holds the block in memory. Used for bench runs and tests.
type MemorySlot struct {
	block []byte
}

func (m *MemorySlot) Load() ([]byte, bool, error) {
	if m.block == nil {
		return nil, false, nil
	}
	return m.block, true, nil
}

func (m *MemorySlot) Store(block []byte) error {
	m.block = append([]byte(nil), block...)
	return nil
}

// LoadRecord reads the slot into a fresh record. An absent slot yields an
// unconfigured record, which routes the first boot into configuration mode.
func LoadRecord(slot Slot) (*Record, error) {
	r := New()
	block, present, err := slot.Load()
	if err != nil {
		return nil, err
	}
	if !present {
		logger.Info("No persisted configuration, starting unconfigured")
		return r, nil
	}
	if err := r.Unmarshal(block); err != nil {
		return nil, err
	}
	logger.WithFields(r.Fields()).Info("Loaded persisted configuration")
	return r, nil
}
