package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	id := Derive("b8:27:eb:12:34:56")
	assert.Equal(t, "b8:27:eb:12:34:56", id.Address)
	assert.Equal(t, "MediaEdu-EB123456", id.Label)
}

func TestDeriveStable(t *testing.T) {
	// same hardware address, same identity, every boot
	a := Derive("B8:27:EB:12:34:56")
	b := Derive("b8:27:eb:12:34:56")
	assert.Equal(t, a.Label, b.Label)
}

func TestDeriveShortAddress(t *testing.T) {
	id := Derive("ab:cd")
	assert.Equal(t, "MediaEdu-ABCD", id.Label)
}
