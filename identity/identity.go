package identity

import "strings"

// Identity is derived once at boot from the radio hardware address and
// never persisted: the same hardware always yields the same identity.
type Identity struct {
	// Address is the canonical "aa:bb:cc:dd:ee:ff" form.
	Address string
	// Label names the node on portals and upload topics.
	Label string
}

const labelPrefix = "MediaEdu-"

// Derive builds the identity from a hardware address string. The label is
// the prefix plus the last 8 hex characters of the address, uppercased, so
// nodes sharing an OUI still get distinct labels.
func Derive(hwaddr string) Identity {
	addr := strings.ToLower(strings.TrimSpace(hwaddr))

	hex := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.':
			return -1
		}
		return r
	}, addr)
	if len(hex) > 8 {
		hex = hex[len(hex)-8:]
	}

	return Identity{
		Address: addr,
		Label:   labelPrefix + strings.ToUpper(hex),
	}
}
