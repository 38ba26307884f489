package meter

import (
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// Factory identity of this instrument family.
const (
	Vendor   = "CHARGELAB"
	Model    = "QBM-1"
	Firmware = "0.3.1"
)

const fallbackSerial = "0000000000000000"

// Identity is what *IDN? reports: vendor, model, serial and firmware
// revision, comma-joined per the usual instrument convention.
type Identity struct {
	Vendor   string
	Model    string
	Serial   string
	Firmware string
}

// DefaultIdentity derives the serial from the host machine id so two
// instances on different hosts never report the same unit. When the
// machine id is unavailable the serial falls back to all zeroes.
func DefaultIdentity() Identity {
	serial, err := machineid.ProtectedID("chargelab-qbm")
	if err != nil || serial == "" {
		glog.Warningf("machine id unavailable, using fallback serial: %v", err)
		serial = fallbackSerial
	}
	serial = strings.ToUpper(serial)
	if len(serial) > 16 {
		serial = serial[:16]
	}
	return Identity{
		Vendor:   Vendor,
		Model:    Model,
		Serial:   serial,
		Firmware: Firmware,
	}
}

// String formats the identity as the *IDN? payload, without the
// terminating newline.
func (id Identity) String() string {
	return id.Vendor + "," + id.Model + "," + id.Serial + "," + id.Firmware
}
