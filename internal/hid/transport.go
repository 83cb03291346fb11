package hid

import (
	"errors"
	"time"

	gohid "github.com/sstallion/go-hid"
)

// Transport abstracts the blocking device handle so the device worker can
// be exercised with an in-memory fake in tests, mirroring the teacher's
// use of small interfaces (e.g. internal/hypr.Controller) to keep
// OS-facing code testable.
type Transport interface {
	Write(report []byte) error
	ReadTimeout(buf []byte, timeout time.Duration) (int, error)
	Close() error
	Serial() string
}

// ErrDeviceNotFound is returned by Open when no matching device is present.
var ErrDeviceNotFound = errors.New("hid: device not found")

// goHidTransport wraps github.com/sstallion/go-hid.
type goHidTransport struct {
	dev    *gohid.Device
	serial string
}

// Open enumerates devices matching VendorID/ProductID, optionally
// constrained to a specific serial number, and opens the first match.
func Open(serial string) (Transport, error) {
	var path string
	found := false

	err := gohid.Enumerate(VendorID, ProductID, func(info *gohid.DeviceInfo) error {
		if found {
			return nil
		}
		if serial != "" && info.SerialNbr != serial {
			return nil
		}
		path = info.Path
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrDeviceNotFound
	}

	dev, err := gohid.OpenPath(path)
	if err != nil {
		return nil, err
	}

	s, _ := dev.GetSerialNbr()
	return &goHidTransport{dev: dev, serial: s}, nil
}

func (t *goHidTransport) Write(report []byte) error {
	// Report-ID 0 devices require the ID byte to be prepended on write.
	framed := make([]byte, len(report)+1)
	framed[0] = 0x00
	copy(framed[1:], report)
	_, err := t.dev.Write(framed)
	return err
}

func (t *goHidTransport) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	return t.dev.ReadWithTimeout(buf, timeout)
}

func (t *goHidTransport) Close() error { return t.dev.Close() }

func (t *goHidTransport) Serial() string { return t.serial }
