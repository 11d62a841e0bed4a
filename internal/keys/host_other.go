//go:build !unix

package keys

// Host is unavailable on this platform.
type Host struct{}

// NewHost returns a host whose Start always fails.
func NewHost(*Mapper) *Host {
	return &Host{}
}

// Start reports ErrUnsupported.
func (h *Host) Start() error {
	return ErrUnsupported
}

// Stop does nothing.
func (h *Host) Stop() {}
