package hub

import (
	"context"
	"time"

	sync "github.com/sasha-s/go-deadlock"
)

// Device is what the hub knows about one ranger
type Device struct {
	Distance  float64
	Threshold float64
	// Time of the last update; zero if the device never reported
	Time time.Time
}

// Store keeps devices by id
type Store interface {
	// Update records a reading, creating the device with the default
	// threshold if it is new, and returns the device as stored
	Update(ctx context.Context, id string, distance float64, at time.Time) (Device, error)
	// SetThreshold sets the threshold of a known device.  It returns false
	// for an unknown device.
	SetThreshold(ctx context.Context, id string, threshold float64) (Device, bool, error)
	Devices(ctx context.Context) (map[string]Device, error)
}

type memStore struct {
	mu               sync.RWMutex
	devices          map[string]Device
	defaultThreshold float64
}

// NewMemStore keeps devices in memory; they are lost on restart
func NewMemStore(defaultThreshold float64) Store {
	return &memStore{
		devices:          make(map[string]Device),
		defaultThreshold: defaultThreshold,
	}
}

func (m *memStore) Update(_ context.Context, id string, distance float64, at time.Time) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, ok := m.devices[id]
	if !ok {
		dev.Threshold = m.defaultThreshold
	}
	dev.Distance = distance
	dev.Time = at
	m.devices[id] = dev
	return dev, nil
}

func (m *memStore) SetThreshold(_ context.Context, id string, threshold float64) (Device, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, ok := m.devices[id]
	if !ok {
		return Device{}, false, nil
	}
	dev.Threshold = threshold
	m.devices[id] = dev
	return dev, true, nil
}

func (m *memStore) Devices(context.Context) (map[string]Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	devices := make(map[string]Device, len(m.devices))
	for id, dev := range m.devices {
		devices[id] = dev
	}
	return devices, nil
}
