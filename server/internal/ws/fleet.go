package ws

import (
	"context"
	"time"

	"github.com/wavealert360/wavealert360/server/internal/history"
	"github.com/wavealert360/wavealert360/server/internal/registry"
)

// DeviceLister lists the registered fleet. Satisfied by *registry.Registry.
type DeviceLister interface {
	List(ctx context.Context) ([]registry.Device, error)
}

// TransitionLog queries recent level transitions. Satisfied by
// *history.Store; nil leaves the level columns empty.
type TransitionLog interface {
	Recent(ctx context.Context, mac string, limit int) ([]history.Entry, error)
}

// FleetSource builds fleet snapshots from the registry and the transition log.
type FleetSource struct {
	registry DeviceLister
	log      TransitionLog

	now func() time.Time
}

// NewFleetSource wires a FleetSource. log may be nil.
func NewFleetSource(reg DeviceLister, log TransitionLog) *FleetSource {
	return &FleetSource{registry: reg, log: log, now: time.Now}
}

// FleetSnapshot implements SnapshotSource.
func (s *FleetSource) FleetSnapshot(ctx context.Context) (FleetSnapshot, error) {
	devices, err := s.registry.List(ctx)
	if err != nil {
		return FleetSnapshot{}, err
	}

	statuses := make([]DeviceStatus, 0, len(devices))
	for _, d := range devices {
		st := DeviceStatus{
			MACAddress:    d.MACAddress,
			DisplayName:   d.DisplayName,
			LocationName:  d.LocationName,
			OperatingMode: d.OperatingMode,
		}
		if s.log != nil {
			// Last transition doubles as last-seen: devices only show up in
			// the log when they poll.
			if entries, err := s.log.Recent(ctx, d.MACAddress, 1); err == nil && len(entries) > 0 {
				st.LastLevel = entries[0].Level
				st.LastSeen = entries[0].RecordedAt.UTC().Format(time.RFC3339)
			}
		}
		statuses = append(statuses, st)
	}

	return FleetSnapshot{
		Devices:     statuses,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}
