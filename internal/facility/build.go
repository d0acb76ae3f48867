package facility

import (
	"context"
	"fmt"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/domain/breach"
)

// buildDevices creates every configured device and links lock groups.
func buildDevices(cfg *config.Config, latch *breach.Latch) (*device.Set, error) {
	set := device.NewSet()

	for _, d := range cfg.Devices {
		dev, err := newDevice(d, latch)
		if err != nil {
			return nil, err
		}

		if err := set.Add(dev); err != nil {
			return nil, fmt.Errorf("register device: %w", err)
		}
	}

	if err := linkLockGroups(cfg, set); err != nil {
		return nil, err
	}

	return set, nil
}

func newDevice(d config.Device, latch *breach.Latch) (device.Device, error) {
	switch d.Kind {
	case device.KindDoor:
		return device.NewDoor(d.ID, latch, device.DoorOptions{
			RequiredPower:         d.RequiredPower,
			OpenOnStart:           d.OpenOnStart,
			LockedOnStart:         d.LockedOnStart,
			LockedOnBreach:        d.LockedOnBreach,
			MaxLockedInteractions: d.MaxLockedInteractions,
		}), nil
	case device.KindCamera:
		return device.NewCamera(d.ID, latch, d.RequiredPower), nil
	case device.KindTurret:
		return device.NewTurret(d.ID, latch, d.RequiredPower), nil
	case device.KindAlarmPanel:
		return device.NewAlarmPanel(d.ID, latch, d.RequiredPower), nil
	case device.KindTriggerVolume:
		return device.NewTriggerVolume(d.ID, latch, d.TriggerOnExit), nil
	case device.KindLightGroup:
		return device.NewLightGroup(d.ID, d.RequiredPower), nil
	case device.KindTerminal:
		return device.NewTerminal(d.ID, d.RequiredPower), nil
	default:
		return nil, fmt.Errorf("%w: device %q has unknown kind %q", config.ErrInvalidTopology, d.ID, d.Kind)
	}
}

// linkLockGroups joins doors both ways, so a group declared on one door
// behaves the same as one declared on every member.
func linkLockGroups(cfg *config.Config, set *device.Set) error {
	type pair struct{ a, b string }

	linked := make(map[pair]struct{})

	for _, d := range cfg.Devices {
		if len(d.LockGroup) == 0 {
			continue
		}

		door, err := lookupDoor(set, d.ID)
		if err != nil {
			return err
		}

		for _, peerID := range d.LockGroup {
			if peerID == d.ID {
				continue
			}

			peer, err := lookupDoor(set, peerID)
			if err != nil {
				return err
			}

			if _, done := linked[pair{d.ID, peerID}]; !done {
				door.JoinLockGroup(peer)
				linked[pair{d.ID, peerID}] = struct{}{}
			}

			if _, done := linked[pair{peerID, d.ID}]; !done {
				peer.JoinLockGroup(door)
				linked[pair{peerID, d.ID}] = struct{}{}
			}
		}
	}

	return nil
}

func lookupDoor(set *device.Set, id string) (*device.Door, error) {
	d, ok := set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, id)
	}

	door, ok := d.(*device.Door)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a door", config.ErrInvalidTopology, id)
	}

	return door, nil
}

// buildLighting collects the configured light groups into a manager.
func buildLighting(cfg *config.Config, set *device.Set, latch *breach.Latch) (*device.LightManager, error) {
	standard, err := lightGroups(set, cfg.Lighting.Standard)
	if err != nil {
		return nil, err
	}

	alarm, err := lightGroups(set, cfg.Lighting.Alarm)
	if err != nil {
		return nil, err
	}

	return device.NewLightManager(latch, standard, alarm), nil
}

func lightGroups(set *device.Set, ids []string) ([]*device.LightGroup, error) {
	groups := make([]*device.LightGroup, 0, len(ids))

	for _, id := range ids {
		d, ok := set.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, id)
		}

		g, ok := d.(*device.LightGroup)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a light group", config.ErrInvalidTopology, id)
		}

		groups = append(groups, g)
	}

	return groups, nil
}

// startAll starts devices, lighting and the network, in that order, so that
// every breach listener is registered before the first grant of power.
func (f *Facility) startAll(ctx context.Context) {
	f.devices.Start(ctx)
	f.lighting.Start(ctx)
	f.network.Start(ctx)
}
