package facility

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/facility-breach/internal/device"
	domain "github.com/oshokin/facility-breach/internal/facility"
)

// Field names used in request and response documents.
const (
	FieldGrid      = "grid"
	FieldTarget    = "target"
	FieldDevice    = "device"
	FieldAction    = "action"
	FieldOperator  = "operator"
	FieldChanged   = "changed"
	FieldTriggered = "triggered"
	FieldAccepted  = "accepted"
)

// StatusToStruct encodes a facility snapshot.
func StatusToStruct(s domain.Status) (*structpb.Struct, error) {
	grids := make([]any, 0, len(s.Grids))

	for _, g := range s.Grids {
		subsystems := make([]any, 0, len(g.Subsystems))

		for _, sub := range g.Subsystems {
			entities := make([]any, 0, len(sub.Entities))
			for _, id := range sub.Entities {
				entities = append(entities, id)
			}

			subsystems = append(subsystems, map[string]any{
				"id":       sub.ID,
				"active":   sub.Active,
				"usage":    sub.Usage,
				"capacity": sub.Capacity,
				"entities": entities,
			})
		}

		grids = append(grids, map[string]any{
			"id":         g.ID,
			"active":     g.Active,
			"subsystems": subsystems,
		})
	}

	devices := make([]any, 0, len(s.Devices))
	for _, d := range s.Devices {
		devices = append(devices, map[string]any{
			"id":    d.ID,
			"kind":  string(d.Kind),
			"state": d.State,
		})
	}

	doc := map[string]any{
		"breached":         s.Breached,
		"breach_state":     s.BreachState,
		"listeners":        s.Listeners,
		"escape_running":   s.EscapeRunning,
		"escape_remaining": s.EscapeRemaining.Seconds(),
		"escape_closed":    s.EscapeClosed,
		"grids":            grids,
		"devices":          devices,
	}

	if !s.TriggeredAt.IsZero() {
		doc["triggered_at"] = s.TriggeredAt.UTC().Format(time.RFC3339Nano)
	}

	out, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	return out, nil
}

// StatusFromStruct decodes a snapshot produced by StatusToStruct. Numbers in
// device states come back as float64.
func StatusFromStruct(in *structpb.Struct) (domain.Status, error) {
	doc := in.AsMap()

	s := domain.Status{
		Breached:        boolOf(doc["breached"]),
		BreachState:     stringOf(doc["breach_state"]),
		Listeners:       int(floatOf(doc["listeners"])),
		EscapeRunning:   boolOf(doc["escape_running"]),
		EscapeRemaining: time.Duration(floatOf(doc["escape_remaining"]) * float64(time.Second)),
		EscapeClosed:    boolOf(doc["escape_closed"]),
	}

	if raw := stringOf(doc["triggered_at"]); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Status{}, fmt.Errorf("decode triggered_at: %w", err)
		}

		s.TriggeredAt = at
	}

	for _, rawGrid := range listOf(doc["grids"]) {
		g := mapOf(rawGrid)
		gs := domain.GridStatus{ID: stringOf(g["id"]), Active: boolOf(g["active"])}

		for _, rawSub := range listOf(g["subsystems"]) {
			sub := mapOf(rawSub)
			ss := domain.SubsystemStatus{
				ID:       stringOf(sub["id"]),
				Active:   boolOf(sub["active"]),
				Usage:    floatOf(sub["usage"]),
				Capacity: floatOf(sub["capacity"]),
			}

			for _, e := range listOf(sub["entities"]) {
				ss.Entities = append(ss.Entities, stringOf(e))
			}

			gs.Subsystems = append(gs.Subsystems, ss)
		}

		s.Grids = append(s.Grids, gs)
	}

	for _, rawDevice := range listOf(doc["devices"]) {
		d := mapOf(rawDevice)
		s.Devices = append(s.Devices, domain.DeviceStatus{
			ID:    stringOf(d["id"]),
			Kind:  device.Kind(stringOf(d["kind"])),
			State: mapOf(d["state"]),
		})
	}

	return s, nil
}

func boolOf(v any) bool {
	b, _ := v.(bool)

	return b
}

func stringOf(v any) string {
	s, _ := v.(string)

	return s
}

func floatOf(v any) float64 {
	f, _ := v.(float64)

	return f
}

func listOf(v any) []any {
	l, _ := v.([]any)

	return l
}

func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)

	return m
}
