package game

// Vulnerability governs whether hit circles can affect hurt circles.
type Vulnerability string

const (
	Vulnerable  Vulnerability = "vulnerable"
	Invincible  Vulnerability = "invincible"
	Untouchable Vulnerability = "untouchable"
)

// EventKind tags a FrameEvent.
type EventKind string

const (
	EventSetVelocity          EventKind = "set_velocity"
	EventAddVelocity          EventKind = "add_velocity"
	EventSetVelocityFromPoint EventKind = "set_velocity_from_point"
	EventAddVelocityFromPoint EventKind = "add_velocity_from_point"
	EventMoveTo               EventKind = "move_to"
	EventDealDamage           EventKind = "deal_damage"
	EventApplyHitStun         EventKind = "apply_hit_stun"
	EventChangeVulnerability  EventKind = "change_vulnerability"
)

// FrameEvent is a declarative effect attached to an animation frame or to a
// hit circle. Which fields are meaningful depends on Kind.
type FrameEvent struct {
	Kind          EventKind     `json:"kind" msgpack:"kind"`
	Vector        Vec2          `json:"vector,omitempty" msgpack:"vector,omitempty"`
	Magnitude     float64       `json:"magnitude,omitempty" msgpack:"magnitude,omitempty"`
	Amount        float64       `json:"amount,omitempty" msgpack:"amount,omitempty"`
	Duration      uint32        `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Vulnerability Vulnerability `json:"vulnerability,omitempty" msgpack:"vulnerability,omitempty"`
}

// apply mutates the target instance. facing orients the directional vectors
// and point is the world position the *FromPoint kinds push away from.
func (ev FrameEvent) apply(ci *CharacterInstance, facing Direction, point Vec2) {
	switch ev.Kind {
	case EventSetVelocity:
		ci.Velocity = ev.Vector.Mirror(facing)
	case EventAddVelocity:
		ci.Velocity = ci.Velocity.Add(ev.Vector.Mirror(facing))
	case EventSetVelocityFromPoint:
		ci.Velocity = ci.Position.Sub(point).Unit().Scale(ev.Magnitude)
	case EventAddVelocityFromPoint:
		ci.Velocity = ci.Velocity.Add(ci.Position.Sub(point).Unit().Scale(ev.Magnitude))
	case EventMoveTo:
		ci.Position = ev.Vector
	case EventDealDamage:
		ci.Damage += ev.Amount
	case EventApplyHitStun:
		if ev.Duration > 0 {
			ci.State = ActionState{Kind: HitStun, Remaining: ev.Duration}
		}
	case EventChangeVulnerability:
		if ev.Vulnerability != "" {
			ci.Vulnerability = ev.Vulnerability
			ci.VulnerabilityTicks = ev.Duration
		}
	}
}

// applySelf runs a frame-level event on the instance that owns the frame. For
// the *FromPoint kinds Vector is a local offset mirrored by facing.
func (ev FrameEvent) applySelf(ci *CharacterInstance) {
	point := ci.Position.Add(ev.Vector.Mirror(ci.Direction))
	ev.apply(ci, ci.Direction, point)
}
