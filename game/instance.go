package game

import "math"

// StateKind is the coarse control state of an instance.
type StateKind string

const (
	Actionable StateKind = "actionable"
	Acting     StateKind = "acting"
	HitStun    StateKind = "hit_stun"
)

// ActionState is Actionable, Acting, or HitStun with Remaining ticks.
type ActionState struct {
	Kind      StateKind `json:"kind" msgpack:"kind"`
	Remaining uint32    `json:"remaining,omitempty" msgpack:"remaining,omitempty"`
}

// AnimationState is the current action with a frame index and the number of
// ticks already spent on that frame.
type AnimationState struct {
	Action Action `json:"action" msgpack:"action"`
	Frame  int    `json:"frame" msgpack:"frame"`
	Hold   uint8  `json:"hold" msgpack:"hold"`
}

// Rules are the world-wide constants the state machine runs with.
type Rules struct {
	Step     float64 // fixed horizontal displacement per tick of held direction
	Gravity  float64 // vertical velocity lost per tick per unit of weight
	Friction float64 // grounded horizontal deceleration per unit of acceleration
}

func DefaultRules() Rules {
	return Rules{Step: 0.05, Gravity: 0.01, Friction: 0.001}
}

// CharacterInstance is a live entity in the world. Character is a catalog id,
// looked up on every tick.
type CharacterInstance struct {
	Character          uint32         `json:"character" msgpack:"character"`
	ObjectID           uint32         `json:"object_id" msgpack:"object_id"`
	Position           Vec2           `json:"position" msgpack:"position"`
	Velocity           Vec2           `json:"velocity" msgpack:"velocity"`
	Direction          Direction      `json:"direction" msgpack:"direction"`
	Airborne           bool           `json:"airborn" msgpack:"airborn"`
	Vulnerability      Vulnerability  `json:"vulnerability" msgpack:"vulnerability"`
	VulnerabilityTicks uint32         `json:"vulnerability_ticks,omitempty" msgpack:"vulnerability_ticks,omitempty"`
	State              ActionState    `json:"state" msgpack:"state"`
	Damage             float64        `json:"damage" msgpack:"damage"`
	AirJumps           uint32         `json:"air_jumps" msgpack:"air_jumps"`
	Animation          AnimationState `json:"animation" msgpack:"animation"`

	// Input is copied from the controlling player every tick and never sent.
	Input Input `json:"-" msgpack:"-"`

	// victims already struck by the current action
	hits map[uint32]struct{}
}

// NewInstance creates an airborne, idle, vulnerable instance at the origin.
func NewInstance(character, id uint32) *CharacterInstance {
	return &CharacterInstance{
		Character:     character,
		ObjectID:      id,
		Direction:     DirRight,
		Airborne:      true,
		Vulnerability: Vulnerable,
		State:         ActionState{Kind: Actionable},
		Animation:     AnimationState{Action: Idling},
	}
}

// Reset puts position, velocity, control and animation back to their initial
// values. Identity, facing and accumulated damage are kept.
func (ci *CharacterInstance) Reset() {
	ci.Position = Vec2{}
	ci.Velocity = Vec2{}
	ci.State = ActionState{Kind: Actionable}
	ci.Animation = AnimationState{Action: Idling}
	ci.hits = nil
}

// Update advances the instance by exactly one tick.
func (ci *CharacterInstance) Update(sheet *Character, rules Rules) {
	ci.tickTimers(sheet)
	ci.handleInput(sheet)
	ci.walk(rules)
	ci.integrate(sheet, rules)
	ci.settle(sheet)
	ci.advanceAnimation(sheet)
}

func (ci *CharacterInstance) tickTimers(sheet *Character) {
	if ci.State.Kind == HitStun {
		if ci.State.Remaining > 0 {
			ci.State.Remaining--
		}
		if ci.State.Remaining == 0 {
			ci.State = ActionState{Kind: Actionable}
			if !ci.resting() {
				ci.startAction(sheet, ci.restAction(sheet))
			}
		}
	}
	if ci.VulnerabilityTicks > 0 {
		ci.VulnerabilityTicks--
		if ci.VulnerabilityTicks == 0 {
			ci.Vulnerability = Vulnerable
		}
	}
}

func (ci *CharacterInstance) handleInput(sheet *Character) {
	if ci.State.Kind != Actionable {
		return
	}
	in := ci.Input
	switch {
	case in.LightAttack:
		ci.tryAct(sheet, pick(ci.Airborne, AirbornLightAttack, LightAttack))
	case in.HeavyAttack:
		ci.tryAct(sheet, pick(ci.Airborne, AirbornHeavyAttack, HeavyAttack))
	case in.Jump:
		if ci.Airborne && ci.AirJumps >= sheet.AirJumpCount {
			return
		}
		if ci.tryAct(sheet, Jump) && ci.Airborne {
			ci.AirJumps++
		}
	}
}

func pick(cond bool, a, b Action) Action {
	if cond {
		return a
	}
	return b
}

// tryAct starts act when the sheet has frames for it.
func (ci *CharacterInstance) tryAct(sheet *Character, act Action) bool {
	if len(sheet.Animations.Frames(act)) == 0 {
		return false
	}
	ci.State = ActionState{Kind: Acting}
	ci.startAction(sheet, act)
	return true
}

// walk applies held direction as a fixed displacement, not a velocity.
func (ci *CharacterInstance) walk(rules Rules) {
	if ci.State.Kind == HitStun || ci.Input.Dir == DirNone {
		return
	}
	ci.Direction = ci.Input.Dir
	ci.Position.X += rules.Step * float64(ci.Input.Dir.Sign())
}

func (ci *CharacterInstance) integrate(sheet *Character, rules Rules) {
	if !ci.Airborne && (ci.Velocity.Y > 0 || ci.Position.Y > 0) {
		ci.Airborne = true
	}
	if ci.Airborne {
		ci.Velocity.Y -= rules.Gravity * sheet.Weight
	} else if decel := sheet.Acceleration * rules.Friction; math.Abs(ci.Velocity.X) <= decel {
		ci.Velocity.X = 0
	} else {
		ci.Velocity.X -= math.Copysign(decel, ci.Velocity.X)
	}
	if sheet.MaxSpeed > 0 && math.Abs(ci.Velocity.X) > sheet.MaxSpeed {
		ci.Velocity.X = math.Copysign(sheet.MaxSpeed, ci.Velocity.X)
	}

	ci.Position = ci.Position.Add(ci.Velocity)
	if ci.Position.Y <= 0 && ci.Velocity.Y <= 0 {
		ci.Position.Y = 0
		ci.Velocity.Y = 0
		if ci.Airborne {
			ci.land(sheet)
		}
	}
}

func (ci *CharacterInstance) land(sheet *Character) {
	ci.Airborne = false
	ci.AirJumps = 0
	if !ci.Animation.Action.airborne() {
		return
	}
	if ci.State.Kind == Acting {
		ci.State = ActionState{Kind: Actionable}
	}
	ci.startAction(sheet, Idling)
}

// settle keeps a free airborne instance on its rising or falling sequence.
func (ci *CharacterInstance) settle(sheet *Character) {
	if ci.State.Kind != Actionable || !ci.Airborne {
		return
	}
	want := pick(ci.Velocity.Y > 0, Rising, Falling)
	if ci.Animation.Action != want && len(sheet.Animations.Frames(want)) > 0 {
		ci.startAction(sheet, want)
	}
}

func (ci *CharacterInstance) resting() bool {
	switch ci.Animation.Action {
	case Idling, Running, Rising, Falling:
		return true
	}
	return false
}

func (ci *CharacterInstance) restAction(sheet *Character) Action {
	if !ci.Airborne {
		return Idling
	}
	want := pick(ci.Velocity.Y > 0, Rising, Falling)
	if len(sheet.Animations.Frames(want)) == 0 {
		return Idling
	}
	return want
}

func (ci *CharacterInstance) startAction(sheet *Character, act Action) {
	ci.Animation = AnimationState{Action: act}
	ci.hits = nil
	ci.enterFrame(sheet)
}

func (ci *CharacterInstance) enterFrame(sheet *Character) {
	f, ok := sheet.Frame(ci.Animation.Action, ci.Animation.Frame)
	if !ok {
		return
	}
	for _, ev := range f.Events {
		ev.applySelf(ci)
	}
}

// advanceAnimation counts the hold of the current frame and moves to the next
// one once the hold is used up, wrapping to 0 at the end of the sequence. A
// finished Acting sequence hands control back.
func (ci *CharacterInstance) advanceAnimation(sheet *Character) {
	frames := sheet.Animations.Frames(ci.Animation.Action)
	if len(frames) == 0 {
		return
	}
	anim := &ci.Animation
	if anim.Frame >= len(frames) || anim.Frame < 0 {
		anim.Frame, anim.Hold = 0, 0
	}
	if anim.Hold < frames[anim.Frame].Hold {
		anim.Hold++
		return
	}
	anim.Hold = 0
	if anim.Frame+1 < len(frames) {
		anim.Frame++
		ci.enterFrame(sheet)
		return
	}
	if ci.State.Kind == Acting {
		ci.State = ActionState{Kind: Actionable}
		ci.startAction(sheet, ci.restAction(sheet))
		return
	}
	anim.Frame = 0
	ci.hits = nil
	ci.enterFrame(sheet)
}

// interrupt drops the current action for the rest sequence. The control
// state is left alone.
func (ci *CharacterInstance) interrupt(sheet *Character) {
	if ci.resting() {
		ci.hits = nil
		return
	}
	ci.startAction(sheet, ci.restAction(sheet))
}

// placedHurt returns the world-placed hurt circles of the current frame.
func (ci *CharacterInstance) placedHurt(sheet *Character) []HurtCircle {
	f, ok := sheet.Frame(ci.Animation.Action, ci.Animation.Frame)
	if !ok {
		return nil
	}
	out := make([]HurtCircle, len(f.Hurt))
	for i, h := range f.Hurt {
		out[i] = HurtCircle{Shape: h.Shape.At(ci.Position, ci.Direction), State: h.State}
	}
	return out
}

// placedHit returns the world-placed hit circles of the current frame.
func (ci *CharacterInstance) placedHit(sheet *Character) []HitCircle {
	f, ok := sheet.Frame(ci.Animation.Action, ci.Animation.Frame)
	if !ok {
		return nil
	}
	out := make([]HitCircle, len(f.Hit))
	for i, h := range f.Hit {
		out[i] = HitCircle{Shape: h.Shape.At(ci.Position, ci.Direction), Events: h.Events}
	}
	return out
}

// markHit records victim for the current action and reports whether it was new.
func (ci *CharacterInstance) markHit(victim uint32) bool {
	if _, ok := ci.hits[victim]; ok {
		return false
	}
	if ci.hits == nil {
		ci.hits = make(map[uint32]struct{})
	}
	ci.hits[victim] = struct{}{}
	return true
}
