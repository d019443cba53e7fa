package game

// Action names an animation sequence of a character definition.
type Action string

const (
	Idling             Action = "idling"
	Running            Action = "running"
	Jump               Action = "jump"
	Rising             Action = "rising"
	Falling            Action = "falling"
	LightAttack        Action = "light_attack"
	HeavyAttack        Action = "heavy_attack"
	AirbornLightAttack Action = "airborn_light_attack"
	AirbornHeavyAttack Action = "airborn_heavy_attack"
)

// Actions lists every action in declaration order.
var Actions = []Action{
	Idling, Running, Jump, Rising, Falling,
	LightAttack, HeavyAttack, AirbornLightAttack, AirbornHeavyAttack,
}

// airborne reports whether the action only makes sense off the ground.
func (a Action) airborne() bool {
	switch a {
	case Jump, Rising, Falling, AirbornLightAttack, AirbornHeavyAttack:
		return true
	}
	return false
}

// HurtCircle is a region of the body that can be hit.
type HurtCircle struct {
	Shape Circle        `json:"shape" msgpack:"shape"`
	State Vulnerability `json:"state" msgpack:"state"`
}

// HitCircle is an offensive region; Events are applied to whoever it touches.
type HitCircle struct {
	Shape  Circle       `json:"shape" msgpack:"shape"`
	Events []FrameEvent `json:"events" msgpack:"events"`
}

// Sprite points a renderer at a region of an image. The server never reads it.
type Sprite struct {
	Path       string    `json:"path" msgpack:"path"`
	Offset     Vec2      `json:"offset" msgpack:"offset"`
	Scale      float64   `json:"scale" msgpack:"scale"`
	Position   [2]uint32 `json:"position" msgpack:"position"`
	Dimensions [2]uint32 `json:"dimensions" msgpack:"dimensions"`
}

// AnimationFrame is one step of an action. Hold is the number of ticks the
// frame stays current before the next one.
type AnimationFrame struct {
	Hurt   []HurtCircle `json:"hurt" msgpack:"hurt"`
	Hit    []HitCircle  `json:"hit" msgpack:"hit"`
	Events []FrameEvent `json:"events" msgpack:"events"`
	Sprite Sprite       `json:"sprite" msgpack:"sprite"`
	Hold   uint8        `json:"hold" msgpack:"hold"`
}

// Animations holds the frame sequence for every action.
type Animations struct {
	Idling             []AnimationFrame `json:"idling" msgpack:"idling"`
	Running            []AnimationFrame `json:"running" msgpack:"running"`
	Jump               []AnimationFrame `json:"jump" msgpack:"jump"`
	Rising             []AnimationFrame `json:"rising" msgpack:"rising"`
	Falling            []AnimationFrame `json:"falling" msgpack:"falling"`
	LightAttack        []AnimationFrame `json:"light_attack" msgpack:"light_attack"`
	HeavyAttack        []AnimationFrame `json:"heavy_attack" msgpack:"heavy_attack"`
	AirbornLightAttack []AnimationFrame `json:"airborn_light_attack" msgpack:"airborn_light_attack"`
	AirbornHeavyAttack []AnimationFrame `json:"airborn_heavy_attack" msgpack:"airborn_heavy_attack"`
}

// Frames returns the sequence for a. Unknown actions have no frames.
func (a *Animations) Frames(act Action) []AnimationFrame {
	switch act {
	case Idling:
		return a.Idling
	case Running:
		return a.Running
	case Jump:
		return a.Jump
	case Rising:
		return a.Rising
	case Falling:
		return a.Falling
	case LightAttack:
		return a.LightAttack
	case HeavyAttack:
		return a.HeavyAttack
	case AirbornLightAttack:
		return a.AirbornLightAttack
	case AirbornHeavyAttack:
		return a.AirbornHeavyAttack
	}
	return nil
}

// Character is an immutable character sheet shared by every instance that
// references its id.
type Character struct {
	ID           uint32     `json:"id" msgpack:"id"`
	Name         string     `json:"name" msgpack:"name"`
	Weight       float64    `json:"weight" msgpack:"weight"`
	AirJumpCount uint32     `json:"air_jump_count" msgpack:"air_jump_count"`
	Acceleration float64    `json:"acceleration" msgpack:"acceleration"`
	MaxSpeed     float64    `json:"max_speed" msgpack:"max_speed"`
	Collider     Circle     `json:"collider" msgpack:"collider"`
	Animations   Animations `json:"animations" msgpack:"animations"`
}

// Frame returns the frame at idx of act, if it exists.
func (c *Character) Frame(act Action, idx int) (*AnimationFrame, bool) {
	frames := c.Animations.Frames(act)
	if idx < 0 || idx >= len(frames) {
		return nil, false
	}
	return &frames[idx], true
}

// DefaultCharacter is the built-in sheet registered under id 0.
func DefaultCharacter() *Character {
	return &Character{
		ID:           0,
		Name:         "default",
		Weight:       1,
		AirJumpCount: 1,
		Acceleration: 10,
		MaxSpeed:     5,
		Collider:     Circle{Radius: 0.3, Position: Vec2{Y: 0.3}},
		Animations: Animations{
			Idling: []AnimationFrame{{
				Hurt:   []HurtCircle{{Shape: Circle{Radius: 0.5, Position: Vec2{Y: 0.5}}, State: Vulnerable}},
				Sprite: Sprite{Path: "./assets/opengl.png", Scale: 1, Dimensions: [2]uint32{600, 300}},
				Hold:   128,
			}},
		},
	}
}
