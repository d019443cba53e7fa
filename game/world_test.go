package game

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestInstanceIDsAreNeverReused(t *testing.T) {
	m := NewMap()
	a := m.NewInstance(0)
	b := m.NewInstance(0)
	if !m.Remove(a) {
		t.Fatalf("expected instance %d to be removed", a)
	}
	c := m.NewInstance(1)
	if a == b || c == a || c == b {
		t.Fatalf("ids must be unique, got %d %d %d", a, b, c)
	}
	for id := range m.Characters {
		if id >= m.NextID {
			t.Fatalf("instance id %d not below next id %d", id, m.NextID)
		}
	}
	if m.Remove(a) {
		t.Fatalf("removing twice must report false")
	}
}

func TestRebindResetsInPlace(t *testing.T) {
	m := NewMap()
	id := m.NewInstance(0)
	m.Characters[id].Position = Vec2{X: 2}
	if !m.Rebind(id, 3) {
		t.Fatalf("rebind failed")
	}
	ci := m.Characters[id]
	if ci.Character != 3 || ci.ObjectID != id || ci.Position != (Vec2{}) {
		t.Fatalf("unexpected instance after rebind: %+v", ci)
	}
	if m.Rebind(99, 1) {
		t.Fatalf("rebinding a missing instance must fail")
	}
}

func TestUpdateSkipsUnknownDefinitions(t *testing.T) {
	m := NewMap()
	known := m.NewInstance(0)
	orphan := m.NewInstance(42)
	m.SetInputs(map[uint32]Input{known: {Dir: DirRight}, orphan: {Dir: DirRight}, 77: {Dir: DirLeft}})

	orphans := m.Update(Catalog{0: DefaultCharacter()}, DefaultRules())
	if len(orphans) != 1 || orphans[0] != orphan {
		t.Fatalf("expected orphan %d reported, got %v", orphan, orphans)
	}
	if m.Characters[orphan].Position.X != 0 {
		t.Fatalf("orphan must not move")
	}
	if m.Characters[known].Position.X == 0 {
		t.Fatalf("known instance must move")
	}
}

func strikerSheet() *Character {
	sheet := DefaultCharacter()
	sheet.ID = 2
	sheet.Animations.LightAttack = []AnimationFrame{{
		Hold: 5,
		Hit: []HitCircle{{
			Shape: Circle{Radius: 0.5, Position: Vec2{X: 0.5, Y: 0.5}},
			Events: []FrameEvent{
				{Kind: EventDealDamage, Amount: 7},
				{Kind: EventApplyHitStun, Duration: 10},
				{Kind: EventSetVelocity, Vector: Vec2{X: 0.2}},
			},
		}},
	}}
	return sheet
}

func TestHitAppliesEventsOncePerAction(t *testing.T) {
	catalog := Catalog{0: DefaultCharacter(), 2: strikerSheet()}
	m := NewMap()
	attacker := m.NewInstance(2)
	victim := m.NewInstance(0)
	m.Characters[attacker].Airborne = false
	m.Characters[victim].Position = Vec2{X: 0.6}

	m.SetInputs(map[uint32]Input{attacker: {LightAttack: true}})
	m.Update(catalog, DefaultRules())

	v := m.Characters[victim]
	if v.Damage != 7 {
		t.Fatalf("expected 7 damage, got %f", v.Damage)
	}
	if v.State.Kind != HitStun {
		t.Fatalf("expected hit stun, got %+v", v.State)
	}
	if v.Velocity.X <= 0 {
		t.Fatalf("expected knockback in attacker's facing, got %+v", v.Velocity)
	}

	m.SetInputs(map[uint32]Input{attacker: {}})
	m.Update(catalog, DefaultRules())
	if v.Damage != 7 {
		t.Fatalf("same action must not hit twice, damage=%f", v.Damage)
	}
}

func TestInvincibleAndUntouchableVictims(t *testing.T) {
	catalog := Catalog{0: DefaultCharacter(), 2: strikerSheet()}
	for _, state := range []Vulnerability{Invincible, Untouchable} {
		m := NewMap()
		attacker := m.NewInstance(2)
		victim := m.NewInstance(0)
		m.Characters[attacker].Airborne = false
		v := m.Characters[victim]
		v.Position = Vec2{X: 0.6}
		v.Vulnerability = state

		m.SetInputs(map[uint32]Input{attacker: {LightAttack: true}})
		m.Update(catalog, DefaultRules())
		if v.Damage != 0 || v.State.Kind == HitStun {
			t.Fatalf("%s victim must not be affected, got %+v", state, v)
		}
		_, consumed := m.Characters[attacker].hits[victim]
		if consumed != (state == Invincible) {
			t.Fatalf("%s: unexpected hit bookkeeping %v", state, consumed)
		}
	}
}

func TestMissDoesNothing(t *testing.T) {
	catalog := Catalog{0: DefaultCharacter(), 2: strikerSheet()}
	m := NewMap()
	attacker := m.NewInstance(2)
	victim := m.NewInstance(0)
	m.Characters[attacker].Airborne = false
	m.Characters[victim].Position = Vec2{X: -5}

	m.SetInputs(map[uint32]Input{attacker: {LightAttack: true}})
	m.Update(catalog, DefaultRules())
	if m.Characters[victim].Damage != 0 {
		t.Fatalf("out of range victim was hit")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	m := NewMap()
	m.Counter = 12
	a := m.NewInstance(0)
	m.NewInstance(1)
	m.Characters[a].Position = Vec2{X: 1.5, Y: 0.25}
	m.Characters[a].Direction = DirLeft
	m.Characters[a].State = ActionState{Kind: HitStun, Remaining: 3}
	m.Characters[a].Animation = AnimationState{Action: LightAttack, Frame: 2, Hold: 1}

	snap := m.Clone()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Map
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(snap, &back) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", snap, &back)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMap()
	id := m.NewInstance(0)
	m.Characters[id].Input = Input{Dir: DirLeft, Jump: true}

	snap := m.Clone()
	m.Characters[id].Position.X = 9
	m.Remove(id)

	ci, ok := snap.Characters[id]
	if !ok || ci.Position.X != 0 {
		t.Fatalf("clone must not follow the source, got %+v", ci)
	}
	if ci.Input != (Input{}) {
		t.Fatalf("clone must drop transient input, got %+v", ci.Input)
	}
}

func TestDirectionJSON(t *testing.T) {
	cases := []struct {
		in   Input
		want string
	}{
		{Input{}, `{"dir":null,"light_attack":false,"heavy_attack":false,"special":false,"jump":false}`},
		{Input{Dir: DirLeft, Jump: true}, `{"dir":"Left","light_attack":false,"heavy_attack":false,"special":false,"jump":true}`},
	}
	for _, tc := range cases {
		raw, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(raw) != tc.want {
			t.Fatalf("got %s want %s", raw, tc.want)
		}
		var back Input
		if err := json.Unmarshal(raw, &back); err != nil || back != tc.in {
			t.Fatalf("round trip: %+v err %v", back, err)
		}
	}

	var in Input
	if err := json.Unmarshal([]byte(`{"dir":"Up"}`), &in); err == nil {
		t.Fatalf("expected unknown direction to fail")
	}
}

// windupSheet swings on its second frame only.
func windupSheet() *Character {
	sheet := DefaultCharacter()
	sheet.ID = 3
	body := []HurtCircle{{Shape: Circle{Radius: 0.5, Position: Vec2{Y: 0.5}}, State: Vulnerable}}
	sheet.Animations.LightAttack = []AnimationFrame{
		{Hold: 1, Hurt: body},
		{
			Hold: 5,
			Hurt: body,
			Hit: []HitCircle{{
				Shape:  Circle{Radius: 0.5, Position: Vec2{X: 0.5, Y: 0.5}},
				Events: []FrameEvent{{Kind: EventDealDamage, Amount: 5}},
			}},
		},
	}
	return sheet
}

func TestHitStunCancelsVictimAttack(t *testing.T) {
	catalog := Catalog{0: DefaultCharacter(), 2: strikerSheet(), 3: windupSheet()}
	m := NewMap()
	striker := m.NewInstance(2)
	windup := m.NewInstance(3)
	a, b := m.Characters[striker], m.Characters[windup]
	a.Airborne, b.Airborne = false, false
	b.Position = Vec2{X: 0.6}
	b.Direction = DirLeft

	m.SetInputs(map[uint32]Input{striker: {LightAttack: true}, windup: {LightAttack: true}})
	m.Update(catalog, DefaultRules())
	if b.State.Kind != HitStun {
		t.Fatalf("expected the windup to be stunned, got %+v", b.State)
	}
	if b.Animation.Action != Idling {
		t.Fatalf("stun must cancel the attack, animation %+v", b.Animation)
	}

	m.SetInputs(map[uint32]Input{striker: {}, windup: {}})
	for i := 0; i < 5; i++ {
		m.Update(catalog, DefaultRules())
		if b.State.Kind == HitStun && b.Animation.Action == LightAttack {
			t.Fatalf("tick %d: stunned instance is still attacking", i+2)
		}
	}
	if a.Damage != 0 {
		t.Fatalf("a stunned instance must not land hits, striker took %v", a.Damage)
	}
}

func TestStunnedAttackerStrikesNobody(t *testing.T) {
	catalog := Catalog{0: DefaultCharacter(), 2: strikerSheet()}
	m := NewMap()
	attacker := m.NewInstance(2)
	victim := m.NewInstance(0)
	m.Characters[attacker].Airborne = false
	m.Characters[victim].Position = Vec2{X: 0.6}

	m.SetInputs(map[uint32]Input{attacker: {LightAttack: true}})
	m.Characters[attacker].Update(catalog[2], DefaultRules())
	m.Characters[attacker].State = ActionState{Kind: HitStun, Remaining: 3}

	m.resolveHits(m.IDs(), catalog)
	if d := m.Characters[victim].Damage; d != 0 {
		t.Fatalf("stunned attacker dealt %v", d)
	}
}

func TestLoopingHitFrameStrikesOncePerLoop(t *testing.T) {
	sheet := DefaultCharacter()
	sheet.ID = 4
	sheet.Animations.Idling[0].Hold = 1
	sheet.Animations.Idling[0].Hit = []HitCircle{{
		Shape:  Circle{Radius: 0.5, Position: Vec2{X: 0.5, Y: 0.5}},
		Events: []FrameEvent{{Kind: EventDealDamage, Amount: 1}},
	}}
	catalog := Catalog{0: DefaultCharacter(), 4: sheet}

	m := NewMap()
	hazard := m.NewInstance(4)
	victim := m.NewInstance(0)
	m.Characters[hazard].Airborne = false
	m.Characters[victim].Position = Vec2{X: 0.6}

	// a one-frame loop with hold 1 wraps every second tick
	for i := 0; i < 6; i++ {
		m.Update(catalog, DefaultRules())
	}
	if d := m.Characters[victim].Damage; d != 4 {
		t.Fatalf("expected a hit on the first tick and after each of 3 wraps, damage=%v", d)
	}
}
