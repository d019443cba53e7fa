package game

import "sort"

// Map is the world snapshot: the tick counter, the next instance id and every
// live instance. Instance ids are allocated from NextID and never reused.
type Map struct {
	Counter    uint64                        `json:"counter" msgpack:"counter"`
	NextID     uint32                        `json:"current_id" msgpack:"current_id"`
	Characters map[uint32]*CharacterInstance `json:"characters" msgpack:"characters"`
	Statics    []Circle                      `json:"statics" msgpack:"statics"`
}

func NewMap() *Map {
	return &Map{
		Characters: make(map[uint32]*CharacterInstance),
		Statics:    []Circle{},
	}
}

// NewInstance spawns an instance of character and returns its id.
func (m *Map) NewInstance(character uint32) uint32 {
	id := m.NextID
	m.Characters[id] = NewInstance(character, id)
	m.NextID++
	return id
}

// Remove deletes an instance and reports whether it existed.
func (m *Map) Remove(id uint32) bool {
	if _, ok := m.Characters[id]; !ok {
		return false
	}
	delete(m.Characters, id)
	return true
}

// Rebind switches an instance to another definition and resets it in place.
func (m *Map) Rebind(id, character uint32) bool {
	ci, ok := m.Characters[id]
	if !ok {
		return false
	}
	ci.Character = character
	ci.Reset()
	return true
}

// SetInputs copies each controller's input into the instance it controls.
// Ids without a live instance are ignored.
func (m *Map) SetInputs(inputs map[uint32]Input) {
	for id, in := range inputs {
		if ci, ok := m.Characters[id]; ok {
			ci.Input = in
		}
	}
}

// IDs returns the live instance ids in ascending order.
func (m *Map) IDs() []uint32 {
	ids := make([]uint32, 0, len(m.Characters))
	for id := range m.Characters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Update advances every instance whose definition is known, then resolves hits.
// Instances pointing at a missing definition are left untouched. It returns the
// ids of such orphans.
func (m *Map) Update(catalog Catalog, rules Rules) []uint32 {
	var orphans []uint32
	ids := m.IDs()
	for _, id := range ids {
		ci := m.Characters[id]
		sheet, ok := catalog.Get(ci.Character)
		if !ok {
			orphans = append(orphans, id)
			continue
		}
		ci.Update(sheet, rules)
	}
	m.resolveHits(ids, catalog)
	return orphans
}

// resolveHits applies the events of every touching hit circle to the victim.
// Each attacker action strikes a given victim at most once. A stunned
// instance strikes nobody, and a hit that stuns cancels the victim's action.
func (m *Map) resolveHits(ids []uint32, catalog Catalog) {
	for _, aid := range ids {
		attacker := m.Characters[aid]
		if attacker.State.Kind == HitStun {
			continue
		}
		asheet, ok := catalog.Get(attacker.Character)
		if !ok {
			continue
		}
		hits := attacker.placedHit(asheet)
		if len(hits) == 0 {
			continue
		}
		for _, vid := range ids {
			if vid == aid {
				continue
			}
			victim := m.Characters[vid]
			vsheet, ok := catalog.Get(victim.Character)
			if !ok || victim.Vulnerability == Untouchable {
				continue
			}
			hit, hurtState, ok := contact(hits, victim.placedHurt(vsheet))
			if !ok || !attacker.markHit(vid) {
				continue
			}
			if victim.Vulnerability == Invincible || hurtState == Invincible {
				continue
			}
			for _, ev := range hit.Events {
				ev.apply(victim, attacker.Direction, hit.Shape.Position)
			}
			if victim.State.Kind == HitStun {
				victim.interrupt(vsheet)
			}
		}
	}
}

// contact finds the first hit circle touching a hurt circle that is not
// Untouchable.
func contact(hits []HitCircle, hurts []HurtCircle) (HitCircle, Vulnerability, bool) {
	for _, h := range hits {
		for _, u := range hurts {
			if u.State == Untouchable {
				continue
			}
			if h.Shape.Overlaps(u.Shape) {
				return h, u.State, true
			}
		}
	}
	return HitCircle{}, "", false
}

// Clone deep-copies the snapshot for readers. Transient per-tick state (input
// and the per-action hit memory) is not carried over.
func (m *Map) Clone() *Map {
	out := &Map{
		Counter:    m.Counter,
		NextID:     m.NextID,
		Characters: make(map[uint32]*CharacterInstance, len(m.Characters)),
		Statics:    append([]Circle{}, m.Statics...),
	}
	for id, ci := range m.Characters {
		cp := *ci
		cp.Input = Input{}
		cp.hits = nil
		out.Characters[id] = &cp
	}
	return out
}
