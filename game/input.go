package game

import (
	"encoding/json"
	"fmt"
)

// Direction is a horizontal intent or facing.
type Direction int8

const (
	DirNone  Direction = 0
	DirLeft  Direction = -1
	DirRight Direction = 1
)

// Sign returns -1 for left and 1 otherwise, so a zero facing still mirrors as right.
func (d Direction) Sign() int {
	if d == DirLeft {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "Left"
	case DirRight:
		return "Right"
	default:
		return "None"
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirNone {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DirNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "Left":
		*d = DirLeft
	case "Right":
		*d = DirRight
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// Input is the pending intent of one player, sampled once per tick.
// Buttons are levels, not edges.
type Input struct {
	Dir         Direction `json:"dir" msgpack:"dir"`
	LightAttack bool      `json:"light_attack" msgpack:"light_attack"`
	HeavyAttack bool      `json:"heavy_attack" msgpack:"heavy_attack"`
	Special     bool      `json:"special" msgpack:"special"`
	Jump        bool      `json:"jump" msgpack:"jump"`
}

// ResetButtons clears the one-shot flags and keeps the held direction.
func (in *Input) ResetButtons() {
	in.LightAttack = false
	in.HeavyAttack = false
	in.Special = false
	in.Jump = false
}
