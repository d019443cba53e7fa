package protocol

import (
	"errors"

	"nebula/game"
)

// JoinRequest registers a new player under a unique name.
type JoinRequest struct {
	Password   string `json:"server_password" msgpack:"server_password"`
	PlayerName string `json:"player_name" msgpack:"player_name"`
}

func (r *JoinRequest) Validate() error {
	if r.PlayerName == "" {
		return errors.New("player_name is required")
	}
	return nil
}

// ControlPacket replaces the pending input of a player.
type ControlPacket struct {
	Password string     `json:"server_password" msgpack:"server_password"`
	Player   string     `json:"player" msgpack:"player"`
	Input    game.Input `json:"input" msgpack:"input"`
}

func (r *ControlPacket) Validate() error {
	if r.Player == "" {
		return errors.New("player is required")
	}
	return nil
}

// CharacterSwitch creates, replaces or removes the instance a player
// controls. A nil Character removes it.
type CharacterSwitch struct {
	Password   string  `json:"server_password" msgpack:"server_password"`
	PlayerName string  `json:"player_name" msgpack:"player_name"`
	Character  *uint32 `json:"character" msgpack:"character"`
}

func (r *CharacterSwitch) Validate() error {
	if r.PlayerName == "" {
		return errors.New("player_name is required")
	}
	return nil
}

// CharacterID is a helper for building switch requests.
func CharacterID(id uint32) *uint32 { return &id }
