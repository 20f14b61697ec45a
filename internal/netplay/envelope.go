// Package netplay carries a match between participants through a relay.
// The relay only routes envelopes; one participant is the host and is the
// only one that resolves combat.
package netplay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Garsondee/hexfront/internal/game"
)

// ErrClosed is returned by Send after the connection is gone.
var ErrClosed = errors.New("netplay: connection closed")

// Envelope types.
const (
	TypeCombatIntent  = "combat:intent"
	TypeCombatAttack  = game.EventCombatAttack
	TypeAbilityIntent = "ability:intent"
	TypeAbilityCast   = game.EventAbilityCast
	TypeDefendIntent  = "defend:intent"
	TypeUnitDefend    = game.EventUnitDefend
	TypeIntentReject  = "intent:reject"
	TypeUnitSync      = "unit:sync"
	TypeTurnEnd       = "turn:end"
	TypeSnapshot      = "snapshot"
	TypePeerJoined    = "peer:joined"
	TypePeerLeft      = "peer:left"
)

// Envelope is the single wire message. To is empty for broadcasts.
type Envelope struct {
	Type    string          `json:"type"`
	From    string          `json:"from"`
	To      string          `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TurnEnd announces that Ending finished its turn. Turn is the turn
// number after the hand-off.
type TurnEnd struct {
	Ending string `json:"ending"`
	Next   string `json:"next"`
	Turn   int    `json:"turn"`
}

// Rejection tells a requester the host refused its intent.
type Rejection struct {
	Nonce  string      `json:"nonce"`
	Reason game.Reason `json:"reason"`
}

// NewEnvelope marshals payload into an envelope.
func NewEnvelope(typ, from string, payload any) (Envelope, error) {
	env := Envelope{Type: typ, From: from}
	if payload == nil {
		return env, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", typ, err)
	}
	env.Payload = b
	return env, nil
}

// Decode unmarshals the payload into out.
func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return fmt.Errorf("decode %s from %s: %w", e.Type, e.From, err)
	}
	return nil
}
