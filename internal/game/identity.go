package game

import "github.com/google/uuid"

// UnitRef is the identity a unit is known by on the wire: the first
// non-empty of id, unitId, uuid, netId, falling back to name@q,r.
func UnitRef(u *Unit) string {
	if u == nil {
		return ""
	}
	if ref := firstNonEmpty(u.ID, u.UnitID, u.UUID, u.NetID); ref != "" {
		return ref
	}
	return u.Label()
}

// ResolveUnitRef finds the unit an incoming event refers to. Each link of
// the identity chain is tried across the union of every collection before
// moving on to the next link. Only network and snapshot boundaries should
// call this; internal code uses canonical ids.
//
// The name@q,r link can match two units that share a name on the same hex
// while one of them is mid-animation. The first unit in collection order wins.
func ResolveUnitRef(w *WorldState, ref string) *Unit {
	if w == nil || ref == "" {
		return nil
	}
	all := w.allUnits()
	links := []func(*Unit) string{
		func(u *Unit) string { return u.ID },
		func(u *Unit) string { return u.UnitID },
		func(u *Unit) string { return u.UUID },
		func(u *Unit) string { return u.NetID },
		func(u *Unit) string { return u.Label() },
	}
	for _, key := range links {
		for _, u := range all {
			if key(u) == ref {
				return u
			}
		}
	}
	return nil
}

// assignID gives u its canonical id once, at ingestion: the first identity
// field it arrived with, or a fresh uuid. The name@q,r label stays a
// lookup link only.
func assignID(u *Unit) {
	if u.ID == "" {
		u.ID = firstNonEmpty(u.UnitID, u.UUID, u.NetID)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
}
