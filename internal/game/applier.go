package game

import "fmt"

// UnitChange describes what applying an event did to one unit.
type UnitChange struct {
	UnitID   string `json:"unitId"`
	HPBefore int    `json:"hpBefore"`
	HPAfter  int    `json:"hpAfter"`
	Armor    int    `json:"armor,omitempty"`
	Died     bool   `json:"died,omitempty"`
}

// ApplyResult reports the outcome of applying one event.
type ApplyResult struct {
	Applied bool         `json:"applied"`
	Reason  Reason       `json:"reason,omitempty"`
	Changes []UnitChange `json:"changes,omitempty"`
}

// Killed returns the ids of units that died.
func (r ApplyResult) Killed() []string {
	var out []string
	for _, c := range r.Changes {
		if c.Died {
			out = append(out, c.UnitID)
		}
	}
	return out
}

// Applier mechanically applies authoritative events to a world. It never
// rolls dice or recomputes damage, so every participant applying the same
// event to the same state ends up with the same state.
type Applier struct {
	Journal *Journal

	// Post-resolution hooks for presentation and history.
	OnCombatResolved  func(ev CombatEvent, res ApplyResult)
	OnAbilityResolved func(ev AbilityEvent, res ApplyResult)
}

// syncAP mirrors the AP an actor had left on the authority.
func syncAP(u *Unit, ap *int) {
	if ap != nil {
		u.AP = clampInt(*ap, 0, u.APMax)
	}
}

// ApplyCombatEvent applies ev to w: resolve both units, clamp the
// defender's HP, stamp the hit, handle death, then run the hook. An event
// naming an unknown unit is journaled and dropped with nothing mutated.
func (a *Applier) ApplyCombatEvent(w *WorldState, ev CombatEvent) ApplyResult {
	att := ResolveUnitRef(w, ev.AttackerID)
	def := ResolveUnitRef(w, ev.DefenderID)
	if att == nil || def == nil {
		a.journal().Add(w.TurnNumber, "", "", CatDrop, "unknown_unit",
			fmt.Sprintf("%s %s -> %s", ev.Type, ev.AttackerID, ev.DefenderID), 0)
		return ApplyResult{Reason: ReasonUnknownUnit}
	}

	syncAP(att, ev.AttackerAP)
	att.AttackedThisTurn = true
	change := a.damage(w, def, ev.Damage, &HitStamp{
		AttackerID: att.ID,
		WeaponID:   ev.WeaponID,
		Damage:     ev.Damage,
		Turn:       w.TurnNumber,
	})
	a.journal().Add(w.TurnNumber, att.ID, att.Owner, CatCombat, "hit",
		fmt.Sprintf("-> %s with %s for %d (hp %d->%d)", def.ID, ev.WeaponID, ev.Damage, change.HPBefore, change.HPAfter),
		float64(ev.Damage))
	if change.Died {
		a.journal().Add(w.TurnNumber, def.ID, def.Owner, CatCombat, "killed", "by "+att.ID, 0)
	}

	res := ApplyResult{Applied: true, Changes: []UnitChange{change}}
	if a.OnCombatResolved != nil {
		a.OnCombatResolved(ev, res)
	}
	return res
}

// ApplyAbilityEvent applies an ability cast. Every referenced unit is
// resolved before anything changes; one unknown reference drops the whole
// event.
func (a *Applier) ApplyAbilityEvent(w *WorldState, ev AbilityEvent) ApplyResult {
	caster := ResolveUnitRef(w, ev.CasterID)
	if caster == nil {
		a.journal().Add(w.TurnNumber, "", "", CatDrop, "unknown_unit",
			fmt.Sprintf("%s caster %s", ev.Type, ev.CasterID), 0)
		return ApplyResult{Reason: ReasonUnknownUnit}
	}
	targets := make([]*Unit, len(ev.Effects))
	for i, eff := range ev.Effects {
		targets[i] = ResolveUnitRef(w, eff.UnitID)
		if targets[i] == nil {
			a.journal().Add(w.TurnNumber, caster.ID, caster.Owner, CatDrop, "unknown_unit",
				fmt.Sprintf("%s target %s", ev.AbilityID, eff.UnitID), 0)
			return ApplyResult{Reason: ReasonUnknownUnit}
		}
	}

	syncAP(caster, ev.CasterAP)
	res := ApplyResult{Applied: true}
	for i, eff := range ev.Effects {
		u := targets[i]
		before := u.HP
		if eff.Heal > 0 {
			u.HP = min(u.MaxHP, u.HP+eff.Heal)
		}
		if eff.Armor > 0 {
			u.TempArmorBonus += eff.Armor
		}
		change := UnitChange{UnitID: u.ID, HPBefore: before, HPAfter: u.HP, Armor: eff.Armor}
		if eff.Damage > 0 {
			dc := a.damage(w, u, eff.Damage, &HitStamp{
				AttackerID: caster.ID,
				WeaponID:   ev.AbilityID,
				Damage:     eff.Damage,
				Turn:       w.TurnNumber,
			})
			change.HPAfter, change.Died = dc.HPAfter, dc.Died
		}
		res.Changes = append(res.Changes, change)
		a.journal().Add(w.TurnNumber, u.ID, u.Owner, CatAbility, "effect",
			fmt.Sprintf("%s from %s: dmg=%d heal=%d armor=%d", ev.AbilityID, caster.ID, eff.Damage, eff.Heal, eff.Armor),
			float64(eff.Damage))
		if change.Died {
			a.journal().Add(w.TurnNumber, u.ID, u.Owner, CatAbility, "killed", "by "+caster.ID, 0)
		}
	}
	if ev.Zone != nil {
		zone := *ev.Zone
		w.Hazards = append(w.Hazards, &zone)
		a.journal().Add(w.TurnNumber, caster.ID, caster.Owner, CatHazard, "placed",
			fmt.Sprintf("%s at %v r=%d for %d turns", zone.ID, zone.Center, zone.Radius, zone.TurnsLeft), float64(zone.Damage))
	}

	if a.OnAbilityResolved != nil {
		a.OnAbilityResolved(ev, res)
	}
	return res
}

// ApplyDefendEvent puts the named unit on guard.
func (a *Applier) ApplyDefendEvent(w *WorldState, ev DefendEvent) ApplyResult {
	u := ResolveUnitRef(w, ev.UnitID)
	if u == nil {
		a.journal().Add(w.TurnNumber, "", "", CatDrop, "unknown_unit", ev.Type+" "+ev.UnitID, 0)
		return ApplyResult{Reason: ReasonUnknownUnit}
	}
	syncAP(u, ev.AP)
	u.TempArmorBonus += ev.Armor
	u.Defending = true
	a.journal().Add(w.TurnNumber, u.ID, u.Owner, CatCombat, "defend",
		fmt.Sprintf("armor +%d", ev.Armor), float64(ev.Armor))
	return ApplyResult{Applied: true, Changes: []UnitChange{{UnitID: u.ID, HPBefore: u.HP, HPAfter: u.HP, Armor: ev.Armor}}}
}

// damage is the shared HP path for attacks, abilities and hazards: clamp,
// stamp, then mark dead and remove from every collection at zero HP.
func (a *Applier) damage(w *WorldState, u *Unit, amount int, stamp *HitStamp) UnitChange {
	change := UnitChange{UnitID: u.ID, HPBefore: u.HP}
	u.HP = max(0, u.HP-max(0, amount))
	u.LastHit = stamp
	if u.HP <= 0 {
		u.Dead = true
		w.RemoveUnit(u)
		change.Died = true
	}
	change.HPAfter = u.HP
	return change
}

func (a *Applier) journal() *Journal {
	if a == nil {
		return nil
	}
	return a.Journal
}
