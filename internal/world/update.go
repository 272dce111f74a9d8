package world

import (
	"fmt"
	"slices"

	"github.com/miniquest/miniquest/internal/particle"
)

// Update advances the simulation by dt seconds in a fixed order: enemies,
// npcs, game objects, portals, projectiles, explosions, particles, respawn
// timers.
//
// It returns an error only when a portal fired and the destination failed to
// load. The current map is left intact in that case.
func (m *Map) Update(player Player, view Viewport, dt float64) error {
	if dt < 0 {
		dt = 0
	}
	m.tick++
	m.playerRect = player.CollisionRect()

	m.updateCreatures(&m.enemies, KindEnemy, player, dt)
	m.updateCreatures(&m.npcs, KindNPC, player, dt)
	m.updateObjects(dt)
	if err := m.updatePortals(player, view); err != nil {
		return err
	}
	m.updateProjectiles(player, dt)
	m.updateExplosions(dt)
	m.updateParticles(player, dt)
	m.updateRespawns()
	return nil
}

// stepContext builds the obstacle view for one creature. The returned
// context shares a scratch buffer and is only valid during the call to Step.
func (m *Map) stepContext(self EntityID, dt float64, player Player) *StepContext {
	m.scratch = append(m.scratch[:0], m.blockers...)
	m.scratch = m.bodies.appendExcept(m.scratch, self)
	m.scratch = append(m.scratch, m.playerRect)
	return &StepContext{
		DT:        dt,
		Obstacles: m.scratch,
		Bounds:    m.Bounds(),
		Player:    player.Rect(),
		Rand:      m.rng,
	}
}

func (m *Map) updateCreatures(list *[]Combatant, kind Kind, player Player, dt float64) {
	live := *list
	kept := live[:0]
	for _, c := range live {
		// Creatures damaged outside the projectile pass are defeated before
		// they act again.
		if c.HP() > 0 {
			m.stepCreature(c, player, dt)
		}
		if c.HP() <= 0 {
			m.defeat(c, kind)
			continue
		}
		kept = append(kept, c)
	}
	clear(live[len(kept):])
	*list = kept
}

func (m *Map) stepCreature(c Combatant, player Player, dt float64) {
	moved := c.Step(m.stepContext(c.ID(), dt, player))
	m.bodies.sync(c.ID(), c.CollisionRect())
	if moved {
		r := c.CollisionRect()
		m.events.AddVerbose(m.tick, m.level.id, c.TypeName(), CatMovement, "move",
			fmt.Sprintf("(%.0f,%.0f)", r.X, r.Y), 0)
		if m.rng.Float64() < walkParticleChance {
			m.ground.Add(particle.NewWalk(m.rng, r))
		}
	}
	if a, ok := c.(Attacker); ok {
		if p := a.Attack(player.Rect(), m.blockers, m.rng); p != nil {
			m.AddProjectile(p)
		}
	}
	for _, p := range m.projectiles {
		if m.applyHit(c, p) {
			break
		}
	}
}

// strike applies p to the first creature it can hit. A creature killed by
// the hit is defeated at once, so its rect is gone before anything draws.
func (m *Map) strike(p *Projectile) (hit, killed bool) {
	if hit, killed = m.strikeIn(&m.enemies, KindEnemy, p); hit {
		return hit, killed
	}
	return m.strikeIn(&m.npcs, KindNPC, p)
}

func (m *Map) strikeIn(list *[]Combatant, kind Kind, p *Projectile) (hit, killed bool) {
	for i, c := range *list {
		if !m.applyHit(c, p) {
			continue
		}
		if c.HP() > 0 {
			return true, false
		}
		*list = slices.Delete(*list, i, i+1)
		m.defeat(c, kind)
		return true, true
	}
	return false, false
}

// applyHit damages c with p and consumes p when p is a live player-owned
// projectile overlapping c's sprite and c is not in its grace period.
func (m *Map) applyHit(c Combatant, p *Projectile) bool {
	if !p.CanHit() || p.Owner != PlayerID || c.HP() <= 0 || c.Invulnerable() {
		return false
	}
	if !c.Rect().Overlaps(p.CollisionRect()) {
		return false
	}
	c.TakeDamage(p.Damage)
	p.Consume()
	m.events.Add(m.tick, m.level.id, c.TypeName(), CatCombat, "hit",
		fmt.Sprintf("%d dmg, hp %d", p.Damage, c.HP()), float64(p.Damage))
	return true
}

func (m *Map) defeat(c Combatant, kind Kind) {
	if !m.bodies.remove(c.ID()) {
		m.log.Warn("collision rect not registered", "type", c.TypeName(), "id", c.ID())
	}
	spawn := c.Spawn()
	if spawn.Respawns {
		m.pending = append(m.pending, &pendingRespawn{c: c, kind: kind, remaining: spawn.RespawnTime})
	}
	m.events.Add(m.tick, m.level.id, c.TypeName(), CatLifecycle, "defeat",
		fmt.Sprintf("respawns=%t", spawn.Respawns), 0)
	if m.quests != nil {
		m.quests.ProcessEvent(c.TypeName())
	}
}

func (m *Map) updateObjects(dt float64) {
	kept := m.objects[:0]
	collidersChanged := false
	for _, o := range m.objects {
		if !o.Update(dt) {
			kept = append(kept, o)
			continue
		}
		if _, ok := o.(Collider); ok {
			collidersChanged = true
		}
		m.events.Add(m.tick, m.level.id, o.TypeName(), CatObject, "despawn", "", 0)
	}
	clear(m.objects[len(kept):])
	m.objects = kept
	if collidersChanged {
		m.rebuildBlockers()
	}
}

func (m *Map) updatePortals(player Player, view Viewport) error {
	if player.InDialogue() {
		return nil
	}
	pr := player.CollisionRect()
	for _, p := range m.level.portals {
		if !pr.Overlaps(p.Rect) || !p.Open(m.quests) {
			continue
		}
		m.events.Add(m.tick, m.level.id, "--", CatPortal, "enter", p.Dest, 0)
		// One transition per tick; the new map's portals wait for the next.
		return m.ChangeMap(p.Dest, p.DestPos, player, view)
	}
	return nil
}

func (m *Map) hitBodies(dst []hitBody) []hitBody {
	for i, id := range m.bodies.ids {
		dst = append(dst, hitBody{id: id, rect: m.bodies.rects[i]})
	}
	return dst
}

func (m *Map) updateProjectiles(player Player, dt float64) {
	bodies := m.hitBodies(make([]hitBody, 0, m.bodies.len()))
	pr := player.Rect()
	bounds := m.Bounds()

	kept := m.projectiles[:0]
	for _, p := range m.projectiles {
		if !p.CanHit() {
			continue
		}
		ended := p.advance(dt, m.blockers, bounds, bodies)
		if p.Owner == PlayerID {
			if hit, killed := m.strike(p); hit {
				if killed {
					bodies = m.hitBodies(bodies[:0])
				}
				continue
			}
		}
		if p.Owner != PlayerID && !player.Teleporting() && pr.Overlaps(p.CollisionRect()) {
			if !player.Invulnerable() {
				player.HitByProjectile(p.Damage)
				m.events.Add(m.tick, m.level.id, "player", CatCombat, "player_hit",
					fmt.Sprintf("%d dmg", p.Damage), float64(p.Damage))
			}
			p.Consume()
			m.AddExplosion(p.Explosion, p.CollisionRect().Center())
			continue
		}
		if ended {
			m.AddExplosion(p.Explosion, p.CollisionRect().Center())
			continue
		}
		if t := p.trailParticle(m.rng); t != nil {
			if p.AboveGround {
				m.above.Add(t)
			} else {
				m.mid.Add(t)
			}
		}
		kept = append(kept, p)
	}
	clear(m.projectiles[len(kept):])
	m.projectiles = kept
}

func (m *Map) updateExplosions(dt float64) {
	kept := m.explosions[:0]
	for _, e := range m.explosions {
		if !e.Update(dt) {
			kept = append(kept, e)
		}
	}
	clear(m.explosions[len(kept):])
	m.explosions = kept
}

func (m *Map) updateParticles(player Player, dt float64) {
	target := player.Rect()
	m.above.Update(dt, target)
	m.mid.Update(dt, target)
	m.ground.Update(dt, target)
}

// updateRespawns counts down the holding set, one per tick, and reinserts
// entries that reach zero at their spawn anchor.
func (m *Map) updateRespawns() {
	kept := m.pending[:0]
	for _, pr := range m.pending {
		pr.remaining--
		if pr.remaining > 0 {
			kept = append(kept, pr)
			continue
		}
		pr.c.Respawn()
		m.addCreature(pr.c, pr.kind)
		m.events.Add(m.tick, m.level.id, pr.c.TypeName(), CatLifecycle, "respawn", "", 0)
	}
	clear(m.pending[len(kept):])
	m.pending = kept
}
