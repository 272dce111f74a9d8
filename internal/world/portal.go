package world

import "github.com/miniquest/miniquest/internal/geom"

// Portal is a static trigger volume leading to another map.
type Portal struct {
	Rect    geom.Rect
	Dest    string
	DestPos geom.Vec
	// QuestActive must all be active and QuestCompleted must all be complete
	// for the portal to open.
	QuestActive    []string
	QuestCompleted []string
}

// Open reports whether q satisfies both requirement lists. A nil q satisfies
// only portals without requirements.
func (p *Portal) Open(q Quests) bool {
	if q == nil {
		return len(p.QuestActive) == 0 && len(p.QuestCompleted) == 0
	}
	for _, name := range p.QuestActive {
		if !q.IsActive(name) {
			return false
		}
	}
	for _, name := range p.QuestCompleted {
		if !q.IsComplete(name) {
			return false
		}
	}
	return true
}
