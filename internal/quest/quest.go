// Package quest tracks quest progress. A Log is the quest system consulted by
// portals and notified of every creature defeat.
package quest

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ErrUnknownQuest reports a quest name that was never defined.
var ErrUnknownQuest = errors.New("quest: unknown quest")

// State is a quest's progress.
type State int

const (
	Inactive State = iota
	Active
	Complete
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Complete:
		return "complete"
	default:
		return "inactive"
	}
}

// Objective asks for Count defeats of the creature type Target.
type Objective struct {
	Target string `yaml:"target"`
	Count  int    `yaml:"count"`
}

// Quest is a quest definition.
type Quest struct {
	Name        string      `yaml:"name"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Giver       string      `yaml:"giver"` // npc type that offers the quest
	Objectives  []Objective `yaml:"objectives"`
	Reward      []string    `yaml:"reward"`
}

// Decode reads a YAML list of quest definitions.
func Decode(r io.Reader) ([]Quest, error) {
	var doc struct {
		Quests []Quest `yaml:"quests"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("quest: decode: %w", err)
	}
	seen := make(map[string]bool, len(doc.Quests))
	for _, q := range doc.Quests {
		if q.Name == "" {
			return nil, errors.New("quest: definition without a name")
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("quest: duplicate quest %q", q.Name)
		}
		seen[q.Name] = true
		for _, o := range q.Objectives {
			if o.Target == "" || o.Count <= 0 {
				return nil, fmt.Errorf("quest: %s: objective needs a target and a positive count", q.Name)
			}
		}
	}
	return doc.Quests, nil
}

type progress struct {
	def   Quest
	state State
	kills []int
}

// Log holds every defined quest and its progress.
type Log struct {
	quests map[string]*progress
	order  []string
	log    *log.Logger

	// OnComplete, if set, is called once for each quest that completes.
	OnComplete func(q Quest)
}

// NewLog creates a Log over defs.
func NewLog(defs []Quest, logger *log.Logger) *Log {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &Log{quests: make(map[string]*progress, len(defs)), log: logger}
	for _, d := range defs {
		l.quests[d.Name] = &progress{def: d, kills: make([]int, len(d.Objectives))}
		l.order = append(l.order, d.Name)
	}
	return l
}

// Start activates an inactive quest. A quest without objectives completes
// immediately.
func (l *Log) Start(name string) error {
	p, ok := l.quests[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuest, name)
	}
	if p.state != Inactive {
		return nil
	}
	p.state = Active
	l.log.Info("quest started", "quest", name)
	l.checkDone(p)
	return nil
}

// Offer starts the first inactive quest given by the npc type giver and
// returns it.
func (l *Log) Offer(giver string) (Quest, bool) {
	for _, name := range l.order {
		p := l.quests[name]
		if p.def.Giver == giver && p.state == Inactive {
			_ = l.Start(name)
			return p.def, true
		}
	}
	return Quest{}, false
}

// State returns the progress of name.
func (l *Log) State(name string) State {
	if p, ok := l.quests[name]; ok {
		return p.state
	}
	return Inactive
}

// IsActive reports whether name is in progress.
func (l *Log) IsActive(name string) bool { return l.State(name) == Active }

// IsComplete reports whether name is finished.
func (l *Log) IsComplete(name string) bool { return l.State(name) == Complete }

// ProcessEvent counts a defeat of typeName toward every active quest.
func (l *Log) ProcessEvent(typeName string) {
	for _, name := range l.order {
		p := l.quests[name]
		if p.state != Active {
			continue
		}
		for i, o := range p.def.Objectives {
			if o.Target == typeName && p.kills[i] < o.Count {
				p.kills[i]++
			}
		}
		l.checkDone(p)
	}
}

func (l *Log) checkDone(p *progress) {
	for i, o := range p.def.Objectives {
		if p.kills[i] < o.Count {
			return
		}
	}
	p.state = Complete
	l.log.Info("quest complete", "quest", p.def.Name)
	if l.OnComplete != nil {
		l.OnComplete(p.def)
	}
}

// Progress returns the defeats counted and needed over all of name's
// objectives.
func (l *Log) Progress(name string) (done, needed int) {
	p, ok := l.quests[name]
	if !ok {
		return 0, 0
	}
	for i, o := range p.def.Objectives {
		done += p.kills[i]
		needed += o.Count
	}
	return done, needed
}

// Active returns the names of quests in progress, sorted.
func (l *Log) Active() []string {
	var out []string
	for name, p := range l.quests {
		if p.state == Active {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
