package tiled

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPortal reports a portal object whose name is not "map,x,y".
var ErrBadPortal = errors.New("tiled: malformed portal")

// PortalSpec is the decoded destination and gating of a portal object.
type PortalSpec struct {
	Map            string
	DestX, DestY   float64
	QuestActive    []string
	QuestCompleted []string
}

// ParsePortal decodes a portal object: the name holds the comma-joined
// destination "<map>,<x>,<y>" and the optional properties
// quest_requirements and quest_complete_requirements hold comma-joined
// quest names.
func ParsePortal(obj *Object) (PortalSpec, error) {
	parts := strings.Split(obj.Name, ",")
	if len(parts) != 3 {
		return PortalSpec{}, fmt.Errorf("%w: %q", ErrBadPortal, obj.Name)
	}
	dest := strings.TrimSpace(parts[0])
	if dest == "" {
		return PortalSpec{}, fmt.Errorf("%w: %q has no destination map", ErrBadPortal, obj.Name)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return PortalSpec{}, fmt.Errorf("%w: %q: x: %v", ErrBadPortal, obj.Name, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return PortalSpec{}, fmt.Errorf("%w: %q: y: %v", ErrBadPortal, obj.Name, err)
	}
	return PortalSpec{
		Map:            dest,
		DestX:          float64(x),
		DestY:          float64(y),
		QuestActive:    obj.Properties.List("quest_requirements"),
		QuestCompleted: obj.Properties.List("quest_complete_requirements"),
	}, nil
}
