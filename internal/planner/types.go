package planner

import (
	"errors"
	"fmt"

	"github.com/Faultbox/ccexport/pkg/scene"
)

// ErrPrecondition is returned when the top level of the scene does not have
// the shape the walk requires.
var ErrPrecondition = errors.New("precondition failed")

// Mode selects how strictly the top level of the scene is checked.
type Mode int

const (
	ModeStrict     Mode = iota // exactly one top-level CCC_
	ModePermissive             // any top level; unprefixed roots are skipped
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModePermissive:
		return "permissive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a config value to a Mode. Empty means strict.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return ModeStrict, nil
	case "permissive":
		return ModePermissive, nil
	default:
		return ModeStrict, fmt.Errorf("unknown mode %q (want strict or permissive)", s)
	}
}

// Job is one GLB file to write.
type Job struct {
	Unit   *scene.Node   // the component
	Set    []*scene.Node // export set, Unit first
	Folder string        // destination folder
	File   string        // Folder/<unit name>.glb
}

// Plan is the ordered output of a walk.
type Plan struct {
	Base    string
	Jobs    []Job
	Folders []string // every folder to create, parents first

	Skipped  []*scene.Node // top-level nodes without a prefix
	Orphans  []*scene.Node // Plain children met directly under a Container
	Unwalked []*scene.Node // Component children of a Component
}

// Files returns the destination file of every job, in order.
func (p *Plan) Files() []string {
	files := make([]string, len(p.Jobs))
	for i, j := range p.Jobs {
		files[i] = j.File
	}
	return files
}
