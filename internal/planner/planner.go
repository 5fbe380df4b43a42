package planner

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/ccexport/internal/logger"
	"github.com/Faultbox/ccexport/pkg/scene"
)

// RootFolder wraps the output when the scene has several top-level nodes.
const RootFolder = "root"

// CheckTopLevel verifies the parentless nodes match what mode requires.
func CheckTopLevel(roots []*scene.Node, mode Mode) error {
	if len(roots) == 0 {
		return fmt.Errorf("%w: no top-level objects found in scene", ErrPrecondition)
	}
	if mode == ModePermissive {
		return nil
	}
	if len(roots) > 1 || roots[0].Kind() != scene.KindContainer {
		return fmt.Errorf("%w: the top level object must be a single CCC_", ErrPrecondition)
	}
	return nil
}

// Build checks the top level and walks it into a Plan rooted at exportRoot.
func Build(roots []*scene.Node, exportRoot string, mode Mode) (*Plan, error) {
	if err := CheckTopLevel(roots, mode); err != nil {
		return nil, err
	}

	base := exportRoot
	if len(roots) > 1 {
		base = filepath.Join(exportRoot, RootFolder)
	}

	w := &walker{plan: &Plan{Base: base}}
	w.folder(base)

	for _, n := range roots {
		switch n.Kind() {
		case scene.KindComponent:
			w.component(n, base)
		case scene.KindContainer:
			w.container(n, filepath.Join(base, scene.FolderName(n)))
		default:
			logger.Info("skipping top-level object without CC_/CCC_ prefix", zap.String("name", n.Name))
			w.plan.Skipped = append(w.plan.Skipped, n)
		}
	}

	return w.plan, nil
}

type walker struct {
	plan *Plan
}

func (w *walker) folder(path string) {
	w.plan.Folders = append(w.plan.Folders, path)
}

// component emits the job for n under parent, then walks its Container
// children inside the component folder.
func (w *walker) component(n *scene.Node, parent string) {
	dir := filepath.Join(parent, scene.FolderName(n))
	w.folder(dir)
	w.plan.Jobs = append(w.plan.Jobs, Job{
		Unit:   n,
		Set:    scene.Gather(n),
		Folder: dir,
		File:   filepath.Join(dir, n.Name+".glb"),
	})

	for _, c := range n.Children {
		switch c.Kind() {
		case scene.KindContainer:
			w.container(c, filepath.Join(dir, scene.FolderName(c)))
		case scene.KindComponent:
			logger.Warn("nested component is not exported",
				zap.String("name", c.Name), zap.String("parent", n.Name))
			w.plan.Unwalked = append(w.plan.Unwalked, c)
		}
	}
}

// container adds dir for n and walks every child.
func (w *walker) container(n *scene.Node, dir string) {
	w.folder(dir)
	for _, c := range n.Children {
		switch c.Kind() {
		case scene.KindComponent:
			w.component(c, dir)
		case scene.KindContainer:
			w.container(c, filepath.Join(dir, scene.FolderName(c)))
		default:
			logger.Debug("ignoring unprefixed child of container",
				zap.String("name", c.Name), zap.String("container", n.Name))
			w.plan.Orphans = append(w.plan.Orphans, c)
		}
	}
}
