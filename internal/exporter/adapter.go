package exporter

import (
	"context"

	"github.com/Faultbox/ccexport/pkg/scene"
)

// Adapter exposes the host-like state the exporter toggles around each write.
// *scene.Scene implements it.
type Adapter interface {
	AllObjects() []*scene.Node
	Hidden(n *scene.Node) bool
	SetHidden(n *scene.Node, hidden bool)
	Selected(n *scene.Node) bool
	SetSelected(n *scene.Node, selected bool)
	ActiveObject() *scene.Node
	SetActiveObject(n *scene.Node)
}

// Writer exports the currently visible, selected objects as one GLB file.
type Writer interface {
	WriteSelected(ctx context.Context, path string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, path string) error

func (f WriterFunc) WriteSelected(ctx context.Context, path string) error {
	return f(ctx, path)
}

// VisibilityGuard unhides a set of nodes and remembers how they were.
type VisibilityGuard struct {
	a     Adapter
	nodes []*scene.Node
	prior []bool
}

// Reveal makes every node in nodes visible. Call Restore to undo.
func Reveal(a Adapter, nodes []*scene.Node) *VisibilityGuard {
	g := &VisibilityGuard{a: a, nodes: nodes, prior: make([]bool, len(nodes))}
	for i, n := range nodes {
		g.prior[i] = a.Hidden(n)
		a.SetHidden(n, false)
	}
	return g
}

// Restore puts back the recorded visibility.
func (g *VisibilityGuard) Restore() {
	for i, n := range g.nodes {
		g.a.SetHidden(n, g.prior[i])
	}
}

// SelectionGuard selects exactly a set of nodes and remembers the previous
// selection and active object.
type SelectionGuard struct {
	a      Adapter
	all    []*scene.Node
	prior  []bool
	active *scene.Node
}

// Select deselects everything, selects nodes and makes the first one active.
func Select(a Adapter, nodes []*scene.Node) *SelectionGuard {
	all := a.AllObjects()
	g := &SelectionGuard{a: a, all: all, prior: make([]bool, len(all)), active: a.ActiveObject()}
	for i, o := range all {
		g.prior[i] = a.Selected(o)
		a.SetSelected(o, false)
	}
	for _, n := range nodes {
		a.SetSelected(n, true)
	}
	if len(nodes) > 0 {
		a.SetActiveObject(nodes[0])
	}
	return g
}

// Restore puts back the recorded selection and active object.
func (g *SelectionGuard) Restore() {
	for i, o := range g.all {
		g.a.SetSelected(o, g.prior[i])
	}
	g.a.SetActiveObject(g.active)
}
