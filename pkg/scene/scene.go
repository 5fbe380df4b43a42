// Package scene models the object graph the exporter walks: a forest of
// named nodes with host-style visibility and selection flags.
package scene

import (
	"errors"
	"fmt"
)

// ErrNotForest is returned when a link would break the forest shape.
var ErrNotForest = errors.New("scene graph is not a forest")

// Node is one object of the scene graph.
type Node struct {
	Name     string
	ID       string // persistent id, empty until assigned
	Parent   *Node
	Children []*Node

	Hidden   bool
	Selected bool

	// Ref is the node's index in the source document, -1 when synthetic.
	Ref int

	// Extras is the node's persisted metadata. The persistent id is kept
	// under IDKey.
	Extras map[string]any
}

// NewNode creates a detached node.
func NewNode(name string) *Node {
	return &Node{Name: name, Ref: -1}
}

// Kind classifies the node by its name.
func (n *Node) Kind() Kind {
	return Classify(n.Name)
}

// AddChild appends child to n, keeping insertion order.
func (n *Node) AddChild(child *Node) error {
	if child.Parent != nil {
		return fmt.Errorf("%w: %q already has parent %q", ErrNotForest, child.Name, child.Parent.Name)
	}
	for p := n; p != nil; p = p.Parent {
		if p == child {
			return fmt.Errorf("%w: %q is an ancestor of %q", ErrNotForest, child.Name, n.Name)
		}
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	return nil
}

// Scene is the ordered set of all objects plus the active object.
type Scene struct {
	Objects []*Node
	Active  *Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add registers node and its whole subtree, pre-order.
func (s *Scene) Add(node *Node) {
	s.Objects = append(s.Objects, node)
	for _, c := range node.Children {
		s.Add(c)
	}
}

// Roots returns the parentless objects in scene order.
func (s *Scene) Roots() []*Node {
	var roots []*Node
	for _, o := range s.Objects {
		if o.Parent == nil {
			roots = append(roots, o)
		}
	}
	return roots
}

// Find returns the first object with the given name.
func (s *Scene) Find(name string) *Node {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Validate checks parent/child links are consistent and acyclic.
func (s *Scene) Validate() error {
	seen := make(map[*Node]bool, len(s.Objects))
	for _, o := range s.Objects {
		for p, depth := o.Parent, 0; p != nil; p, depth = p.Parent, depth+1 {
			if p == o || depth > len(s.Objects) {
				return fmt.Errorf("%w: cycle through %q", ErrNotForest, o.Name)
			}
		}
		for _, c := range o.Children {
			if c.Parent != o {
				return fmt.Errorf("%w: %q lists child %q with another parent", ErrNotForest, o.Name, c.Name)
			}
			if seen[c] {
				return fmt.Errorf("%w: %q has more than one parent", ErrNotForest, c.Name)
			}
			seen[c] = true
		}
	}
	return nil
}

// The methods below let *Scene act as the exporter's scene adapter.

// Hidden reports the node's visibility flag.
func (s *Scene) Hidden(n *Node) bool { return n.Hidden }

// SetHidden sets the node's visibility flag.
func (s *Scene) SetHidden(n *Node, hidden bool) { n.Hidden = hidden }

// Selected reports the node's selection flag.
func (s *Scene) Selected(n *Node) bool { return n.Selected }

// SetSelected sets the node's selection flag.
func (s *Scene) SetSelected(n *Node, selected bool) { n.Selected = selected }

// ActiveObject returns the active object, nil when none.
func (s *Scene) ActiveObject() *Node { return s.Active }

// SetActiveObject makes n the active object.
func (s *Scene) SetActiveObject(n *Node) { s.Active = n }

// AllObjects returns every object in scene order.
func (s *Scene) AllObjects() []*Node { return s.Objects }
