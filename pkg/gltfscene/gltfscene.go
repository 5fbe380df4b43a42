// Package gltfscene loads a glTF 2.0 file into a scene.Scene and writes the
// selected part of it back out as GLB files.
package gltfscene

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/ccexport/internal/logger"
	"github.com/Faultbox/ccexport/pkg/scene"
)

// ErrUnsupportedFormat is returned for files that are not .gltf or .glb.
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// visibilityExt is the glTF extension carrying a node's visible flag.
const visibilityExt = "KHR_node_visibility"

// Document is a loaded glTF file and the scene graph built from it.
type Document struct {
	Path  string
	Doc   *gltf.Document
	Scene *scene.Scene

	parent []int // parent index per glTF node, -1 for roots

	// decoded is set for documents read from disk. The decoder fills in
	// default TRS values, so zero values there were written explicitly.
	decoded bool
}

// Load opens a .gltf or .glb file.
func Load(path string) (*Document, error) {
	if !isSceneFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	d, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d.Path = path
	d.decoded = true
	return d, nil
}

func isSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// FromDocument builds the scene graph of doc's default scene. Documents
// without scenes use every node that is nobody's child.
func FromDocument(doc *gltf.Document) (*Document, error) {
	d := &Document{Doc: doc, Scene: scene.New(), parent: make([]int, len(doc.Nodes))}
	for i := range d.parent {
		d.parent[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < 0 || int(c) >= len(doc.Nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			if d.parent[c] != -1 {
				return nil, fmt.Errorf("%w: node %d has parents %d and %d", scene.ErrNotForest, c, d.parent[c], i)
			}
			d.parent[c] = i
		}
	}

	nodes := make(map[int]*scene.Node, len(doc.Nodes))
	var build func(i int) (*scene.Node, error)
	build = func(i int) (*scene.Node, error) {
		if _, seen := nodes[i]; seen {
			return nil, fmt.Errorf("%w: node %d visited twice", scene.ErrNotForest, i)
		}
		src := doc.Nodes[i]
		n := scene.NewNode(src.Name)
		if n.Name == "" {
			n.Name = fmt.Sprintf("Node.%03d", i)
		}
		n.Ref = i
		n.Extras = extrasMap(src.Extras)
		n.Hidden = hiddenByExtension(n.Name, src.Extensions)
		if id, ok := n.Extras[scene.IDKey].(string); ok {
			n.ID = id
		}
		nodes[i] = n

		for _, c := range src.Children {
			child, err := build(int(c))
			if err != nil {
				return nil, err
			}
			if err := n.AddChild(child); err != nil {
				return nil, err
			}
		}
		return n, nil
	}

	roots, err := d.rootIndices()
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		root, err := build(r)
		if err != nil {
			return nil, err
		}
		d.Scene.Add(root)
	}
	if err := d.Scene.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// rootIndices returns the root nodes of the default scene.
func (d *Document) rootIndices() ([]int, error) {
	doc := d.Doc
	var sc *gltf.Scene
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		sc = doc.Scenes[*doc.Scene]
	case len(doc.Scenes) > 0:
		sc = doc.Scenes[0]
	}

	var roots []int
	if sc != nil {
		for _, r := range sc.Nodes {
			if r < 0 || r >= len(doc.Nodes) {
				return nil, fmt.Errorf("scene %q: root index %d out of range", sc.Name, r)
			}
			roots = append(roots, r)
		}
		return roots, nil
	}
	for i, p := range d.parent {
		if p == -1 {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

// extrasMap returns a copy of a node's extras when they are a JSON object.
func extrasMap(extras any) map[string]any {
	m, ok := extras.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// hiddenByExtension reports whether KHR_node_visibility marks the node
// invisible. A malformed extension leaves the node visible.
func hiddenByExtension(name string, ext gltf.Extensions) bool {
	raw, ok := ext[visibilityExt]
	if !ok {
		return false
	}
	var v struct {
		Visible *bool `json:"visible"`
	}
	var err error
	switch val := raw.(type) {
	case json.RawMessage:
		err = json.Unmarshal(val, &v)
	case []byte:
		err = json.Unmarshal(val, &v)
	case map[string]any:
		if b, ok := val["visible"].(bool); ok {
			v.Visible = &b
		}
	}
	if err != nil {
		logger.Debug("ignoring malformed visibility extension",
			zap.String("name", name), zap.Error(err))
		return false
	}
	return v.Visible != nil && !*v.Visible
}

// SyncIDs copies persistent ids from the scene graph into the glTF node
// extras and returns how many nodes changed.
func (d *Document) SyncIDs() int {
	changed := 0
	for _, n := range d.Scene.Objects {
		if n.ID == "" || n.Ref < 0 {
			continue
		}
		src := d.Doc.Nodes[n.Ref]
		switch extras := src.Extras.(type) {
		case nil:
			src.Extras = map[string]any{scene.IDKey: n.ID}
		case map[string]any:
			if extras[scene.IDKey] == n.ID {
				continue
			}
			extras[scene.IDKey] = n.ID
		default:
			logger.Warn("node extras are not an object, id not persisted", zap.String("name", n.Name))
			continue
		}
		changed++
	}
	return changed
}

// Save writes the document back to path, as GLB when the extension is .glb.
func (d *Document) Save(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(d.Doc, path)
	}
	return gltf.Save(d.Doc, path)
}
