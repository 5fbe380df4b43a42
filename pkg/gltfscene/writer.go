package gltfscene

import (
	"context"
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/ccexport/internal/logger"
	xmath "github.com/Faultbox/ccexport/pkg/math"
	"github.com/Faultbox/ccexport/pkg/scene"
)

// WriteSelected writes every selected, visible node of the scene as a GLB at
// path. Selected nodes whose parent is not exported become scene roots and
// take their ancestors' transform with them. Meshes, materials and buffers
// are shared with the source document.
func (d *Document) WriteSelected(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := d.Subset(d.exported())
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(out, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// exported returns the source indices of the selected, visible nodes.
func (d *Document) exported() map[int]*scene.Node {
	keep := make(map[int]*scene.Node)
	for _, n := range d.Scene.Objects {
		if n.Selected && !n.Hidden && n.Ref >= 0 {
			keep[n.Ref] = n
		}
	}
	return keep
}

// Subset builds a new document holding only the nodes in keep, indexed by
// source node index.
func (d *Document) Subset(keep map[int]*scene.Node) (*gltf.Document, error) {
	src := d.Doc
	if len(keep) == 0 {
		return nil, fmt.Errorf("nothing selected to export")
	}

	// Source order keeps output indices deterministic.
	remap := make(map[int]int, len(keep))
	var order []int
	for i := range src.Nodes {
		if _, ok := keep[i]; ok {
			remap[i] = len(order)
			order = append(order, i)
		}
	}

	out := *src
	out.Nodes = make([]*gltf.Node, len(order))
	out.Scenes = []*gltf.Scene{{Name: d.sceneName()}}
	out.Scene = gltf.Index(0)

	skins, skinMap := subsetSkins(src.Skins, remap)
	out.Skins = skins
	out.Animations = subsetAnimations(src.Animations, remap)
	out.Buffers = binaryBuffers(src.Buffers)

	for newIdx, i := range order {
		n := *src.Nodes[i]
		n.Children = nil
		for _, c := range src.Nodes[i].Children {
			if j, ok := remap[int(c)]; ok {
				n.Children = append(n.Children, j)
			}
		}
		if n.Skin != nil {
			if s, ok := skinMap[int(*n.Skin)]; ok {
				n.Skin = gltf.Index(s)
			} else {
				n.Skin = nil
			}
		}
		if extras := keep[i].Extras; extras != nil {
			n.Extras = extras
		}
		n.Extensions = withoutVisibility(n.Extensions)

		if _, parentKept := remap[d.parent[i]]; !parentKept {
			if world := d.ancestorTransform(i); !world.IsIdentity() {
				setMatrix(&n, world.Mul(d.localMatrix(src.Nodes[i])))
			}
			out.Scenes[0].Nodes = append(out.Scenes[0].Nodes, newIdx)
		}
		out.Nodes[newIdx] = &n
	}

	for _, img := range out.Images {
		if img.URI != "" && !img.IsEmbeddedResource() {
			logger.Warn("image refers to an external file and may not resolve next to the export",
				zap.String("uri", img.URI))
		}
	}
	return &out, nil
}

func (d *Document) sceneName() string {
	if d.Doc.Scene != nil && int(*d.Doc.Scene) < len(d.Doc.Scenes) {
		return d.Doc.Scenes[*d.Doc.Scene].Name
	}
	if len(d.Doc.Scenes) > 0 {
		return d.Doc.Scenes[0].Name
	}
	return "Scene"
}

// ancestorTransform returns the world transform of node i's parent.
func (d *Document) ancestorTransform(i int) xmath.Mat4 {
	m := xmath.Identity()
	for p := d.parent[i]; p >= 0; p = d.parent[p] {
		m = d.localMatrix(d.Doc.Nodes[p]).Mul(m)
	}
	return m
}

// localMatrix returns a node's local transform. In documents built in
// memory a zero scale means the property was never set; in decoded ones it
// is a real zero scale.
func (d *Document) localMatrix(n *gltf.Node) xmath.Mat4 {
	m := xmath.Mat4(n.Matrix)
	if !m.IsZero() && !m.IsIdentity() {
		return m
	}
	s := n.Scale
	if !d.decoded {
		s = n.ScaleOrDefault()
	}
	return xmath.FromTRS(n.Translation, n.RotationOrDefault(), s)
}

func setMatrix(n *gltf.Node, m xmath.Mat4) {
	n.Matrix = [16]float64(m)
	n.Translation = [3]float64{}
	n.Rotation = [4]float64{0, 0, 0, 1}
	n.Scale = [3]float64{1, 1, 1}
}

func withoutVisibility(ext gltf.Extensions) gltf.Extensions {
	if _, ok := ext[visibilityExt]; !ok {
		return ext
	}
	out := make(gltf.Extensions, len(ext))
	for k, v := range ext {
		if k != visibilityExt {
			out[k] = v
		}
	}
	return out
}

// subsetSkins keeps skins whose joints are all exported, with joints
// renumbered. The returned map goes from old to new skin index.
func subsetSkins(skins []*gltf.Skin, remap map[int]int) ([]*gltf.Skin, map[int]int) {
	var out []*gltf.Skin
	skinMap := make(map[int]int)
	for i, s := range skins {
		c := *s
		c.Joints = make([]int, 0, len(s.Joints))
		complete := true
		for _, j := range s.Joints {
			nj, ok := remap[int(j)]
			if !ok {
				complete = false
				break
			}
			c.Joints = append(c.Joints, nj)
		}
		if !complete {
			continue
		}
		if s.Skeleton != nil {
			if nj, ok := remap[int(*s.Skeleton)]; ok {
				c.Skeleton = gltf.Index(nj)
			} else {
				c.Skeleton = nil
			}
		}
		skinMap[i] = len(out)
		out = append(out, &c)
	}
	return out, skinMap
}

// subsetAnimations keeps the channels that target exported nodes and drops
// animations left without channels.
func subsetAnimations(anims []*gltf.Animation, remap map[int]int) []*gltf.Animation {
	var out []*gltf.Animation
	for _, a := range anims {
		c := *a
		c.Channels = nil
		for _, ch := range a.Channels {
			if ch.Target.Node == nil {
				continue
			}
			nj, ok := remap[int(*ch.Target.Node)]
			if !ok {
				continue
			}
			cc := *ch
			cc.Target.Node = gltf.Index(nj)
			c.Channels = append(c.Channels, &cc)
		}
		if len(c.Channels) > 0 {
			out = append(out, &c)
		}
	}
	return out
}

// binaryBuffers copies the buffer list so the first buffer lands in the GLB
// binary chunk and any others are embedded as data URIs.
func binaryBuffers(buffers []*gltf.Buffer) []*gltf.Buffer {
	out := make([]*gltf.Buffer, len(buffers))
	for i, b := range buffers {
		c := *b
		if i == 0 {
			c.URI = ""
		} else if !c.IsEmbeddedResource() {
			c.EmbeddedResource()
		}
		out[i] = &c
	}
	return out
}
