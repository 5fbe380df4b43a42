package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// IDKey is the metadata key holding a node's persistent id.
const IDKey = "CC_id"

// IDGenerator produces new persistent ids.
type IDGenerator func() string

// NewShortID returns the first 8 characters of a random UUID.
// Collisions are possible and not detected.
func NewShortID() string {
	return uuid.NewString()[:8]
}

// storedID returns the id already persisted on the node, if any.
func storedID(n *Node) string {
	if n.ID != "" {
		return n.ID
	}
	if v, ok := n.Extras[IDKey]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return ""
}

// EnsureID gives n a persistent id if it has none and reports whether a new
// one was generated. An id found in Extras is adopted, never regenerated.
func EnsureID(n *Node, gen IDGenerator) bool {
	if id := storedID(n); id != "" {
		n.ID = id
		if n.Extras == nil {
			n.Extras = make(map[string]any)
		}
		if _, ok := n.Extras[IDKey]; !ok {
			n.Extras[IDKey] = id
		}
		return false
	}
	if gen == nil {
		gen = NewShortID
	}
	n.ID = gen()
	if n.Extras == nil {
		n.Extras = make(map[string]any)
	}
	n.Extras[IDKey] = n.ID
	return true
}

// AssignIDs runs EnsureID over every Component and Container in objects
// and returns the number of ids generated.
func AssignIDs(objects []*Node, gen IDGenerator) int {
	assigned := 0
	for _, o := range objects {
		if !o.Kind().Marker() {
			continue
		}
		if EnsureID(o, gen) {
			assigned++
		}
	}
	return assigned
}

// FolderName returns "<name>_CC_id_<id>", using "unknown" for a missing id.
func FolderName(n *Node) string {
	id := n.ID
	if id == "" {
		id = "unknown"
	}
	return n.Name + "_CC_id_" + id
}
