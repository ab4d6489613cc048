package omh

import "strings"

// Columns is the column-selection tree supplied by the platform's
// column_list parameter. A nil tree or a leaf node selects every field;
// an interior node selects only its named children.
type Columns struct {
	children map[string]*Columns
}

// ParseColumnList builds a Columns tree from a comma-separated list of
// colon-delimited paths, e.g. "data:duration,data:type". An empty list
// yields nil, meaning no filtering.
func ParseColumnList(raw string) *Columns {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	root := &Columns{}
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		node := root
		for _, segment := range strings.Split(path, ":") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			node = node.ensureChild(segment)
		}
	}
	if root.Leaf() {
		return nil
	}
	return root
}

func (c *Columns) ensureChild(name string) *Columns {
	if c.children == nil {
		c.children = make(map[string]*Columns)
	}
	child, ok := c.children[name]
	if !ok {
		child = &Columns{}
		c.children[name] = child
	}
	return child
}

// Leaf reports whether the node has no children.
func (c *Columns) Leaf() bool {
	return c == nil || len(c.children) == 0
}

// Has reports whether the node names the given child.
func (c *Columns) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.children[name]
	return ok
}

// Child returns the named child node, or nil.
func (c *Columns) Child(name string) *Columns {
	if c == nil {
		return nil
	}
	return c.children[name]
}
