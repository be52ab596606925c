// Package xcresult parses Xcode result bundles into an InvocationRecord.
//
// A bundle is read in three steps: the Info.plist descriptor is decoded and checked
// against the one storage format this package understands, the root node is
// materialized as JSON by xcresulttool, and the typed JSON tree is turned into
// records with every field access checking its type tag.
package xcresult

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TypeInfo is the "_type" entry every xcresulttool object carries.
type TypeInfo struct {
	Name      string    `json:"_name"`
	Supertype *TypeInfo `json:"_supertype,omitempty"`
}

// Node is one object of the xcresulttool JSON tree.
//
// Primitive nodes (Int, String, Date, ...) keep their payload in Value and arrays
// keep their elements in Values. Every other key of the object is a named field;
// a field whose value is JSON null is kept as a nil child.
type Node struct {
	Type   TypeInfo
	Value  string
	Values []*Node
	Fields map[string]*Node
}

// DecodeNode decodes xcresulttool JSON output into a Node tree.
func DecodeNode(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return &n, nil
}

// UnmarshalJSON splits the reserved "_type", "_value" and "_values" keys from
// the named fields.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	node := Node{Fields: make(map[string]*Node, len(raw))}
	for key, msg := range raw {
		switch key {
		case "_type":
			if err := json.Unmarshal(msg, &node.Type); err != nil {
				return fmt.Errorf("invalid _type: %w", err)
			}
		case "_value":
			// xcresulttool always quotes values, but keep numbers and booleans readable too.
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				s = string(msg)
			}
			node.Value = s
		case "_values":
			if err := json.Unmarshal(msg, &node.Values); err != nil {
				return fmt.Errorf("invalid _values: %w", err)
			}
		default:
			if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
				node.Fields[key] = nil
				continue
			}
			var child Node
			if err := json.Unmarshal(msg, &child); err != nil {
				return fmt.Errorf("invalid field %s: %w", key, err)
			}
			node.Fields[key] = &child
		}
	}

	*n = node
	return nil
}

// TypeName returns the concrete type name of the node.
func (n *Node) TypeName() string {
	if n == nil {
		return ""
	}
	return n.Type.Name
}

// Has reports whether the node has a non-null field with the given name.
func (n *Node) Has(field string) bool {
	return n.Fields[field] != nil
}

// Field returns the named child node. A null field is reported present with a
// nil child.
func (n *Node) Field(field string) (*Node, bool) {
	child, ok := n.Fields[field]
	return child, ok
}
