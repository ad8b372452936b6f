package model

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Snapshot is the public API of one codebase version. Element maps are keyed
// by fully qualified name and keep insertion order. A snapshot is built once
// and treated as read-only afterwards.
type Snapshot struct {
	Classes    *orderedmap.OrderedMap[string, *Class]
	Interfaces *orderedmap.OrderedMap[string, *Interface]
	Functions  *orderedmap.OrderedMap[string, *Function]
	Constants  *orderedmap.OrderedMap[string, *Constant]
	// Files maps relative path to content checksum.
	Files map[string]string
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Classes:    orderedmap.New[string, *Class](),
		Interfaces: orderedmap.New[string, *Interface](),
		Functions:  orderedmap.New[string, *Function](),
		Constants:  orderedmap.New[string, *Constant](),
		Files:      make(map[string]string),
	}
}

func (s *Snapshot) AddClass(c *Class)         { s.Classes.Set(c.FullyQualifiedName(), c) }
func (s *Snapshot) AddInterface(i *Interface) { s.Interfaces.Set(i.FullyQualifiedName(), i) }
func (s *Snapshot) AddFunction(f *Function)   { s.Functions.Set(f.FullyQualifiedName(), f) }
func (s *Snapshot) AddConstant(c *Constant)   { s.Constants.Set(c.FullyQualifiedName(), c) }

// AddFile records the checksum of a scanned file.
func (s *Snapshot) AddFile(path, checksum string) {
	s.Files[path] = checksum
}

// Merge appends every element and file of other, in other's order.
// Elements with an existing FQN replace the earlier declaration.
func (s *Snapshot) Merge(other *Snapshot) {
	for p := other.Classes.Oldest(); p != nil; p = p.Next() {
		s.Classes.Set(p.Key, p.Value)
	}
	for p := other.Interfaces.Oldest(); p != nil; p = p.Next() {
		s.Interfaces.Set(p.Key, p.Value)
	}
	for p := other.Functions.Oldest(); p != nil; p = p.Next() {
		s.Functions.Set(p.Key, p.Value)
	}
	for p := other.Constants.Oldest(); p != nil; p = p.Next() {
		s.Constants.Set(p.Key, p.Value)
	}
	for path, sum := range other.Files {
		s.Files[path] = sum
	}
}

// Len returns the number of top-level elements.
func (s *Snapshot) Len() int {
	return s.Classes.Len() + s.Interfaces.Len() + s.Functions.Len() + s.Constants.Len()
}

// Paths returns the checksummed file paths in sorted order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
