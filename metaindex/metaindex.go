// Package metaindex answers immediate-base-class and implemented-interface
// queries about an item by identifier.
package metaindex

import "github.com/viant/globalns/info"

// Index answers base-class and interface queries against an item index.
type Index struct {
	items info.Index
}

// New wraps an item index for metadata queries.
func New(items info.Index) *Index {
	return &Index{items: items}
}

// BaseClass returns the UID of the item's immediate base class, or "" if it
// has none or is unknown.
func (x *Index) BaseClass(uid string) string {
	it, ok := x.items[uid]
	if !ok {
		return ""
	}
	return it.BaseClass()
}

// Interfaces returns the UIDs of the item's implemented interfaces.
func (x *Index) Interfaces(uid string) []string {
	it, ok := x.items[uid]
	if !ok {
		return nil
	}
	return it.Implements
}
