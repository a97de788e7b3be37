// Package info defines the data model the clustering engine consumes: the
// Item type and the closed set of kinds a documented member can have.
package info

import "sort"

// Kind is the closed set of item kinds the engine recognizes.
type Kind string

const (
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindInterface   Kind = "interface"
	KindEnum        Kind = "enum"
	KindDelegate    Kind = "delegate"
	KindMethod      Kind = "method"
	KindProperty    Kind = "property"
	KindField       Kind = "field"
	KindEvent       Kind = "event"
	KindOperator    Kind = "operator"
	KindConstructor Kind = "constructor"
	KindUnknown     Kind = "unknown"
)

// GlobalNamespace is the literal namespace value that, alongside an absent
// namespace, marks an item as belonging to the global namespace.
const GlobalNamespace = "Global"

// globalKinds is the set of kinds eligible for global clustering.
var globalKinds = map[Kind]bool{
	KindClass:     true,
	KindStruct:    true,
	KindInterface: true,
	KindEnum:      true,
	KindDelegate:  true,
}

// Item is the engine's immutable input unit: a single documented member.
type Item struct {
	UID         string   `json:"uid" yaml:"uid"`
	Name        string   `json:"name" yaml:"name"`
	FullName    string   `json:"fullName" yaml:"fullName"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Namespace   string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Inheritance []string `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
	Implements  []string `json:"implements,omitempty" yaml:"implements,omitempty"`
}

// IsGlobal reports whether the item is a Global Item per spec: a type-kind
// item with no namespace, or the literal namespace "Global".
func (it Item) IsGlobal() bool {
	if !globalKinds[it.Kind] {
		return false
	}
	return it.Namespace == "" || it.Namespace == GlobalNamespace
}

// BaseClass returns the immediate base class identifier: the last element of
// the root-to-immediate-base inheritance chain, or "" if there is none.
func (it Item) BaseClass() string {
	if len(it.Inheritance) == 0 {
		return ""
	}
	return it.Inheritance[len(it.Inheritance)-1]
}

// Index is a read-only mapping from item identifier to Item.
type Index map[string]Item

// Global returns the UIDs of every global item in the index, sorted for
// deterministic iteration downstream.
func (idx Index) Global() []string {
	var uids []string
	for uid, it := range idx {
		if it.IsGlobal() {
			uids = append(uids, uid)
		}
	}
	sort.Strings(uids)
	return uids
}
