package models

import "strings"

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is an insertion-ordered mapping with unique keys.
// Setting an existing key replaces its value in place.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// ObjectOf builds an Object from members in order. Later duplicates overwrite
// earlier ones without moving them.
func ObjectOf(members ...Member) *Object {
	o := &Object{
		members: make([]Member, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

// Len returns the number of members. A nil Object is empty.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value bound to key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Set binds key to v, keeping the original position of an existing key.
func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].Key] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	if o == nil {
		return keys
	}
	for _, m := range o.members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Members returns a copy of the member list in insertion order. The values
// are not cloned.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// Range calls fn for every member in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, m := range o.members {
		if !fn(m.Key, m.Value) {
			return
		}
	}
}

// Clone deep-copies the Object.
func (o *Object) Clone() *Object {
	out := &Object{
		members: make([]Member, o.Len()),
		index:   make(map[string]int, o.Len()),
	}
	if o == nil {
		return out
	}
	for i, m := range o.members {
		out.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		out.index[m.Key] = i
	}
	return out
}

func (o *Object) equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i := 0; i < o.Len(); i++ {
		a, b := o.members[i], other.members[i]
		if a.Key != b.Key || !Equal(a.Value, b.Value) {
			return false
		}
	}
	return true
}

func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o.Members() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(String(m.Key).String())
		sb.WriteString(": ")
		sb.WriteString(m.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
