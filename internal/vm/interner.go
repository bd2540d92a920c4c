package vm

// Interner deduplicates strings so equal contents share one object.
// Each VM owns its interner; nothing is process-wide.
type Interner struct {
	strings map[string]*StringObject
}

func NewInterner() *Interner {
	return &Interner{strings: make(map[string]*StringObject)}
}

// Intern returns the canonical StringObject for s
func (in *Interner) Intern(s string) *StringObject {
	if obj, ok := in.strings[s]; ok {
		return obj
	}
	obj := &StringObject{Value: s}
	in.strings[s] = obj
	return obj
}

// Count returns the number of distinct interned strings
func (in *Interner) Count() int {
	return len(in.strings)
}
