package analyzer

import "sort"

// VariadicArity marks a method that accepts any number of arguments.
const VariadicArity = -1

// MethodSig describes one method known to the static registry.
type MethodSig struct {
	Arity      int
	ReturnType string
}

// MethodRegistry maps a static type name to its known methods. Built-in
// types are seeded at construction; struct methods are registered during
// declaration collection.
type MethodRegistry struct {
	methods map[string]map[string]MethodSig
}

func NewMethodRegistry() *MethodRegistry {
	r := &MethodRegistry{methods: make(map[string]map[string]MethodSig)}

	r.methods[TypeString] = map[string]MethodSig{
		"length":    {0, TypeNumber},
		"toUpper":   {0, TypeString},
		"toLower":   {0, TypeString},
		"trim":      {0, TypeString},
		"contains":  {1, TypeBoolean},
		"substring": {2, TypeString},
		"split":     {1, TypeArray},
	}
	r.methods[TypeArray] = map[string]MethodSig{
		"push":     {1, TypeNil},
		"pop":      {0, TypeUnknown},
		"length":   {0, TypeNumber},
		"contains": {1, TypeBoolean},
		"join":     {1, TypeString},
	}
	r.methods[TypeMap] = map[string]MethodSig{
		"get":    {1, TypeUnknown},
		"set":    {2, TypeNil},
		"has":    {1, TypeBoolean},
		"remove": {1, TypeNil},
		"keys":   {0, TypeArray},
		"values": {0, TypeArray},
		"length": {0, TypeNumber},
	}
	r.methods[TypeSet] = map[string]MethodSig{
		"add":    {1, TypeNil},
		"has":    {1, TypeBoolean},
		"remove": {1, TypeNil},
		"length": {0, TypeNumber},
	}
	r.methods[TypeRange] = map[string]MethodSig{
		"contains": {1, TypeBoolean},
	}

	// Native namespaces share the same method-call syntax.
	r.methods[TypeMath] = map[string]MethodSig{
		"abs":   {1, TypeNumber},
		"floor": {1, TypeNumber},
		"ceil":  {1, TypeNumber},
		"sqrt":  {1, TypeNumber},
		"pow":   {2, TypeNumber},
		"min":   {VariadicArity, TypeNumber},
		"max":   {VariadicArity, TypeNumber},
	}
	r.methods[TypeFile] = map[string]MethodSig{
		"read":   {1, TypeString},
		"write":  {2, TypeNil},
		"exists": {1, TypeBoolean},
	}
	r.methods[TypeDb] = map[string]MethodSig{
		"open":  {1, TypeUnknown},
		"exec":  {2, TypeNumber},
		"query": {2, TypeArray},
		"close": {1, TypeNil},
	}
	r.methods[TypeUuid] = map[string]MethodSig{
		"v4":    {0, TypeString},
		"parse": {1, TypeString},
	}

	return r
}

// RegisterStruct adds a user struct's methods under its type name.
func (r *MethodRegistry) RegisterStruct(name string, methods map[string]int) {
	sigs := make(map[string]MethodSig, len(methods))
	for m, arity := range methods {
		sigs[m] = MethodSig{Arity: arity, ReturnType: TypeUnknown}
	}
	r.methods[name] = sigs
}

// Lookup returns the signature of typeName.method.
func (r *MethodRegistry) Lookup(typeName, method string) (MethodSig, bool) {
	sigs, ok := r.methods[typeName]
	if !ok {
		return MethodSig{}, false
	}
	sig, ok := sigs[method]
	return sig, ok
}

// Knows reports whether typeName has any registered methods at all.
func (r *MethodRegistry) Knows(typeName string) bool {
	_, ok := r.methods[typeName]
	return ok
}

// MethodNames returns typeName's methods sorted for stable error messages.
func (r *MethodRegistry) MethodNames(typeName string) []string {
	sigs := r.methods[typeName]
	names := make([]string, 0, len(sigs))
	for name := range sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
