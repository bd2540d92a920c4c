package analyzer

// Best-effort static type names. TypeUnknown suppresses method validation
// so uninferable receivers never produce false positives.
const (
	TypeUnknown = ""
	TypeNumber  = "Number"
	TypeString  = "String"
	TypeBoolean = "Boolean"
	TypeNil     = "Nil"
	TypeArray   = "Array"
	TypeMap     = "Map"
	TypeSet     = "Set"
	TypeRange   = "Range"

	TypeMath = "Math"
	TypeFile = "File"
	TypeDb   = "Db"
	TypeUuid = "Uuid"
)
