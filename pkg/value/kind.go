package value

// Kind identifies which variant of the Value union is populated.
type Kind uint8

// Value kinds.
const (
	KindAbsent Kind = iota
	KindPrimitive
	KindRecord
	KindReference
	KindChoice
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindReference:
		return "reference"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// PrimitiveType names a primitive data type. Names follow FHIR.
type PrimitiveType string

// Primitive types.
const (
	TypeString       PrimitiveType = "string"
	TypeCode         PrimitiveType = "code"
	TypeID           PrimitiveType = "id"
	TypeMarkdown     PrimitiveType = "markdown"
	TypeURI          PrimitiveType = "uri"
	TypeURL          PrimitiveType = "url"
	TypeCanonical    PrimitiveType = "canonical"
	TypeOID          PrimitiveType = "oid"
	TypeUUID         PrimitiveType = "uuid"
	TypeBase64Binary PrimitiveType = "base64Binary"
	TypeBoolean      PrimitiveType = "boolean"
	TypeInteger      PrimitiveType = "integer"
	TypeInteger64    PrimitiveType = "integer64"
	TypePositiveInt  PrimitiveType = "positiveInt"
	TypeUnsignedInt  PrimitiveType = "unsignedInt"
	TypeDecimal      PrimitiveType = "decimal"
	TypeDate         PrimitiveType = "date"
	TypeDateTime     PrimitiveType = "dateTime"
	TypeInstant      PrimitiveType = "instant"
	TypeTime         PrimitiveType = "time"
)

// primitiveTypes maps every known primitive to the Go representation
// class its raw value must have.
var primitiveTypes = map[PrimitiveType]RawClass{
	TypeString:       RawString,
	TypeCode:         RawString,
	TypeID:           RawString,
	TypeMarkdown:     RawString,
	TypeURI:          RawString,
	TypeURL:          RawString,
	TypeCanonical:    RawString,
	TypeOID:          RawString,
	TypeUUID:         RawString,
	TypeBase64Binary: RawString,
	TypeBoolean:      RawBool,
	TypeInteger:      RawInt,
	TypeInteger64:    RawInt,
	TypePositiveInt:  RawInt,
	TypeUnsignedInt:  RawInt,
	TypeDecimal:      RawDecimal,
	TypeDate:         RawString,
	TypeDateTime:     RawString,
	TypeInstant:      RawString,
	TypeTime:         RawString,
}

// RawClass is the Go representation of a primitive's raw value.
type RawClass uint8

// Raw value classes.
const (
	RawInvalid RawClass = iota
	RawString           // string
	RawBool             // bool
	RawInt              // int64
	RawDecimal          // decimal.Decimal
)

// Known reports whether t is a recognised primitive type.
func (t PrimitiveType) Known() bool {
	_, ok := primitiveTypes[t]
	return ok
}

// RawClass returns the Go representation expected for t.
func (t PrimitiveType) RawClass() RawClass {
	return primitiveTypes[t]
}

// IsPrimitive reports whether name is a primitive type name.
func IsPrimitive(name string) bool {
	return PrimitiveType(name).Known()
}
