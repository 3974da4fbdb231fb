package datamodel

// Version is the release of this module.
const Version = "0.1.0"

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// FHIR versions the loaders understand.
const (
	// R4 is FHIR Release 4 (4.0.1), the StructureDefinition format read by pkg/loader
	R4 FHIRVersion = "R4"
	// R5 is FHIR Release 5 (5.0.0), the release pkg/r5 models
	R5 FHIRVersion = "R5"
)

// BuiltinRelease is the FHIR release of the built-in schemas.
const BuiltinRelease = R5

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// UserAgent identifies the module in tool output.
func UserAgent() string {
	return "datamodel/" + Version + " (FHIR " + BuiltinRelease.String() + ")"
}
