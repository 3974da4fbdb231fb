// Package datamodel is a schema-driven validation and traversal engine for
// tree-shaped clinical records modelled on FHIR R5.
//
// Record types are described at runtime by schema entries held in a
// registry; records are generic trees of fields and values. The same
// validator, traversal engine and builder serve every registered type.
//
// # Quick Start
//
//	import (
//	    "github.com/gofhir/datamodel/pkg/builder"
//	    "github.com/gofhir/datamodel/pkg/r5"
//	    "github.com/gofhir/datamodel/pkg/value"
//	)
//
//	reg, err := r5.NewRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	part := value.Assemble(r5.AppointmentParticipantType,
//	    value.Scalar("actor", value.Ref("Patient", "123")),
//	    value.Scalar("status", value.Code("accepted")),
//	)
//	b, _ := builder.New(reg, r5.AppointmentType)
//	b.Stage("status", value.Code("booked"))
//	b.Append("participant", value.Nested(part))
//	rec, err := b.Build()
//	if issues, ok := issue.AsIssues(err); ok {
//	    for _, iss := range issues {
//	        fmt.Println(iss.Expression(), iss.Diagnostics)
//	    }
//	}
//
// # Packages
//
//   - pkg/schema: registry of record type descriptions
//   - pkg/value: records, fields and values
//   - pkg/validator: collects every issue of a record, constraints last
//   - pkg/traverse: iterative depth-first walk with visitor hooks
//   - pkg/builder: staged construction ending in validation
//   - pkg/loader: schema entries from YAML, JSON or StructureDefinitions
//   - pkg/worker: parallel batch validation
//
// # Issue Paths
//
// Every issue carries the path of the offending field from the validated
// root, for example participant[2].actor. Paths render and parse in the
// same notation; see pkg/path.
package datamodel
