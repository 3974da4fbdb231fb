// Package loader builds schema entries from external descriptions: FHIR
// StructureDefinitions (snapshot form) and YAML or JSON schema documents.
//
// A YAML document describes one type:
//
//	type: Appointment.participant
//	kind: element
//	common: true
//	fields:
//	  - name: actor
//	    references: [Patient, Practitioner]
//	  - name: status
//	    cardinality: required
//	    type: code
//	constraints:
//	  - id: app-1
//	    description: Either the type or actor on the participant SHALL be specified
//	    expression: type.exists() or actor.exists()
//
// Several documents may share one YAML stream separated by "---". The JSON
// form is an array of the same objects.
package loader
