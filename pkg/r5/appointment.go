package r5

import (
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/value"
)

const (
	AppointmentType            = "Appointment"
	AppointmentParticipantType = "Appointment.participant"
)

var participantActorTargets = []string{
	"Patient", "Group", "Practitioner", "PractitionerRole", "CareTeam",
	"RelatedPerson", "Device", "HealthcareService", "Location",
}

// Appointment returns the Appointment resource and its participant element.
func Appointment() []*schema.Entry {
	return []*schema.Entry{
		{
			TypeName:    AppointmentType,
			Kind:        schema.KindResource,
			Description: "A booking of a healthcare event among patient(s), practitioner(s), related person(s) and/or device(s) for a specific date/time",
			Common:      true,
			Fields: []schema.Field{
				list("identifier", tIdentifier),
				req("status", tCode),
				opt("cancellationReason", tCodeableConcept),
				list("serviceCategory", tCodeableConcept),
				list("serviceType", tCodeableConcept),
				list("specialty", tCodeableConcept),
				opt("appointmentType", tCodeableConcept),
				list("reason", tCodeableConcept),
				opt("priority", tCodeableConcept),
				opt("description", tString),
				opt("start", tInstant),
				opt("end", tInstant),
				opt("minutesDuration", tPosInt),
				opt("created", tDateTime),
				opt("cancellationDate", tDateTime),
				list("note", tAnnotation),
				opt("subject", schema.ReferenceTo("Patient", "Group")),
				nonEmpty("participant", schema.RecordOf(AppointmentParticipantType)),
			},
			Constraints: []schema.Constraint{
				{
					ID:          "app-2",
					Description: "Either start and end are specified, or neither",
					Check: func(r *value.Record) bool {
						return r.Has("start") == r.Has("end")
					},
				},
				{
					ID:          "app-4",
					Description: "Cancellation reason is only used for appointments that have been cancelled, or noshow",
					Check: func(r *value.Record) bool {
						if !r.Has("cancellationReason") {
							return true
						}
						status, _ := r.Get("status").Str()
						return status == "cancelled" || status == "noshow"
					},
				},
				{
					ID:          "app-5",
					Description: "The start must be less than or equal to the end",
					Check: func(r *value.Record) bool {
						return timeOrdered(r.Get("start"), r.Get("end"))
					},
				},
			},
		},
		{
			TypeName:    AppointmentParticipantType,
			Kind:        schema.KindElement,
			Description: "Participants involved in appointment",
			Common:      true,
			Fields: []schema.Field{
				list("type", tCodeableConcept),
				opt("period", tPeriod),
				opt("actor", schema.ReferenceTo(participantActorTargets...)),
				opt("required", tBoolean),
				req("status", tCode),
			},
			Constraints: []schema.Constraint{{
				ID:          "app-1",
				Description: "Either the type or actor on the participant SHALL be specified",
				Check: func(r *value.Record) bool {
					return r.Has("type") || r.Has("actor")
				},
			}},
		},
	}
}
