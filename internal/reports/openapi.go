package reports

import "github.com/JaimeStill/proctor/pkg/openapi"

var idParam = openapi.PathParam("id", "Session ID")

// Schemas returns the component schemas referenced by report operations.
func Schemas() map[string]*openapi.Schema {
	count := &openapi.Schema{Type: "integer"}
	return map[string]*openapi.Schema{
		"ReportSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"duration_minutes":   count,
				"total_events":       count,
				"focus_lost":         count,
				"candidate_absent":   count,
				"multiple_faces":     count,
				"unauthorized_items": count,
				"integrity_score":    count,
				"recomputed_score":   count,
				"verified":           {Type: "boolean"},
			},
		},
		"ReportCharts": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"events_by_hour": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"hour":   {Type: "string", Example: "09:00"},
							"events": count,
						},
					},
				},
				"severity_distribution": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"severity": {Type: "string", Enum: []any{"critical", "major", "minor"}},
							"count":    count,
						},
					},
				},
			},
		},
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session":      openapi.SchemaRef("Session"),
				"summary":      openapi.SchemaRef("ReportSummary"),
				"charts":       openapi.SchemaRef("ReportCharts"),
				"events":       openapi.ArrayOf("Event"),
				"generated_at": {Type: "string", Format: "date-time"},
			},
		},
		"ArchivedReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"key":    {Type: "string", Example: "reports/3f1c9a9e-6f0e-4c4b-9d43-2f3a5f4b8c11.json"},
				"report": openapi.SchemaRef("Report"),
			},
		},
	}
}

var generateOp = &openapi.Operation{
	Summary:    "Generate a session report",
	Tags:       []string{"Reports"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Session report", "Report"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var archiveOp = &openapi.Operation{
	Summary:    "Archive a report to blob storage",
	Tags:       []string{"Reports"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Archived report", "ArchivedReport"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var downloadOp = &openapi.Operation{
	Summary:    "Download an archived report",
	Tags:       []string{"Reports"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Archived report document", "Report"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
