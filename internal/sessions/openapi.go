package sessions

import "github.com/JaimeStill/proctor/pkg/openapi"

var idParam = openapi.PathParam("id", "Session ID")

var filterParams = []*openapi.Parameter{
	openapi.QueryParam("candidate_name", "string", "Case-insensitive substring of the candidate name", false),
	openapi.QueryParam("active", "boolean", "true for sessions without an end time, false for ended sessions", false),
	openapi.QueryParam("min_score", "integer", "Minimum integrity score", false),
	openapi.QueryParam("max_score", "integer", "Maximum integrity score", false),
}

var pageParams = []*openapi.Parameter{
	openapi.QueryParam("page", "integer", "Page number", false),
	openapi.QueryParam("page_size", "integer", "Results per page", false),
	openapi.QueryParam("search", "string", "Search candidate names", false),
	openapi.QueryParam("sort", "string", "Comma-separated sort fields, prefix with - for descending", false),
}

// Schemas returns the component schemas referenced by session operations.
// Session and Event are contributed by the monitor package.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"SessionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        openapi.ArrayOf("Session"),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"SessionSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":           {Type: "integer"},
				"page_size":      {Type: "integer"},
				"search":         {Type: "string"},
				"sort":           {Type: "string", Example: "CandidateName,-StartTime"},
				"candidate_name": {Type: "string"},
				"active":         {Type: "boolean"},
				"min_score":      {Type: "integer"},
				"max_score":      {Type: "integer"},
			},
		},
	}
}

var listOp = &openapi.Operation{
	Summary:    "List sessions",
	Tags:       []string{"Sessions"},
	Parameters: append(append([]*openapi.Parameter{}, pageParams...), filterParams...),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of sessions", "SessionPage"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var searchOp = &openapi.Operation{
	Summary:     "Search sessions",
	Tags:        []string{"Sessions"},
	RequestBody: openapi.RequestBodyJSON("SessionSearch", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of sessions", "SessionPage"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a session",
	Tags:       []string{"Sessions"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Session record", "Session"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var eventsOp = &openapi.Operation{
	Summary: "Persisted session events",
	Tags:    []string{"Sessions"},
	Parameters: []*openapi.Parameter{
		idParam,
		openapi.QueryParam("kind", "string", "Only events of this kind", false),
		openapi.QueryParam("severity", "string", "Only events of this severity", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseArrayJSON("Events ordered by timestamp", "Event"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
