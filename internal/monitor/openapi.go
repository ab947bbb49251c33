package monitor

import "github.com/JaimeStill/proctor/pkg/openapi"

var idParam = openapi.PathParam("id", "Session ID")

// Schemas returns the component schemas referenced by monitor operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"StartCommand": {
			Type:     "object",
			Required: []string{"candidate_name"},
			Properties: map[string]*openapi.Schema{
				"candidate_name": {Type: "string", Example: "Ada Lovelace"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "string", Format: "uuid"},
				"candidate_name":  {Type: "string"},
				"start_time":      {Type: "string", Format: "date-time"},
				"end_time":        {Type: "string", Format: "date-time"},
				"integrity_score": {Type: "integer"},
			},
		},
		"Tick": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"face_count":         {Type: "integer"},
				"focus_state":        {Type: "string", Enum: []any{"focused", "lost", "unknown"}},
				"detected_objects":   {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"confidence":         {Type: "object", Description: "Detection confidence keyed by object label"},
				"focus_lost_seconds": {Type: "integer"},
			},
		},
		"Event": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"session_id":  {Type: "string", Format: "uuid"},
				"kind":        {Type: "string", Enum: []any{"focus_lost", "candidate_absent", "multiple_faces", "unauthorized_item"}},
				"severity":    {Type: "string", Enum: []any{"critical", "major", "minor"}},
				"label":       {Type: "string"},
				"description": {Type: "string"},
				"timestamp":   {Type: "string", Format: "date-time"},
				"metadata":    {Type: "object"},
			},
		},
		"TickResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"events": openapi.ArrayOf("Event"),
				"score":  {Type: "integer"},
				"state":  {Type: "string", Enum: []any{"idle", "active", "ended"}},
			},
		},
		"MonitorStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session": openapi.SchemaRef("Session"),
				"state":   {Type: "string", Enum: []any{"idle", "active", "ended"}},
				"score":   {Type: "integer"},
				"events":  {Type: "integer"},
			},
		},
		"NotifierStats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"delivered": {Type: "integer"},
				"failed":    {Type: "integer"},
				"dropped":   {Type: "integer"},
			},
		},
	}
}

var startOp = &openapi.Operation{
	Summary:     "Start a monitored session",
	Tags:        []string{"Monitors"},
	RequestBody: openapi.RequestBodyJSON("StartCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Session started", "MonitorStatus"),
		400: openapi.ResponseRef("BadRequest"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var statsOp = &openapi.Operation{
	Summary: "Persistence delivery counters",
	Tags:    []string{"Monitors"},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Notifier stats", "NotifierStats"),
	},
}

var statusOp = &openapi.Operation{
	Summary:    "Live monitor state",
	Tags:       []string{"Monitors"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Monitor status", "MonitorStatus"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var tickOp = &openapi.Operation{
	Summary:     "Classify a perception tick",
	Tags:        []string{"Monitors"},
	Parameters:  []*openapi.Parameter{idParam},
	RequestBody: openapi.RequestBodyJSON("Tick", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Events produced by the tick", "TickResult"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var eventsOp = &openapi.Operation{
	Summary:    "In-memory event log",
	Tags:       []string{"Monitors"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseArrayJSON("Events ordered by timestamp", "Event"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var endOp = &openapi.Operation{
	Summary:    "End a session",
	Tags:       []string{"Monitors"},
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Ended session", "MonitorStatus"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var streamOp = &openapi.Operation{
	Summary:     "Stream ticks over WebSocket",
	Description: "Upgrades to a WebSocket. Each text frame carries a Tick and is answered with a tick_result, error, or ended message.",
	Tags:        []string{"Monitors"},
	Parameters:  []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		101: {Description: "Switching protocols"},
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
