// Package catalog declares the F1 tools: one Endpoint per tool, all served by a
// single generic operation over the remote client.
package catalog

import (
	"maps"

	"github.com/petal-labs/f1mcp/tool"
)

const (
	// DefaultLimit is applied when a list or search call omits limit.
	DefaultLimit = 30
	// DefaultOffset is applied when a list or search call omits offset.
	DefaultOffset = 0
)

// Endpoint maps one tool onto one remote path.
type Endpoint struct {
	Tool        string
	Title       string
	Description string
	// Path is relative to the API base and may hold {name} placeholders filled
	// from string arguments.
	Path   string
	Params map[string]tool.ParamSpec
	// Query lists the arguments sent as query parameters, in wire order.
	Query []string
	// FailureText is the error label used by the HTTP handlers on upstream failure.
	FailureText string
	// MissingText is the error label used when the required argument is absent.
	MissingText string
}

// Descriptor returns the tool descriptor registered for e.
func (e Endpoint) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        e.Tool,
		Title:       e.Title,
		Description: e.Description,
		Params:      maps.Clone(e.Params),
	}
}

func pagingParams() map[string]tool.ParamSpec {
	return map[string]tool.ParamSpec{
		"limit": {
			Type:        tool.TypeInteger,
			Default:     DefaultLimit,
			Description: "Number of records to return per request (default: 30)",
		},
		"offset": {
			Type:        tool.TypeInteger,
			Default:     DefaultOffset,
			Description: "Number of records to skip before starting to fetch (default: 0)",
		},
	}
}

func searchParams(description string) map[string]tool.ParamSpec {
	params := pagingParams()
	params["q"] = tool.ParamSpec{Type: tool.TypeString, Required: true, Description: description}
	return params
}

func idParams(name, description string) map[string]tool.ParamSpec {
	return map[string]tool.ParamSpec{
		name: {Type: tool.TypeString, Required: true, Description: description},
	}
}

var endpoints = []Endpoint{
	{
		Tool:        "get_all_drivers",
		Title:       "Get All Drivers",
		Description: "Get all Formula 1 drivers, including active and retired drivers",
		Path:        "/drivers",
		Params:      pagingParams(),
		Query:       []string{"limit", "offset"},
		FailureText: "Failed to fetch drivers",
	},
	{
		Tool:        "search_drivers",
		Title:       "Search Drivers",
		Description: "Search for Formula 1 drivers by name or surname",
		Path:        "/drivers/search",
		Params:      searchParams("Search query for driver name or surname"),
		Query:       []string{"q", "limit", "offset"},
		FailureText: "Failed to search drivers",
		MissingText: "Query parameter 'q' is required",
	},
	{
		Tool:        "get_driver_by_id",
		Title:       "Get Driver By ID",
		Description: "Get a Formula 1 driver by their ID",
		Path:        "/drivers/{driverId}",
		Params:      idParams("driverId", "The unique identifier for the driver"),
		FailureText: "Failed to fetch driver",
		MissingText: "Driver ID is required",
	},
	{
		Tool:        "get_current_drivers",
		Title:       "Get Current Drivers",
		Description: "Get all current Formula 1 drivers for the current season",
		Path:        "/drivers/current",
		Params:      pagingParams(),
		Query:       []string{"limit", "offset"},
		FailureText: "Failed to fetch current drivers",
	},
	{
		Tool:        "get_all_teams",
		Title:       "Get All Teams",
		Description: "Get all Formula 1 teams, including active and past teams",
		Path:        "/teams",
		Params:      pagingParams(),
		Query:       []string{"limit", "offset"},
		FailureText: "Failed to fetch teams",
	},
	{
		Tool:        "search_teams",
		Title:       "Search Teams",
		Description: "Search for Formula 1 teams by team name",
		Path:        "/teams/search",
		Params:      searchParams("Search query for team name"),
		Query:       []string{"q", "limit", "offset"},
		FailureText: "Failed to search teams",
		MissingText: "Query parameter 'q' is required",
	},
	{
		Tool:        "get_team_by_id",
		Title:       "Get Team By ID",
		Description: "Get a Formula 1 team by its ID",
		Path:        "/teams/{teamId}",
		Params:      idParams("teamId", "The unique identifier for the team"),
		FailureText: "Failed to fetch team",
		MissingText: "Team ID is required",
	},
	{
		Tool:        "get_current_teams",
		Title:       "Get Current Teams",
		Description: "Get all current Formula 1 teams for the current season",
		Path:        "/teams/current",
		Params:      pagingParams(),
		Query:       []string{"limit", "offset"},
		FailureText: "Failed to fetch current teams",
	},
}

// Endpoints returns the tool table in registration order.
func Endpoints() []Endpoint {
	out := make([]Endpoint, len(endpoints))
	for i, e := range endpoints {
		e.Params = maps.Clone(e.Params)
		e.Query = append([]string(nil), e.Query...)
		out[i] = e
	}
	return out
}

// Lookup returns the endpoint backing the named tool.
func Lookup(name string) (Endpoint, bool) {
	for _, e := range Endpoints() {
		if e.Tool == name {
			return e, true
		}
	}
	return Endpoint{}, false
}
