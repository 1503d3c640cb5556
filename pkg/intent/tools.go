package intent

import "github.com/aria-assistant/aria/pkg/types"

// Tool names the resolver can hand back to the dispatcher.
const (
	ToolControlSpotify = "control_spotify"
	ToolManageCalendar = "manage_calendar"
	ToolGeneralQuery   = "general_query"
)

const systemPrompt = `You are a helpful voice assistant with access to Spotify and Calendar.
Be concise in responses since this is voice interaction.
Current date/time context will be provided when needed.
Always use the appropriate tool for user requests.`

// assistantTools is the closed set of tool schemas registered with the model.
// Selection between them is left to the model ("auto" tool choice).
func assistantTools() []types.Tool {
	return []types.Tool{
		{
			Name:        ToolControlSpotify,
			Description: "Control Spotify playback and search for music",
			Parameters: types.JSONSchema{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type":        "string",
						"enum":        []any{"play", "pause", "skip", "previous", "search", "current"},
						"description": "The action to perform",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Search query for songs, artists, or playlists",
					},
					"type": map[string]any{
						"type":        "string",
						"enum":        []any{"track", "artist", "playlist", "album"},
						"description": "Type of content to search for",
					},
				},
				"required": []any{"action"},
			},
		},
		{
			Name:        ToolManageCalendar,
			Description: "Create, update, delete or query calendar events",
			Parameters: types.JSONSchema{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type":        "string",
						"enum":        []any{"create", "update", "delete", "query", "list"},
						"description": "The calendar action to perform",
					},
					"event_data": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":       map[string]any{"type": "string"},
							"date":        map[string]any{"type": "string", "description": "Date in YYYY-MM-DD format"},
							"time":        map[string]any{"type": "string", "description": "Time in HH:MM format"},
							"duration":    map[string]any{"type": "integer", "description": "Duration in minutes"},
							"description": map[string]any{"type": "string"},
							"attendees": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
					"query_params": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"date":       map[string]any{"type": "string"},
							"days_ahead": map[string]any{"type": "integer"},
						},
					},
				},
				"required": []any{"action"},
			},
		},
		{
			Name:        ToolGeneralQuery,
			Description: "Answer general questions that don't require specific tools",
			Parameters: types.JSONSchema{
				"type": "object",
				"properties": map[string]any{
					"response": map[string]any{
						"type":        "string",
						"description": "The response to the user's question",
					},
				},
				"required": []any{"response"},
			},
		},
	}
}
