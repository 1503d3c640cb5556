package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aria-assistant/aria/pkg/intent"
	"github.com/aria-assistant/aria/pkg/types"
)

// Player is the media-control integration consumed by the dispatcher.
// *spotify.Session implements it; tests inject fakes.
type Player interface {
	ControlPlayback(ctx context.Context, action string) types.ActionResult
	SearchAndPlay(ctx context.Context, query, kind string) types.ActionResult
	CurrentTrack(ctx context.Context) types.ActionResult
}

// Dispatcher maps a resolved tool invocation to a concrete action against an
// integration and normalizes every outcome into an ActionResult. It performs
// no retries and no timeout control of its own; integrations are trusted to
// fail fast with a descriptive error.
type Dispatcher struct {
	player Player
	log    *slog.Logger
}

func NewDispatcher(player Player, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{player: player, log: log}
}

// Dispatch executes one resolved tool invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, args map[string]any) types.ActionResult {
	switch tool {
	case intent.ToolControlSpotify:
		return d.dispatchSpotify(ctx, args)

	case intent.ToolManageCalendar:
		// Intentional stub: the schema stays registered so the model can
		// route calendar requests here and the user gets a clear answer.
		return types.InfoResult("Calendar integration coming soon!")

	case intent.ToolGeneralQuery:
		// Pure pass-through of the model's own generated text.
		return types.SuccessResult(stringArg(args, "response", ""))

	default:
		return types.ErrorResult(fmt.Sprintf("Unknown tool: %s", tool))
	}
}

func (d *Dispatcher) dispatchSpotify(ctx context.Context, args map[string]any) types.ActionResult {
	action := stringArg(args, "action", "")
	switch action {
	case "play", "pause", "skip", "previous":
		return d.player.ControlPlayback(ctx, action)
	case "search":
		query := stringArg(args, "query", "")
		kind := stringArg(args, "type", "track")
		return d.player.SearchAndPlay(ctx, query, kind)
	case "current":
		return d.player.CurrentTrack(ctx)
	default:
		// The model occasionally invents action values outside the schema
		// enum; answer explicitly instead of dropping the request.
		d.log.Warn("unsupported spotify action", "action", action)
		return types.ErrorResult(fmt.Sprintf("Unsupported action: %s", action))
	}
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}
