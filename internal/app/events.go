package app

import (
	"image"

	"github.com/ayusman/handmade/internal/board"
	"github.com/ayusman/handmade/internal/hook"
	"github.com/ayusman/handmade/internal/store"
)

// hookEvents maps a board transition to the bindable events it fires, in
// firing order. A stroke starts on the first drawn segment and ends on the
// first frame that does not draw.
func hookEvents(prev, cur board.Event) []string {
	var events []string
	if prev == board.EventDraw && cur != board.EventDraw {
		events = append(events, store.EventStrokeEnd)
	}
	switch {
	case cur == board.EventErase:
		events = append(events, store.EventErase)
	case cur == board.EventDraw && prev != board.EventDraw:
		events = append(events, store.EventStrokeStart)
	}
	return events
}

func (a *App) dispatchHooks(session string, index int, prev board.Event, up board.Update) {
	if a.cfg.Hooks == nil || a.cfg.Store == nil {
		return
	}

	events := hookEvents(prev, up.Event)
	if len(events) == 0 {
		return
	}

	point := up.Tip
	if up.Event == board.EventErase {
		point = up.Erased.Center
	}

	for _, event := range events {
		bindings, err := a.cfg.Store.Bindings().ListEnabledByEvent(event)
		if err != nil {
			a.logger.Error().Err(err).Str("event", event).Msg("failed to load bindings")
			continue
		}

		for _, b := range bindings {
			a.cfg.Hooks.Submit(hook.Job{
				Hook: b.HookName,
				Request: hook.Request{
					Action:  b.ActionName,
					Event:   event,
					Session: session,
					Frame:   index,
					Point:   eventPoint(event, point),
					Config:  b.Config,
				},
			})
		}
	}
}

// eventPoint returns the board point reported with an event. A stroke end
// carries no point of its own.
func eventPoint(event string, p image.Point) image.Point {
	if event == store.EventStrokeEnd {
		return image.Point{}
	}
	return p
}
