package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/sputnik-dev/sputnik/app/components"
	"github.com/sputnik-dev/sputnik/app/pages"
	"github.com/sputnik-dev/sputnik/internal/config"
	"github.com/sputnik-dev/sputnik/pkg/likes"
	"github.com/sputnik-dev/sputnik/pkg/server"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// homePage renders the page with its mount point at the configured id.
func homePage(cfg *config.Config) server.PageFunc {
	title, mountID := cfg.Server.Title, cfg.Server.MountID
	return func() *vdom.VNode {
		return pages.Home(title, mountID)
	}
}

// newWidgetFactory returns a factory of like buttons that report each like
// to rec under the widget name.
func newWidgetFactory(rec likes.Recorder, widget string, logger *slog.Logger) server.WidgetFactory {
	return func(sessionID string) server.Widget {
		return components.NewLikeButton(components.OnLike(func() {
			ev := likes.Event{Widget: widget, SessionID: sessionID, LikedAt: time.Now().UTC()}
			if err := rec.Record(context.Background(), ev); err != nil {
				logger.Warn("recording like failed", "session_id", sessionID, "error", err)
			}
		}))
	}
}
