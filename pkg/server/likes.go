package server

import (
	"context"
	"encoding/json"
	"net/http"
)

// DefaultLikesPath serves the like count of the mounted widget.
const DefaultLikesPath = "/_sputnik/likes"

// LikeCounter reports how many likes a widget has received.
type LikeCounter interface {
	Count(ctx context.Context, widget string) (int64, error)
}

// WithLikeCounter exposes counter at DefaultLikesPath. Without it the route
// is not registered.
func WithLikeCounter(counter LikeCounter) Option {
	return func(o *serverOptions) { o.likes = counter }
}

type likeCount struct {
	Widget string `json:"widget"`
	Count  int64  `json:"count"`
}

func (s *Server) handleLikes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.WriteTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	n, err := s.likes.Count(ctx, s.config.MountID)
	if err != nil {
		s.logger.Warn("like count failed", "widget", s.config.MountID, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "like count unavailable"})
		return
	}
	json.NewEncoder(w).Encode(likeCount{Widget: s.config.MountID, Count: n})
}
