package components

import (
	"encoding/json"
	"fmt"

	"github.com/sputnik-dev/sputnik/pkg/reactive"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

const (
	// LikeLabel is the text inside the unliked button.
	LikeLabel = "Like"

	// LikedText replaces the button once it has been clicked.
	LikedText = "You liked this."
)

// LikeButton is a toggle that flips from unliked to liked exactly once.
type LikeButton struct {
	liked  *reactive.Signal[bool]
	onLike func()
}

// Option configures a LikeButton.
type Option func(*LikeButton)

// OnLike registers fn to run once, on the click that flips the button to
// liked. Later clicks do not call it again.
func OnLike(fn func()) Option {
	return func(b *LikeButton) {
		b.onLike = fn
	}
}

// NewLikeButton creates an unliked button.
func NewLikeButton(opts ...Option) *LikeButton {
	b := &LikeButton{liked: reactive.NewSignal(false)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Render implements vdom.Component. Reading the state subscribes the
// rendering listener, so a click schedules a re-render.
func (b *LikeButton) Render() *vdom.VNode {
	if b.liked.Get() {
		return vdom.Text(LikedText)
	}
	return vdom.Fragment(
		vdom.Button(
			vdom.OnClick(b.HandleClick),
			Label{Text: LikeLabel},
		),
	)
}

// HandleClick marks the button liked. Calling it again is a no-op.
func (b *LikeButton) HandleClick() {
	if b.liked.Peek() {
		return
	}
	b.liked.Set(true)
	if b.onLike != nil {
		b.onLike()
	}
}

type likeButtonState struct {
	Liked bool `json:"liked"`
}

// Snapshot returns the button state for session persistence.
func (b *LikeButton) Snapshot() ([]byte, error) {
	return json.Marshal(likeButtonState{Liked: b.liked.Peek()})
}

// Restore loads state written by Snapshot. It never fires OnLike; the like
// was already recorded before the session was detached.
func (b *LikeButton) Restore(data []byte) error {
	var st likeButtonState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore like button: %w", err)
	}
	b.liked.Set(st.Liked)
	return nil
}
