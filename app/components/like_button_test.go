package components

import (
	"testing"

	"github.com/sputnik-dev/sputnik/pkg/reactive"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
	"github.com/sputnik-dev/sputnik/pkg/vtest"
)

func TestLikeButtonInitialRender(t *testing.T) {
	b := NewLikeButton()

	html := vtest.RenderToString(t, b.Render())
	if html != `<button data-hid="h1">Like</button>` {
		t.Errorf("initial render = %q", html)
	}
	vtest.ExpectNotContains(t, html, LikedText)
	if b.liked.Peek() {
		t.Error("new button should not be liked")
	}
}

func TestLikeButtonClick(t *testing.T) {
	likes := 0
	b := NewLikeButton(OnLike(func() { likes++ }))

	b.HandleClick()
	if got := vtest.RenderToString(t, b.Render()); got != LikedText {
		t.Errorf("after click = %q, want %q", got, LikedText)
	}

	b.HandleClick()
	b.HandleClick()
	if got := vtest.RenderToString(t, b.Render()); got != LikedText {
		t.Errorf("after repeated clicks = %q", got)
	}
	if likes != 1 {
		t.Errorf("OnLike fired %d times, want 1", likes)
	}
}

func TestLikeButtonLabel(t *testing.T) {
	node := vdom.Resolve(vdom.Div(NewLikeButton()))
	btn := vtest.ExpectElement(t, node, "button")

	if len(btn.Children) != 1 || btn.Children[0].Kind != vdom.KindComponent {
		t.Fatalf("button children = %+v", btn.Children)
	}
	label, ok := btn.Children[0].Comp.(Label)
	if !ok || label.Text != LikeLabel {
		t.Errorf("label = %#v", btn.Children[0].Comp)
	}
}

func TestLikeButtonMarksRendererDirty(t *testing.T) {
	b := NewLikeButton()
	dirty := 0
	l := reactive.NewListenerFunc(func() { dirty++ })

	reactive.WithListener(l, func() { b.Render() })
	b.HandleClick()
	if dirty != 1 {
		t.Errorf("listener marked dirty %d times, want 1", dirty)
	}

	b.HandleClick()
	if dirty != 1 {
		t.Errorf("second click should not re-render, dirty = %d", dirty)
	}
}

func TestLikeButtonSnapshotRestore(t *testing.T) {
	fired := false
	src := NewLikeButton()
	src.HandleClick()

	data, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"liked":true}` {
		t.Errorf("Snapshot() = %s", data)
	}

	dst := NewLikeButton(OnLike(func() { fired = true }))
	if err := dst.Restore(data); err != nil {
		t.Fatal(err)
	}
	if !dst.liked.Peek() || fired {
		t.Errorf("restored liked=%v fired=%v", dst.liked.Peek(), fired)
	}
	if err := dst.Restore([]byte("{")); err == nil {
		t.Error("expected error for malformed snapshot")
	}
}

func TestLabel(t *testing.T) {
	html := vtest.RenderToString(t, Label{Text: "<b>Like</b>"}.Render())
	if html != "&lt;b&gt;Like&lt;/b&gt;" {
		t.Errorf("Label render = %q", html)
	}
}

func TestLikeButtonMounted(t *testing.T) {
	tests := []struct {
		name   string
		clicks int
		want   string
	}{
		{"mount", 0, `<button data-hid="h1">Like</button>`},
		{"click", 1, LikedText},
		{"click twice", 2, LikedText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := vtest.Mount(t, NewLikeButton())
			vtest.ExpectContains(t, h.HTML(), LikeLabel)

			handled := 0
			for i := 0; i < tt.clicks; i++ {
				if h.Click("h1") {
					handled++
				}
			}
			if got := h.HTML(); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
			if tt.clicks > 0 && handled != 1 {
				t.Errorf("%d clicks handled, want 1; later clicks target a removed button", handled)
			}
		})
	}
}

func TestLikeButtonClickPatch(t *testing.T) {
	h := vtest.Mount(t, NewLikeButton())
	h.Click("h1")

	patches := h.Patches()
	if len(patches) != 1 || len(patches[0]) != 1 {
		t.Fatalf("patches = %+v", patches)
	}
	p := patches[0][0]
	if p.Op != vdom.PatchReplaceChildren || p.HID != vtest.MountHID {
		t.Errorf("patch = %s on %s, want ReplaceChildren on %s", p.Op, p.HID, vtest.MountHID)
	}
}
