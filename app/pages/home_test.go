package pages

import (
	"testing"

	"github.com/sputnik-dev/sputnik/pkg/vdom"
	"github.com/sputnik-dev/sputnik/pkg/vtest"
)

func TestHomeHasMountPoint(t *testing.T) {
	page := Home("Sputnik", DefaultMountID)

	mount := vdom.FindByID(page, DefaultMountID)
	if mount == nil {
		t.Fatal("mount point #login not found")
	}
	if len(mount.Children) != 0 {
		t.Errorf("mount point should start empty, has %d children", len(mount.Children))
	}

	html := vtest.RenderToString(t, page)
	vtest.ExpectContains(t, html, `<div aria-live="polite" id="login"></div>`)
	vtest.ExpectContains(t, html, "<h1>Sputnik</h1>")
}

func TestHomeCustomMount(t *testing.T) {
	page := Home("x", "likes")
	if vdom.FindByID(page, "likes") == nil || vdom.FindByID(page, DefaultMountID) != nil {
		t.Error("mount id should follow the argument")
	}
}
