package assets

import (
	"io/fs"
	"testing"
)

func TestEmbeddedManifests(t *testing.T) {
	for _, name := range []string{"manifest.json", "demos/manifest.yaml"} {
		if _, err := fs.Stat(Apps, name); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if len(FontTTF) == 0 {
		t.Fatalf("font is empty")
	}
}
