package docs

import (
	"strings"
	"testing"
)

func TestTopics_HaveTitles(t *testing.T) {
	topics := Topics()
	if len(topics) == 0 {
		t.Fatalf("expected embedded topics")
	}
	for _, tp := range topics {
		if tp.Title == "" || tp.Title == tp.Name {
			t.Fatalf("topic %q has no heading", tp.Name)
		}
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Keys ")
	if !ok || !strings.Contains(body, "ctrl+s") {
		t.Fatalf("expected the keys page, got ok=%v", ok)
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("path-like topics must not resolve")
	}
	if _, ok := Get("missing"); ok {
		t.Fatalf("unknown topic resolved")
	}
}
