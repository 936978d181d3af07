package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "keys,scripts,seed" {
		t.Fatalf("topics: %q", got)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" KEYS ")
	if !ok || !strings.HasPrefix(body, "# Keys") {
		t.Fatalf("Get(keys) = %q, %v", body, ok)
	}
	for _, bad := range []string{"", "nope", "../docs"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
