package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"/metrics":                    "/metrics",
		"/auth/login":                 "/auth/login",
		"/obituaries":                 "/obituaries",
		"/obituaries/my":              "/obituaries/my",
		"/obituaries/01ABCDEF":        "/obituaries/:id",
		"/obituaries/01ABCDEF?x=1":    "/obituaries/:id",
		"/obituaries/01ABCDEF/extra":  "/obituaries/01ABCDEF/extra",
		"/obituaries?skip=10&limit=5": "/obituaries",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
