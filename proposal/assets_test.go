package proposal

import "testing"

func TestResolveImage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/foo.png", "https://gcu-development-portal.vercel.app/foo.png"},
		{"/assets/proposal/avatar-placeholder.jpg", "https://gcu-development-portal.vercel.app/assets/proposal/avatar-placeholder.jpg"},
		{"https://x/y.png", "https://x/y.png"},
		{"relative/path.png", "relative/path.png"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ResolveImage(tc.in); got != tc.want {
			t.Fatalf("ResolveImage(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestAssetResolverCustomBase(t *testing.T) {
	r := AssetResolver{BaseURL: "http://localhost:3000/"}
	if got := r.Resolve("/logo.png"); got != "http://localhost:3000/logo.png" {
		t.Fatalf("unexpected resolved url %q", got)
	}
}
