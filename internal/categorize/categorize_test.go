package categorize

import (
	"errors"
	"testing"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/models"
)

func TestCategorize_Examples(t *testing.T) {
	cases := []struct {
		url  string
		want models.Category
	}{
		{"https://www.github.com/foo", models.CategoryDev},
		{"https://mail.news.example.com", models.CategoryNews},
		{"https://shop.amazon.co.uk", models.CategoryShopping},
		{"https://www.reddit.com/r/golang", models.CategorySocial},
		{"https://company.atlassian.net/wiki", models.CategoryWork},
		{"https://www.bbc.co.uk/news", models.CategoryNews},
		{"https://example.org", models.CategoryOther},
		{"https://dev.to/someone", models.CategoryDev},
		{"https://GitHub.COM/upper", models.CategoryDev},
		{"http://localhost:8080/", models.CategoryOther},
		// "dev." is a plain substring: it also fires inside a label.
		{"https://mydev.example.com", models.CategoryDev},
		{"https://devonshire.com", models.CategoryOther},
		{"https://developer.mozilla.org/en-US/", models.CategoryOther},
		{"about:blank", models.CategoryOther},
		{"file:///home/me/notes.html", models.CategoryOther},
	}
	for _, tc := range cases {
		got, err := Categorize(tc.url)
		if err != nil {
			t.Fatalf("Categorize(%q): %v", tc.url, err)
		}
		if got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestCategorize_RuleOrder(t *testing.T) {
	cases := []struct {
		host string
		want models.Category
	}{
		// social beats dev
		{"https://github.facebook.com", models.CategorySocial},
		// dev beats work
		{"https://docs.github.com", models.CategoryDev},
		// work beats news
		{"https://docs.news.example", models.CategoryWork},
		{"https://news.docs.example", models.CategoryWork},
		// news beats shopping
		{"https://news.amazon.com", models.CategoryNews},
		{"https://amazonnews.example", models.CategoryNews},
	}
	for _, tc := range cases {
		got, err := Categorize(tc.host)
		if err != nil {
			t.Fatalf("Categorize(%q): %v", tc.host, err)
		}
		if got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.host, got, tc.want)
		}
	}
}

func TestCategorize_SubstringMatchIncludesSubdomains(t *testing.T) {
	got, err := Categorize("https://mynews.example.com/page")
	if err != nil {
		t.Fatal(err)
	}
	if got != models.CategoryNews {
		t.Errorf("got %q, want news", got)
	}
}

func TestCategorize_HostnameOnly(t *testing.T) {
	// Path and query never take part in matching.
	got, err := Categorize("https://example.com/github/news?q=amazon")
	if err != nil {
		t.Fatal(err)
	}
	if got != models.CategoryOther {
		t.Errorf("got %q, want other", got)
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	urls := []string{"https://stackoverflow.com/q/1", "https://trello.com/b", "https://x.com"}
	for _, u := range urls {
		first, err := Categorize(u)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 5; i++ {
			again, _ := Categorize(u)
			if again != first {
				t.Fatalf("Categorize(%q) changed from %q to %q", u, first, again)
			}
		}
	}
}

func TestCategorize_InvalidURL(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"www.github.com/foo",
		"https://exa mple.com",
		"http://[::1",
		"http://",
		"https:///path",
		"http:example.com",
		"HTTPS://:8080/x",
	}
	for _, u := range cases {
		_, err := Categorize(u)
		if !errors.Is(err, apperr.ErrInvalidURL) {
			t.Errorf("Categorize(%q) err = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestHostname_LowercaseWithoutPort(t *testing.T) {
	got, err := Hostname("https://A.Example.COM:8443/path")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a.example.com" {
		t.Errorf("Hostname = %q", got)
	}
}

func TestHostname_EmptyForHostlessSchemes(t *testing.T) {
	for _, u := range []string{"about:blank", "file:///tmp/a.html", "data:text/plain,hi"} {
		got, err := Hostname(u)
		if err != nil {
			t.Errorf("Hostname(%q): %v", u, err)
			continue
		}
		if got != "" {
			t.Errorf("Hostname(%q) = %q, want empty", u, got)
		}
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	r := Rules()
	r[0].Patterns[0] = "mutated"
	if Rules()[0].Patterns[0] == "mutated" {
		t.Error("Rules must not expose internal state")
	}
	if len(r) != 5 {
		t.Errorf("len(Rules) = %d, want 5", len(r))
	}
}
