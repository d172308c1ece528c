package scraper

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, `
tonkro:
  base_url: https://tonkro.ci
  categories:
    - url: https://tonkro.ci/categorie/immobilier/vente-appartement
      type: vente
  detail:
    title: [h1, .title]
    image: ['.gallery img@src']
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	site, ok := s.Get("TONKRO")
	if !ok {
		t.Fatal("site not found case-insensitively")
	}
	if site.Name != "tonkro" || site.PerCategory != 5 || site.AdLink == "" {
		t.Errorf("defaults not applied: %+v", site)
	}
	if len(site.Detail.Title) != 2 || site.Categories[0].Type != "vente" {
		t.Errorf("unexpected site: %+v", site)
	}
}

func TestLoadRejectsIncompleteSite(t *testing.T) {
	path := writeFile(t, "broken:\n  name: Broken\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a site without base_url")
	}
}

func TestLoadShippedSources(t *testing.T) {
	s, err := Load(filepath.Join("..", "sources.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	site, ok := s.Get("tonkro")
	if !ok || len(site.Categories) != 4 {
		t.Fatalf("tonkro site: %+v", site)
	}
}

func TestResolve(t *testing.T) {
	site := Site{BaseURL: "https://tonkro.ci/"}
	tests := map[string]string{
		"/annonce/1":                  "https://tonkro.ci/annonce/1",
		"annonce/2":                   "https://tonkro.ci/annonce/2",
		"https://cdn.tonkro.ci/a.jpg": "https://cdn.tonkro.ci/a.jpg",
		"":                            "",
	}
	for in, want := range tests {
		if got := site.Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q; want %q", in, got, want)
		}
	}
}
