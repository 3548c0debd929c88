package prompt

import (
	"strings"
	"testing"
)

func TestComposeContainsTopicAndFragment(t *testing.T) {
	topic := "10 AI Tools That Will Change Your Life"
	got := Compose(topic, TemplateCinematic)

	if !strings.HasPrefix(got, topic) {
		t.Fatalf("prompt must start with the literal topic, got %q", got)
	}
	if !strings.Contains(got, "dramatic cinematic lighting") {
		t.Fatalf("prompt missing cinematic fragment: %q", got)
	}
	if !strings.Contains(got, "no text, no words, no letters") {
		t.Fatalf("prompt missing no-lettering instruction: %q", got)
	}
	if !strings.Contains(got, "16:9 aspect ratio") {
		t.Fatalf("prompt missing framing instruction: %q", got)
	}
}

func TestNormalizeTemplateFallsBackToCustom(t *testing.T) {
	cases := map[string]Template{
		"minimal":   TemplateMinimal,
		"GAMING":    TemplateGaming,
		" tech ":    TemplateTech,
		"cinematic": TemplateCinematic,
		"custom":    TemplateCustom,
		"vaporwave": TemplateCustom,
		"":          TemplateCustom,
	}
	for input, want := range cases {
		if got := NormalizeTemplate(input); got != want {
			t.Errorf("NormalizeTemplate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestUnknownTemplateUsesCustomFragment(t *testing.T) {
	got := Compose("cats", Template("does-not-exist"))
	if !strings.Contains(got, "magazine cover quality") {
		t.Fatalf("unknown template should use the custom fragment, got %q", got)
	}
}
