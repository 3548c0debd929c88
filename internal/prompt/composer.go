// Package prompt turns a topic and a template choice into the final
// text-to-image instruction sent to the generation backend.
package prompt

import (
	"fmt"
	"strings"
)

// Template identifies one of the fixed thumbnail styles.
type Template string

const (
	TemplateMinimal   Template = "minimal"
	TemplateGaming    Template = "gaming"
	TemplateTech      Template = "tech"
	TemplateCinematic Template = "cinematic"
	TemplateCustom    Template = "custom"
)

// styleFragments maps each template to the descriptive fragment injected into
// the prompt. Unknown templates fall back to the custom fragment.
var styleFragments = map[Template]string{
	TemplateMinimal:   "clean minimalist composition, subtle gradients, modern aesthetic, soft lighting, professional, white space, geometric shapes, muted colors",
	TemplateGaming:    "bold neon colors, RGB lighting effects, dynamic action poses, electric energy, glowing elements, cyberpunk vibes, high contrast, dramatic explosions, futuristic gaming setup",
	TemplateTech:      "futuristic technology, holographic displays, circuit board patterns, blue and cyan glow, data visualization, sleek devices, digital matrix, clean lines, innovation",
	TemplateCinematic: "dramatic cinematic lighting, movie poster quality, golden hour atmosphere, epic scale, depth of field, lens flare, anamorphic look, theatrical composition",
	TemplateCustom:    "ultra high quality, photorealistic, stunning visual composition, professional photography, perfect lighting, magazine cover quality",
}

// qualitySuffix demands photorealism, forbids embedded lettering (the overlay
// is rendered by the compositor, not the model) and pins the framing.
const qualitySuffix = "ultra high resolution, 4K quality, photorealistic, cinematic composition, dramatic lighting, vibrant colors, professional YouTube thumbnail background, no text, no words, no letters, 16:9 aspect ratio"

// NormalizeTemplate sanitizes free-form input into a supported template.
func NormalizeTemplate(s string) Template {
	switch t := Template(strings.ToLower(strings.TrimSpace(s))); t {
	case TemplateMinimal, TemplateGaming, TemplateTech, TemplateCinematic, TemplateCustom:
		return t
	default:
		return TemplateCustom
	}
}

// StyleFragment returns the descriptive fragment for a template.
func StyleFragment(t Template) string {
	if fragment, ok := styleFragments[t]; ok {
		return fragment
	}
	return styleFragments[TemplateCustom]
}

// Compose builds the final prompt from the literal topic, the template's
// style fragment and the fixed quality suffix. Pure function, no errors.
func Compose(topic string, template Template) string {
	return fmt.Sprintf("%s, %s, %s", strings.TrimSpace(topic), StyleFragment(template), qualitySuffix)
}
