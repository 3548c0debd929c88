package domain

import "time"

// TextPosition anchors the overlay text block on the canvas.
type TextPosition string

const (
	PositionTop    TextPosition = "top"
	PositionCenter TextPosition = "center"
	PositionBottom TextPosition = "bottom"
)

// NormalizeTextPosition sanitizes free-form input into a supported anchor.
func NormalizeTextPosition(s string) TextPosition {
	switch TextPosition(s) {
	case PositionTop:
		return PositionTop
	case PositionCenter:
		return PositionCenter
	default:
		return PositionBottom
	}
}

// OverlayStyle configures how overlay text is rasterized. Values are in
// preview-scale pixels; the compositor doubles size-like fields for export.
type OverlayStyle struct {
	FontSize    int    `json:"font_size"`
	Color       string `json:"color"`
	ShadowColor string `json:"shadow_color"`
	ShadowBlur  int    `json:"shadow_blur"`
}

// DefaultOverlayStyle mirrors the defaults offered by the editor UI.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{FontSize: 48, Color: "#ffffff", ShadowColor: "#000000", ShadowBlur: 8}
}

// GenerationRecord is one successful thumbnail generation. Immutable after
// insert; deletable only by its owner.
type GenerationRecord struct {
	ID             string
	UserID         string
	TextInput      string
	Template       string
	OverlayText    string
	TextPosition   TextPosition
	OverlayStyle   OverlayStyle
	ImageURL       string
	CreditsCharged int
	CreatedAt      time.Time
}
