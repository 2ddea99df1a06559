package models

// TenantTheme holds optional HSL color overrides for a salon's pages.
// Empty fields fall back to the platform default.
type TenantTheme struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	AccentColor     string `json:"accentColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	ButtonColor     string `json:"buttonColor,omitempty"`
	LinkColor       string `json:"linkColor,omitempty"`
}
