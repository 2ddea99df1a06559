// Package theme maps a salon's color palette onto CSS variables.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"salonpro-gateway/models"
	"salonpro-gateway/store"
)

// Default is the platform palette, as HSL triplets.
var Default = models.TenantTheme{
	PrimaryColor:    "15 70% 45%",
	SecondaryColor:  "35 35% 92%",
	AccentColor:     "50 90% 60%",
	BackgroundColor: "25 35% 97%",
	TextColor:       "25 40% 15%",
	ButtonColor:     "15 90% 60%",
	LinkColor:       "15 90% 60%",
}

// Merge overlays the non-empty colors of over onto base.
func Merge(base models.TenantTheme, over *models.TenantTheme) models.TenantTheme {
	if over == nil {
		return base
	}
	pick := func(b, o string) string {
		if o = strings.TrimSpace(o); o != "" {
			return o
		}
		return b
	}
	return models.TenantTheme{
		PrimaryColor:    pick(base.PrimaryColor, over.PrimaryColor),
		SecondaryColor:  pick(base.SecondaryColor, over.SecondaryColor),
		AccentColor:     pick(base.AccentColor, over.AccentColor),
		BackgroundColor: pick(base.BackgroundColor, over.BackgroundColor),
		TextColor:       pick(base.TextColor, over.TextColor),
		ButtonColor:     pick(base.ButtonColor, over.ButtonColor),
		LinkColor:       pick(base.LinkColor, over.LinkColor),
	}
}

// Validate rejects values that could break out of a declaration.
func Validate(t models.TenantTheme) error {
	for _, v := range []string{t.PrimaryColor, t.SecondaryColor, t.AccentColor, t.BackgroundColor, t.TextColor, t.ButtonColor, t.LinkColor} {
		if strings.ContainsAny(v, ";{}<>\"'\\\n") || len(v) > 64 {
			return fmt.Errorf("invalid color value %q", v)
		}
	}
	return nil
}

// Variable is one CSS custom property.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variables lists the custom properties a theme sets. The five base colors
// also override the stock --primary, --secondary, --accent, --background
// and --foreground variables.
func Variables(t models.TenantTheme) []Variable {
	var vars []Variable
	add := func(value string, names ...string) {
		if value == "" {
			return
		}
		for _, n := range names {
			vars = append(vars, Variable{Name: n, Value: value})
		}
	}
	add(t.PrimaryColor, "--tenant-primary", "--primary")
	add(t.SecondaryColor, "--tenant-secondary", "--secondary")
	add(t.AccentColor, "--tenant-accent", "--accent")
	add(t.BackgroundColor, "--tenant-background", "--background")
	add(t.TextColor, "--tenant-foreground", "--foreground")
	add(t.ButtonColor, "--tenant-button")
	add(t.LinkColor, "--tenant-link")
	return vars
}

// CSS renders the theme as a :root block.
func CSS(t models.TenantTheme) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range Variables(t) {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

// SalonUpdater saves a theme on the salon record.
type SalonUpdater interface {
	UpdateSalonTheme(ctx context.Context, id models.ID, theme models.TenantTheme) (*models.Salon, error)
}

// Service loads and edits the theme of the session's salon. The salon
// record is authoritative; the session store keeps a per-salon fallback.
type Service struct {
	store  *store.SessionStore
	api    SalonUpdater
	logger *slog.Logger
}

func NewService(st *store.SessionStore, api SalonUpdater, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, api: api, logger: logger}
}

// Load returns the salon's theme over the defaults, else the stored
// fallback, else the defaults.
func (s *Service) Load(ctx context.Context, salon *models.Salon) models.TenantTheme {
	if salon == nil {
		return Default
	}
	if salon.Theme != nil {
		return Merge(Default, salon.Theme)
	}
	if saved := s.store.TenantTheme(ctx, salon.ID); saved != nil {
		return Merge(Default, saved)
	}
	return Default
}

// Update applies patch to the current theme, keeps the result as the
// local fallback and tries to save it on the salon. A failed save is
// logged; the returned salon is nil in that case.
func (s *Service) Update(ctx context.Context, salon *models.Salon, patch models.TenantTheme) (models.TenantTheme, *models.Salon, error) {
	if salon == nil {
		return Default, nil, fmt.Errorf("update theme: no salon")
	}
	if err := Validate(patch); err != nil {
		return Default, nil, err
	}
	updated := Merge(s.Load(ctx, salon), &patch)
	if err := s.store.SetTenantTheme(ctx, salon.ID, updated); err != nil {
		s.logger.Warn("store theme fallback", "salon", salon.ID, "err", err)
	}
	saved, err := s.api.UpdateSalonTheme(ctx, salon.ID, updated)
	if err != nil {
		s.logger.Warn("save theme on salon failed, kept locally", "salon", salon.ID, "err", err)
		return updated, nil, nil
	}
	return updated, saved, nil
}

// Reset drops the local fallback and returns the defaults.
func (s *Service) Reset(ctx context.Context, salon *models.Salon) models.TenantTheme {
	if salon != nil {
		if err := s.store.ClearTenantTheme(ctx, salon.ID); err != nil {
			s.logger.Warn("clear theme fallback", "salon", salon.ID, "err", err)
		}
	}
	return Default
}
