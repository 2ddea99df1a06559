package store

import (
	"context"
	"encoding/json"

	"salonpro-gateway/models"
)

// AccessToken implements apiclient.TokenStore.
func (s *SessionStore) AccessToken() string {
	v, _ := s.Get(KeyAccessToken)
	return v
}

func (s *SessionStore) RefreshToken() string {
	v, _ := s.Get(KeyRefreshToken)
	return v
}

func (s *SessionStore) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.Set(ctx, KeyAccessToken, access); err != nil {
		return err
	}
	return s.Set(ctx, KeyRefreshToken, refresh)
}

func (s *SessionStore) SetAccessToken(ctx context.Context, access string) error {
	return s.Set(ctx, KeyAccessToken, access)
}

// ClearTokens removes both tokens; both deletions are attempted.
func (s *SessionStore) ClearTokens(ctx context.Context) error {
	errAccess := s.Delete(ctx, KeyAccessToken)
	errRefresh := s.Delete(ctx, KeyRefreshToken)
	if errAccess != nil {
		return errAccess
	}
	return errRefresh
}

// SelectedTenant returns the salon a super-admin chose to view. A value
// that does not decode is discarded as if nothing was selected.
func (s *SessionStore) SelectedTenant(ctx context.Context) *models.Salon {
	raw, ok := s.Get(KeySelectedTenant)
	if !ok || raw == "" {
		return nil
	}
	var salon models.Salon
	if err := json.Unmarshal([]byte(raw), &salon); err != nil || salon.ID.IsZero() {
		s.logger.Warn("discarding corrupt selected tenant", "session", s.id, "err", err)
		_ = s.Delete(ctx, KeySelectedTenant)
		return nil
	}
	return &salon
}

func (s *SessionStore) SetSelectedTenant(ctx context.Context, salon models.Salon) error {
	raw, err := json.Marshal(salon)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeySelectedTenant, string(raw))
}

func (s *SessionStore) ClearSelectedTenant(ctx context.Context) error {
	return s.Delete(ctx, KeySelectedTenant)
}

// ThemeKey is the persisted key of a salon's theme fallback.
func ThemeKey(salonID models.ID) string {
	return themeKeyPrefix + salonID.String()
}

// TenantTheme returns the locally saved theme of a salon, discarding a
// corrupt value.
func (s *SessionStore) TenantTheme(ctx context.Context, salonID models.ID) *models.TenantTheme {
	key := ThemeKey(salonID)
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return nil
	}
	var theme models.TenantTheme
	if err := json.Unmarshal([]byte(raw), &theme); err != nil {
		s.logger.Warn("discarding corrupt tenant theme", "session", s.id, "salon", salonID, "err", err)
		_ = s.Delete(ctx, key)
		return nil
	}
	return &theme
}

func (s *SessionStore) SetTenantTheme(ctx context.Context, salonID models.ID, theme models.TenantTheme) error {
	raw, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	return s.Set(ctx, ThemeKey(salonID), string(raw))
}

func (s *SessionStore) ClearTenantTheme(ctx context.Context, salonID models.ID) error {
	return s.Delete(ctx, ThemeKey(salonID))
}
