package domain

import (
	"sort"
	"strings"
)

// Well-known site setting keys.
const (
	SettingRestaurantName = "restaurant_name"
	SettingPhoneNumber    = "phone_number"
	SettingGoogleMap      = "googleMap"
	SettingAddress        = "address"
	SettingEmail          = "email"
	SettingLogo           = "logo"
	SettingCurrency       = "currency"
	SettingWifiPassword   = "wifi_password"
	SettingOpeningHours   = "opening_hours"
)

// SiteSettings is the open key/value bag of restaurant settings. Unknown
// keys pass through untouched.
type SiteSettings map[string]string

// Get returns the value for key and whether it was set.
func (s SiteSettings) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Value returns the value for key or fallback when unset or blank.
func (s SiteSettings) Value(key, fallback string) string {
	if v := strings.TrimSpace(s[key]); v != "" {
		return v
	}
	return fallback
}

func (s SiteSettings) RestaurantName() string { return s.Value(SettingRestaurantName, "") }
func (s SiteSettings) PhoneNumber() string    { return s.Value(SettingPhoneNumber, "") }
func (s SiteSettings) GoogleMap() string      { return s.Value(SettingGoogleMap, "") }
func (s SiteSettings) Address() string        { return s.Value(SettingAddress, "") }
func (s SiteSettings) Email() string          { return s.Value(SettingEmail, "") }
func (s SiteSettings) Logo() string           { return s.Value(SettingLogo, "") }
func (s SiteSettings) WifiPassword() string   { return s.Value(SettingWifiPassword, "") }
func (s SiteSettings) OpeningHours() string   { return s.Value(SettingOpeningHours, "") }

// Currency defaults to TRY when the restaurant has not configured one.
func (s SiteSettings) Currency() string { return s.Value(SettingCurrency, "TRY") }

// Keys returns the setting keys in sorted order.
func (s SiteSettings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (s SiteSettings) Clone() SiteSettings {
	out := make(SiteSettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SettingUpdate is the PUT /settings/:key payload.
type SettingUpdate struct {
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	IsPublic *bool  `json:"is_public,omitempty"`
}
