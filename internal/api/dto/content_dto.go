package dto

import "github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"

// SettingUpdateRequest payload for PUT /admin/settings/:key.
type SettingUpdateRequest struct {
	Value    string `json:"value"`
	Type     string `json:"type"`
	IsPublic *bool  `json:"is_public"`
}

// ToDomain converts the request.
func (r SettingUpdateRequest) ToDomain() domain.SettingUpdate {
	return domain.SettingUpdate{Value: r.Value, Type: r.Type, IsPublic: r.IsPublic}
}

// InvalidateRequest names the cache entries to clear; empty means all.
type InvalidateRequest struct {
	Resources []string `json:"resources"`
}
