package domain

// SocialMedia is a restaurant profile link rendered in the footer.
type SocialMedia struct {
	ID           int64  `json:"id"`
	Platform     string `json:"platform"`
	URL          string `json:"url"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
	IsActive     Flag   `json:"is_active"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// SocialMediaInput is the create/update payload for a social media link.
type SocialMediaInput struct {
	Platform     string `json:"platform" validate:"required,max=50"`
	URL          string `json:"url" validate:"required,url"`
	Icon         string `json:"icon,omitempty" validate:"max=100"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
}
