package domain

// Banner is a hero slide shown on the diner landing page.
type Banner struct {
	ID           int64  `json:"id"`
	Title        string `json:"title,omitempty"`
	Subtitle     string `json:"subtitle,omitempty"`
	ImageURL     string `json:"image_url"`
	ButtonText   string `json:"button_text,omitempty"`
	ButtonLink   string `json:"button_link,omitempty"`
	DisplayOrder int    `json:"display_order"`
	IsActive     Flag   `json:"is_active"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// BannerInput is the create/update payload for a banner.
type BannerInput struct {
	Title        string `json:"title,omitempty" validate:"max=255"`
	Subtitle     string `json:"subtitle,omitempty" validate:"max=255"`
	ImageURL     string `json:"image_url" validate:"required"`
	ButtonText   string `json:"button_text,omitempty" validate:"max=100"`
	ButtonLink   string `json:"button_link,omitempty"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
}
