package domain

// File is an in-memory upload as received from a form.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadResult is the normalized outcome of a file upload. When Fallback is
// set the URL is a data URL built locally and nothing was stored remotely.
type UploadResult struct {
	Key      string `json:"key,omitempty"`
	Value    string `json:"value"`
	ImageURL string `json:"image_url"`
	Fallback bool   `json:"fallback"`
}
