package models

// Entry represents a single playlist item (name, stream url, group, logo, tvg ids).
type Entry struct {
	Name      string `json:"name"`
	StreamURL string `json:"url"`
	Category  string `json:"group,omitempty"`
	LogoURL   string `json:"logo,omitempty"`
	TVGID     string `json:"tvg_id,omitempty"`
	TVGName   string `json:"tvg_name,omitempty"`
}
