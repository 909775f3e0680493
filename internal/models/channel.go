package models

// CatalogChannel is one record of a panel's available_channels map.
type CatalogChannel struct {
	StreamID     string `json:"stream_id"`
	Name         string `json:"name"`
	LogoURL      string `json:"stream_icon,omitempty"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
}
