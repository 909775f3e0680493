package models

// Catalog is a decoded panel dump: categories, channels and the
// connection parameters used to build stream urls.
type Catalog struct {
	Categories map[string][]CatalogCategory // keyed by CategoryKind*
	Channels   []CatalogChannel             // document order
	Server     ServerInfo
	User       UserInfo
}

// ServerInfo holds the panel's server_info connection fields.
type ServerInfo struct {
	Protocol string `json:"server_protocol"`
	Host     string `json:"url"`
	Port     string `json:"port"`
}

// UserInfo holds the panel's user_info credentials.
type UserInfo struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
