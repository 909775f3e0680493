package models

// CatalogCategory is a panel category (category_id / category_name).
type CatalogCategory struct {
	ID   string `json:"category_id"`
	Name string `json:"category_name"`
}
