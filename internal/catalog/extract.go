package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/voyagen/m3ulive/internal/models"
	"github.com/voyagen/m3ulive/internal/playlist"
)

// ExtractCategories returns the live categories whose name is included.
func ExtractCategories(c *models.Catalog, included *models.AllowSet) []models.CatalogCategory {
	var out []models.CatalogCategory
	for _, cat := range c.Categories[models.CategoryKindLive] {
		if included.Contains(cat.Name) {
			out = append(out, cat)
		}
	}
	return out
}

// IndexByID maps category id to category. Later duplicates win.
func IndexByID(cats []models.CatalogCategory) map[string]models.CatalogCategory {
	index := make(map[string]models.CatalogCategory, len(cats))
	for _, cat := range cats {
		index[cat.ID] = cat
	}
	return index
}

// FilterChannelsByCategory keeps channels whose category id is in index.
func FilterChannelsByCategory(channels []models.CatalogChannel, index map[string]models.CatalogCategory) []models.CatalogChannel {
	var out []models.CatalogChannel
	for _, ch := range channels {
		if _, ok := index[ch.CategoryID]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// BaseURL builds {protocol}://{host}:{port}/{username}/{password}.
func BaseURL(c *models.Catalog) string {
	return fmt.Sprintf("%s://%s:%s/%s/%s",
		c.Server.Protocol, c.Server.Host, c.Server.Port, c.User.Username, c.User.Password)
}

// Entries converts channels into playlist entries. The group title comes from
// the owning category in index; the stream url is {baseURL}/{streamID}.ts.
func Entries(channels []models.CatalogChannel, index map[string]models.CatalogCategory, baseURL string) []models.Entry {
	out := make([]models.Entry, 0, len(channels))
	for _, ch := range channels {
		category := ch.CategoryName
		if cat, ok := index[ch.CategoryID]; ok {
			category = cat.Name
		}
		out = append(out, models.Entry{
			Name:      ch.Name,
			StreamURL: baseURL + "/" + ch.StreamID + ".ts",
			Category:  category,
			LogoURL:   ch.LogoURL,
			TVGID:     ch.StreamID,
			TVGName:   ch.Name,
		})
	}
	return out
}

// Render writes a complete playlist for channels to w.
func Render(w io.Writer, channels []models.CatalogChannel, index map[string]models.CatalogCategory, baseURL string) error {
	if err := playlist.WriteHeader(w); err != nil {
		return err
	}
	for _, e := range Entries(channels, index, baseURL) {
		if err := playlist.WriteEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

// CategoryNames lists the category names of kind (live, vod or series) in
// catalog order.
func CategoryNames(c *models.Catalog, kind string) ([]string, error) {
	cats, ok := c.Categories[kind]
	if !ok {
		return nil, missing("categories." + kind)
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}
	return names, nil
}

// WriteCategoryDump writes {"all_categories": [...]} as indented JSON.
func WriteCategoryDump(w io.Writer, names []string) error {
	if names == nil {
		names = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(struct {
		AllCategories []string `json:"all_categories"`
	}{names})
}
