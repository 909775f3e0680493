// Package catalog turns a panel catalog dump into a playlist restricted to an
// allow-list of live categories.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/voyagen/m3ulive/internal/models"
)

// ErrFieldMissing matches every *FieldError.
var ErrFieldMissing = errors.New("catalog field missing")

// FieldError reports a catalog key that is absent or has the wrong JSON type.
type FieldError struct {
	Field  string // dotted path, e.g. "server_info.port"
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("catalog field %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrFieldMissing) true for any *FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrFieldMissing
}

func missing(path string) error {
	return &FieldError{Field: path, Reason: "missing"}
}

func wrongType(path, want string) error {
	return &FieldError{Field: path, Reason: "expected " + want}
}

// object is one JSON object level with lazily decoded members.
type object struct {
	path    string
	members map[string]json.RawMessage
}

func decodeObject(path string, raw json.RawMessage) (object, error) {
	var members map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &members) != nil {
		return object{}, wrongType(path, "object")
	}
	return object{path: path, members: members}, nil
}

func (o object) child(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o object) raw(key string) (json.RawMessage, bool) {
	raw, ok := o.members[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (o object) object(key string) (object, error) {
	raw, ok := o.raw(key)
	if !ok {
		return object{}, missing(o.child(key))
	}
	return decodeObject(o.child(key), raw)
}

// str returns a required string member.
func (o object) str(key string) (string, error) {
	raw, ok := o.raw(key)
	if !ok {
		return "", missing(o.child(key))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", wrongType(o.child(key), "string")
	}
	return s, nil
}

// optionalStr returns a string member, or "" when absent or null.
func (o object) optionalStr(key string) (string, error) {
	if _, ok := o.raw(key); !ok {
		return "", nil
	}
	return o.str(key)
}

// id returns a required member that panels emit as either a string or a number.
func (o object) id(key string) (string, error) {
	raw, ok := o.raw(key)
	if !ok {
		return "", missing(o.child(key))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", wrongType(o.child(key), "string or number")
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// LoadFile decodes the catalog at path.
func LoadFile(path string) (*models.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return c, nil
}

// Decode reads a panel dump from r and validates the fields the extraction
// path depends on.
func Decode(r io.Reader) (*models.Catalog, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	root, err := decodeObject("", raw)
	if err != nil {
		return nil, err
	}

	c := &models.Catalog{Categories: make(map[string][]models.CatalogCategory)}

	cats, err := root.object("categories")
	if err != nil {
		return nil, err
	}
	for _, kind := range []string{models.CategoryKindLive, models.CategoryKindVOD, models.CategoryKindSeries} {
		// Only live categories are required; vod and series are used by the category dump.
		if kind != models.CategoryKindLive && isAbsent(cats, kind) {
			continue
		}
		list, err := decodeCategories(cats, kind)
		if err != nil {
			return nil, err
		}
		c.Categories[kind] = list
	}

	if c.Channels, err = decodeChannels(root); err != nil {
		return nil, err
	}

	server, err := root.object("server_info")
	if err != nil {
		return nil, err
	}
	if c.Server.Protocol, err = server.str("server_protocol"); err != nil {
		return nil, err
	}
	if c.Server.Host, err = server.str("url"); err != nil {
		return nil, err
	}
	if c.Server.Port, err = server.id("port"); err != nil {
		return nil, err
	}

	user, err := root.object("user_info")
	if err != nil {
		return nil, err
	}
	if c.User.Username, err = user.str("username"); err != nil {
		return nil, err
	}
	if c.User.Password, err = user.str("password"); err != nil {
		return nil, err
	}
	return c, nil
}

func isAbsent(o object, key string) bool {
	_, ok := o.raw(key)
	return !ok
}

func decodeCategories(cats object, kind string) ([]models.CatalogCategory, error) {
	raw, ok := cats.raw(kind)
	if !ok {
		return nil, missing(cats.child(kind))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, wrongType(cats.child(kind), "array")
	}
	out := make([]models.CatalogCategory, 0, len(items))
	for i, item := range items {
		o, err := decodeObject(fmt.Sprintf("%s[%d]", cats.child(kind), i), item)
		if err != nil {
			return nil, err
		}
		var cat models.CatalogCategory
		if cat.ID, err = o.id("category_id"); err != nil {
			return nil, err
		}
		if cat.Name, err = o.str("category_name"); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

// decodeChannels reads available_channels, an object keyed by channel id,
// preserving document order.
func decodeChannels(root object) ([]models.CatalogChannel, error) {
	const key = "available_channels"
	raw, ok := root.raw(key)
	if !ok {
		return nil, missing(key)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, wrongType(key, "object")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, wrongType(key, "object")
	}
	var out []models.CatalogChannel
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		id, _ := tok.(string)
		var item json.RawMessage
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("parse %s.%s: %w", key, id, err)
		}
		o, err := decodeObject(key+"."+id, item)
		if err != nil {
			return nil, err
		}
		var ch models.CatalogChannel
		if ch.StreamID, err = o.id("stream_id"); err != nil {
			return nil, err
		}
		if ch.Name, err = o.str("name"); err != nil {
			return nil, err
		}
		if ch.LogoURL, err = o.optionalStr("stream_icon"); err != nil {
			return nil, err
		}
		if ch.CategoryID, err = o.id("category_id"); err != nil {
			return nil, err
		}
		if ch.CategoryName, err = o.optionalStr("category_name"); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}
