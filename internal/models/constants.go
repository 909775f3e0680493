package models

// Decision is the classifier outcome for one entry.
type Decision int8

// Decision constants. Keep is the only outcome that reaches the output.
const (
	Keep Decision = iota
	RejectSeries
	RejectMovie
	RejectOtherVOD
	RejectCategory
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "live"
	case RejectSeries:
		return "series"
	case RejectMovie:
		return "movie"
	case RejectOtherVOD:
		return "other VOD"
	case RejectCategory:
		return "group_not_allowed"
	default:
		return "unknown"
	}
}

// Catalog category kinds (keys under "categories" in a panel dump).
const (
	CategoryKindLive   = "live"
	CategoryKindVOD    = "vod"
	CategoryKindSeries = "series"
)
