package models

// FilterStats counts entries seen by one pipeline pass.
type FilterStats struct {
	Total    int `json:"total_entries"`
	Kept     int `json:"live_channels"`
	Series   int `json:"series_filtered"`
	Movies   int `json:"movies_filtered"`
	OtherVOD int `json:"other_filtered"`
	Category int `json:"group_filtered"`
}

// Record counts one classified entry.
func (s *FilterStats) Record(d Decision) {
	s.Total++
	switch d {
	case Keep:
		s.Kept++
	case RejectSeries:
		s.Series++
	case RejectMovie:
		s.Movies++
	case RejectOtherVOD:
		s.OtherVOD++
	case RejectCategory:
		s.Category++
	}
}

// Rejected returns the number of entries that did not make it to the output.
func (s FilterStats) Rejected() int {
	return s.Series + s.Movies + s.OtherVOD + s.Category
}
