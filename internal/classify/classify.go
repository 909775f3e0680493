// Package classify decides whether a playlist entry is a live channel.
package classify

import (
	"regexp"
	"strings"

	"github.com/voyagen/m3ulive/internal/models"
)

var (
	reSeasonEpisode = regexp.MustCompile(`(?i)S\d+\s*E\d+`)
	reYear          = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	seriesNameMarkers     = []string{"S0", "E0", "SEASON", "EPISODE"}
	movieCategoryWords    = []string{"MOVIE", "FILM", "CINEMA"}
	otherVODCategoryWords = []string{"DOWNLOAD", "ON DEMAND", "RENTAL"}
)

// Classify returns the decision for e. When allow is non-nil the entry's
// category must be a member. Checks run in order: category allow-list,
// series, movie, other VOD; the first match wins.
func Classify(e models.Entry, allow *models.AllowSet) models.Decision {
	if allow != nil && (e.Category == "" || !allow.Contains(e.Category)) {
		return models.RejectCategory
	}

	category := strings.ToUpper(e.Category)
	name := strings.ToUpper(e.Name)

	switch {
	case IsSeries(category, name, e.StreamURL):
		return models.RejectSeries
	case IsMovie(category, e.Name, e.StreamURL):
		return models.RejectMovie
	case containsAny(category, otherVODCategoryWords):
		return models.RejectOtherVOD
	}
	return models.Keep
}

// IsSeries reports series markers. category and name must be upper-cased.
func IsSeries(category, name, streamURL string) bool {
	return strings.Contains(category, "SRS") ||
		strings.Contains(streamURL, "/series/") ||
		containsAny(name, seriesNameMarkers) ||
		reSeasonEpisode.MatchString(name)
}

// IsMovie reports movie markers. category must be upper-cased.
func IsMovie(category, name, streamURL string) bool {
	return strings.Contains(category, "VOD") ||
		strings.Contains(streamURL, "/movie/") ||
		reYear.MatchString(name) ||
		containsAny(category, movieCategoryWords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
