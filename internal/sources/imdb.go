package sources

import (
	"math"
	"regexp"
	"time"

	"cinelake/internal/normalize"
)

// IMDBMovieColumns lists the external catalog columns that are read.
var IMDBMovieColumns = []string{
	"Title", "Year", "Runtime", "BoxOffice", "imdbRating", "imdbVotes",
	"Metascore", "imdbID", "Director", "Writer", "Actors", "Language",
	"Country", "Genre", "Released", "tomatoURL",
}

var tomatoPathPattern = regexp.MustCompile(`/m/([^/]+)/?`)

// IMDBMovie is one external catalog film row after normalization. RTID is the
// aggregator id embedded in the row's tomatoURL, or "" when none is present.
type IMDBMovie struct {
	IMDBID         string
	RTID           string
	Title          *string
	Year           *int64
	RuntimeMinutes *float64
	BoxOffice      *float64
	Rating         *float64
	Votes          *float64
	Metascore      *float64
	Director       *string
	Writer         *string
	Actors         *string
	Language       *string
	Country        *string
	Genre          *string
	ReleaseDate    *time.Time
}

// ExtractRTID pulls the aggregator id out of a URL such as
// "https://www.rottentomatoes.com/m/inception/".
func ExtractRTID(tomatoURL string) string {
	m := tomatoPathPattern.FindStringSubmatch(tomatoURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseIMDBMovie normalizes one external catalog CSV record.
func ParseIMDBMovie(row Row) IMDBMovie {
	return IMDBMovie{
		IMDBID:         textOrEmpty(row.Get("imdbID")),
		RTID:           ExtractRTID(row.Get("tomatoURL")),
		Title:          normalize.Text(row.Get("Title")),
		Year:           wholeNumber(normalize.Number(row.Get("Year"))),
		RuntimeMinutes: normalize.RuntimeStrict(row.Get("Runtime")),
		BoxOffice:      normalize.Currency(row.Get("BoxOffice")),
		Rating:         normalize.Number(row.Get("imdbRating")),
		Votes:          normalize.Votes(row.Get("imdbVotes")),
		Metascore:      normalize.Number(row.Get("Metascore")),
		Director:       normalize.Text(row.Get("Director")),
		Writer:         normalize.Text(row.Get("Writer")),
		Actors:         normalize.Text(row.Get("Actors")),
		Language:       normalize.Text(row.Get("Language")),
		Country:        normalize.Text(row.Get("Country")),
		Genre:          normalize.Text(row.Get("Genre")),
		ReleaseDate:    normalize.Date(row.Get("Released")),
	}
}

// ReadIMDBMovies decodes an external catalog export.
func ReadIMDBMovies(path string) ([]IMDBMovie, error) {
	var out []IMDBMovie
	err := ReadCSV(path, IMDBMovieColumns, func(row Row) error {
		out = append(out, ParseIMDBMovie(row))
		return nil
	})
	return out, err
}

func wholeNumber(v *float64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(math.Trunc(*v))
	return &n
}
