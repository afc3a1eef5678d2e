package sources

import (
	"time"

	"cinelake/internal/normalize"
)

// RTMovieColumns lists the aggregator film export columns that are read.
var RTMovieColumns = []string{
	"id", "title", "audienceScore", "tomatoMeter", "runtimeMinutes",
	"releaseDateTheaters", "releaseDateStreaming", "boxOffice", "genre",
	"director", "writer",
}

// RTMovie is one aggregator film row after normalization.
type RTMovie struct {
	RTID           string
	Title          *string
	AudienceScore  *float64
	TomatoMeter    *float64
	RuntimeMinutes *float64
	ReleaseDate    *time.Time
	StreamingDate  *time.Time
	BoxOffice      *float64
	PrimaryGenre   *string
	Director       *string
	Writer         *string
}

// ParseRTMovie normalizes one aggregator CSV record.
func ParseRTMovie(row Row) RTMovie {
	return RTMovie{
		RTID:           textOrEmpty(row.Get("id")),
		Title:          normalize.Text(row.Get("title")),
		AudienceScore:  normalize.Number(row.Get("audienceScore")),
		TomatoMeter:    normalize.Number(row.Get("tomatoMeter")),
		RuntimeMinutes: normalize.RuntimeStrict(row.Get("runtimeMinutes")),
		ReleaseDate:    normalize.Date(row.Get("releaseDateTheaters")),
		StreamingDate:  normalize.Date(row.Get("releaseDateStreaming")),
		BoxOffice:      normalize.Currency(row.Get("boxOffice")),
		PrimaryGenre:   normalize.FirstToken(row.Get("genre")),
		Director:       normalize.Text(row.Get("director")),
		Writer:         normalize.Text(row.Get("writer")),
	}
}

// ReadRTMovies decodes an aggregator film export.
func ReadRTMovies(path string) ([]RTMovie, error) {
	var out []RTMovie
	err := ReadCSV(path, RTMovieColumns, func(row Row) error {
		out = append(out, ParseRTMovie(row))
		return nil
	})
	return out, err
}

func textOrEmpty(s string) string {
	if v := normalize.Text(s); v != nil {
		return *v
	}
	return ""
}
