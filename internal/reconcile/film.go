package reconcile

import (
	"time"

	"cinelake/internal/table"
)

// TableName is the curated table the films are written to.
const TableName = "films"

// Film is the reconciled film entity. Scores stay on the scale of the source
// that produced them.
type Film struct {
	FilmID           string
	RTID             string
	IMDBID           string
	Title            *string
	Year             *int64
	PrimaryGenre     *string
	RuntimeMinutes   *float64
	AudienceScore    *float64
	TomatoMeter      *float64
	IMDBRating       *float64
	IMDBVotes        *float64
	Metascore        *float64
	BoxOfficeUSD     *float64
	RevenuePerMinute *float64
	RTDirector       *string
	RTWriter         *string
	IMDBDirector     *string
	IMDBWriter       *string
	Actors           *string
	Language         *string
	Country          *string
	RTReleaseDate    *time.Time
	RTStreamingDate  *time.Time
	IMDBReleaseDate  *time.Time
}

// Columns is the films table layout.
var Columns = []table.Column{
	{Name: "film_id", Type: table.Text},
	{Name: "rt_id", Type: table.Text},
	{Name: "imdb_id", Type: table.Text},
	{Name: "title", Type: table.Text},
	{Name: "year", Type: table.Integer},
	{Name: "primary_genre", Type: table.Text},
	{Name: "runtime_minutes", Type: table.Real},
	{Name: "audience_score", Type: table.Real},
	{Name: "tomato_meter", Type: table.Real},
	{Name: "imdb_rating", Type: table.Real},
	{Name: "imdb_votes", Type: table.Real},
	{Name: "metascore", Type: table.Real},
	{Name: "box_office_usd", Type: table.Real},
	{Name: "revenue_per_minute", Type: table.Real},
	{Name: "rt_director", Type: table.Text},
	{Name: "rt_writer", Type: table.Text},
	{Name: "imdb_director", Type: table.Text},
	{Name: "imdb_writer", Type: table.Text},
	{Name: "actors", Type: table.Text},
	{Name: "language", Type: table.Text},
	{Name: "country", Type: table.Text},
	{Name: "rt_release_date", Type: table.Timestamp},
	{Name: "rt_streaming_date", Type: table.Timestamp},
	{Name: "imdb_release_date", Type: table.Timestamp},
}

// ToTable renders films in order. Empty identifiers become nulls.
func ToTable(films []Film) *table.Table {
	t := table.New(TableName, Columns...)
	for _, f := range films {
		t.MustAppend(
			f.FilmID,
			optionalID(f.RTID),
			optionalID(f.IMDBID),
			table.Opt(f.Title),
			table.Opt(f.Year),
			table.Opt(f.PrimaryGenre),
			table.Opt(f.RuntimeMinutes),
			table.Opt(f.AudienceScore),
			table.Opt(f.TomatoMeter),
			table.Opt(f.IMDBRating),
			table.Opt(f.IMDBVotes),
			table.Opt(f.Metascore),
			table.Opt(f.BoxOfficeUSD),
			table.Opt(f.RevenuePerMinute),
			table.Opt(f.RTDirector),
			table.Opt(f.RTWriter),
			table.Opt(f.IMDBDirector),
			table.Opt(f.IMDBWriter),
			table.Opt(f.Actors),
			table.Opt(f.Language),
			table.Opt(f.Country),
			table.Opt(f.RTReleaseDate),
			table.Opt(f.RTStreamingDate),
			table.Opt(f.IMDBReleaseDate),
		)
	}
	return t
}

func optionalID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
