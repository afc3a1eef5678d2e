package reconcile

import (
	"math"
	"testing"
	"time"

	"cinelake/internal/sources"
	"cinelake/internal/table"
)

func ptr[T any](v T) *T { return &v }

func TestCatalogOnlyFilmKeepsFieldsAndNullsAggregatorFields(t *testing.T) {
	imdb := []sources.IMDBMovie{{
		IMDBID:         "tt0113277",
		Title:          ptr("Heat"),
		Year:           ptr[int64](1995),
		RuntimeMinutes: ptr(170.0),
		BoxOffice:      ptr(67_436_818.0),
		Rating:         ptr(8.3),
		Genre:          ptr("Crime, Drama"),
		Director:       ptr("Michael Mann"),
	}}

	films := BuildFilms(nil, imdb)
	if len(films) != 1 {
		t.Fatalf("expected 1 film, got %d", len(films))
	}
	f := films[0]
	if f.FilmID != "tt0113277" || f.IMDBID != "tt0113277" || f.RTID != "" {
		t.Fatalf("unexpected ids: %+v", f)
	}
	if *f.Title != "Heat" || *f.Year != 1995 || *f.RuntimeMinutes != 170 || *f.IMDBRating != 8.3 {
		t.Fatalf("catalog fields lost: %+v", f)
	}
	if *f.PrimaryGenre != "Crime" {
		t.Fatalf("primary genre = %q", *f.PrimaryGenre)
	}
	if f.AudienceScore != nil || f.TomatoMeter != nil || f.RTDirector != nil || f.RTReleaseDate != nil {
		t.Fatalf("aggregator fields should be null: %+v", f)
	}
}

func TestBothSourcesPreferCatalogValues(t *testing.T) {
	release := time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC)
	rt := []sources.RTMovie{{
		RTID:           "inception",
		Title:          ptr("Inception (RT)"),
		AudienceScore:  ptr(91.0),
		RuntimeMinutes: ptr(150.0),
		BoxOffice:      ptr(290_000_000.0),
		ReleaseDate:    &release,
		PrimaryGenre:   ptr("Sci-fi"),
		Director:       ptr("Christopher Nolan"),
	}}
	imdb := []sources.IMDBMovie{{
		IMDBID:         "tt1375666",
		RTID:           "inception",
		Title:          ptr("Inception"),
		RuntimeMinutes: ptr(148.0),
		BoxOffice:      ptr(292_576_195.0),
		Genre:          ptr("Action, Adventure"),
	}}

	films, report := Reconcile(rt, imdb)
	if len(films) != 1 || report.Joined != 1 {
		t.Fatalf("expected one joined film, got %d (%+v)", len(films), report)
	}
	f := films[0]
	if f.FilmID != "tt1375666" || f.RTID != "inception" {
		t.Fatalf("unexpected ids: %+v", f)
	}
	if *f.Title != "Inception" || *f.RuntimeMinutes != 148 || *f.BoxOfficeUSD != 292_576_195 {
		t.Fatalf("catalog values should win: %+v", f)
	}
	if *f.Year != 2010 {
		t.Fatalf("year should fall back to aggregator release year, got %d", *f.Year)
	}
	if *f.PrimaryGenre != "Sci-fi" {
		t.Fatalf("aggregator genre should win, got %q", *f.PrimaryGenre)
	}
	if *f.AudienceScore != 91 || *f.RTDirector != "Christopher Nolan" {
		t.Fatalf("aggregator-only fields lost: %+v", f)
	}
	want := 292_576_195.0 / 148.0
	if math.Abs(*f.RevenuePerMinute-want) > 1e-9 {
		t.Fatalf("revenue per minute = %v, want %v", *f.RevenuePerMinute, want)
	}
}

func TestAggregatorOnlyFallsBackToAggregatorID(t *testing.T) {
	films := BuildFilms([]sources.RTMovie{{RTID: "heat", Title: ptr("Heat")}}, nil)
	if len(films) != 1 || films[0].FilmID != "heat" || films[0].IMDBID != "" {
		t.Fatalf("unexpected films: %+v", films)
	}
}

func TestRevenuePerMinuteUndefined(t *testing.T) {
	tests := []struct {
		name    string
		box     *float64
		runtime *float64
	}{
		{name: "null runtime", box: ptr(100.0)},
		{name: "zero runtime", box: ptr(100.0), runtime: ptr(0.0)},
		{name: "null box office", runtime: ptr(90.0)},
		{name: "overflow", box: ptr(math.MaxFloat64), runtime: ptr(1e-300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RevenuePerMinute(tt.box, tt.runtime); got != nil {
				t.Fatalf("expected nil, got %v", *got)
			}
		})
	}

	films := BuildFilms(
		[]sources.RTMovie{{RTID: "a", BoxOffice: ptr(10.0), RuntimeMinutes: ptr(0.0)}},
		[]sources.IMDBMovie{{IMDBID: "tt2", BoxOffice: ptr(10.0)}},
	)
	for _, f := range films {
		if f.RevenuePerMinute != nil {
			t.Fatalf("film %s: expected undefined revenue per minute", f.FilmID)
		}
	}
}

func TestDeduplicatesByFilmIDFirstSeen(t *testing.T) {
	rt := []sources.RTMovie{
		{RTID: "heat", Title: ptr("Heat RT")},
		{RTID: "heat", Title: ptr("Heat RT duplicate"), AudienceScore: ptr(1.0)},
		{RTID: "solo", Title: ptr("Solo")},
		{Title: ptr("No id at all")},
	}
	imdb := []sources.IMDBMovie{
		{IMDBID: "tt0113277", RTID: "heat", Metascore: ptr(76.0)},
		{IMDBID: "tt0113277", RTID: "heat", Metascore: ptr(1.0)},
		{IMDBID: "tt9", Title: ptr("Catalog only")},
		{IMDBID: "tt9", Title: ptr("Catalog only again")},
	}

	films, report := Reconcile(rt, imdb)
	ids := make([]string, 0, len(films))
	seen := map[string]int{}
	for _, f := range films {
		ids = append(ids, f.FilmID)
		seen[f.FilmID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("film_id %s appears %d times", id, n)
		}
	}
	want := []string{"tt0113277", "solo", "tt9"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if *films[0].Metascore != 76 || films[0].AudienceScore != nil {
		t.Fatalf("expected the first pairing to survive: %+v", films[0])
	}
	if *films[2].Title != "Catalog only" {
		t.Fatalf("expected first catalog-only row, got %q", *films[2].Title)
	}
	if report.Unkeyed != 1 || report.Duplicates != 4 || len(report.Ambiguous) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestToTableNullsEmptyIDs(t *testing.T) {
	tbl := ToTable(BuildFilms([]sources.RTMovie{{RTID: "heat", Title: ptr("Heat")}}, nil))
	if tbl.Name != TableName || tbl.Len() != 1 {
		t.Fatalf("unexpected table %s with %d rows", tbl.Name, tbl.Len())
	}
	if tbl.Value(0, "imdb_id") != nil || tbl.Value(0, "rt_id") != "heat" || tbl.Value(0, "title") != "Heat" {
		t.Fatalf("unexpected row: %v", tbl.Rows[0])
	}
	if len(tbl.Columns) != len(Columns) || tbl.Columns[0] != (table.Column{Name: "film_id", Type: table.Text}) {
		t.Fatalf("unexpected columns: %v", tbl.Columns)
	}
}
