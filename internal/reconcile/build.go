package reconcile

import (
	"math"

	"cinelake/internal/normalize"
	"cinelake/internal/sources"
)

// Report summarizes one reconciliation pass.
type Report struct {
	Joined     int
	RTOnly     int
	IMDBOnly   int
	Duplicates int
	// Unkeyed counts merged rows dropped because neither source had an id.
	Unkeyed int
	// Ambiguous lists aggregator ids that matched more than one catalog row.
	Ambiguous []string
}

// BuildFilms reconciles the two film sources. See Reconcile for ordering.
func BuildFilms(rt []sources.RTMovie, imdb []sources.IMDBMovie) []Film {
	films, _ := Reconcile(rt, imdb)
	return films
}

// Reconcile full-outer-joins rt and imdb on the aggregator id and keeps the
// first row seen for every film_id. Rows are visited as aggregator rows in
// input order, each followed by its catalog matches in input order, then the
// catalog rows that matched nothing. An aggregator id repeated on both sides
// yields every pairing before deduplication.
func Reconcile(rt []sources.RTMovie, imdb []sources.IMDBMovie) ([]Film, Report) {
	var report Report

	byRTID := make(map[string][]int)
	for i, row := range imdb {
		if row.RTID != "" {
			byRTID[row.RTID] = append(byRTID[row.RTID], i)
		}
	}

	matched := make([]bool, len(imdb))
	merged := make([]Film, 0, len(rt)+len(imdb))
	for i := range rt {
		var matches []int
		if rt[i].RTID != "" {
			matches = byRTID[rt[i].RTID]
		}
		if len(matches) == 0 {
			report.RTOnly++
			merged = append(merged, merge(&rt[i], nil))
			continue
		}
		if len(matches) > 1 {
			report.Ambiguous = append(report.Ambiguous, rt[i].RTID)
		}
		for _, j := range matches {
			matched[j] = true
			report.Joined++
			merged = append(merged, merge(&rt[i], &imdb[j]))
		}
	}
	for j := range imdb {
		if !matched[j] {
			report.IMDBOnly++
			merged = append(merged, merge(nil, &imdb[j]))
		}
	}

	seen := make(map[string]struct{}, len(merged))
	films := make([]Film, 0, len(merged))
	for _, film := range merged {
		if film.FilmID == "" {
			report.Unkeyed++
			continue
		}
		if _, dup := seen[film.FilmID]; dup {
			report.Duplicates++
			continue
		}
		seen[film.FilmID] = struct{}{}
		films = append(films, film)
	}
	return films, report
}

// merge resolves one joined pair. Either side may be nil.
func merge(rt *sources.RTMovie, imdb *sources.IMDBMovie) Film {
	if rt == nil {
		rt = &sources.RTMovie{}
	}
	if imdb == nil {
		imdb = &sources.IMDBMovie{}
	}

	film := Film{
		FilmID:          firstNonEmpty(imdb.IMDBID, rt.RTID),
		RTID:            firstNonEmpty(rt.RTID, imdb.RTID),
		IMDBID:          imdb.IMDBID,
		Title:           coalesce(imdb.Title, rt.Title),
		Year:            coalesce(imdb.Year, releaseYear(rt)),
		PrimaryGenre:    coalesce(rt.PrimaryGenre, genreToken(imdb.Genre)),
		RuntimeMinutes:  coalesce(imdb.RuntimeMinutes, rt.RuntimeMinutes),
		AudienceScore:   rt.AudienceScore,
		TomatoMeter:     rt.TomatoMeter,
		IMDBRating:      imdb.Rating,
		IMDBVotes:       imdb.Votes,
		Metascore:       imdb.Metascore,
		BoxOfficeUSD:    coalesce(imdb.BoxOffice, rt.BoxOffice),
		RTDirector:      rt.Director,
		RTWriter:        rt.Writer,
		IMDBDirector:    imdb.Director,
		IMDBWriter:      imdb.Writer,
		Actors:          imdb.Actors,
		Language:        imdb.Language,
		Country:         imdb.Country,
		RTReleaseDate:   rt.ReleaseDate,
		RTStreamingDate: rt.StreamingDate,
		IMDBReleaseDate: imdb.ReleaseDate,
	}
	film.RevenuePerMinute = RevenuePerMinute(film.BoxOfficeUSD, film.RuntimeMinutes)
	return film
}

// RevenuePerMinute divides box office by runtime. It is nil unless both are
// present, runtime is non-zero, and the quotient is finite.
func RevenuePerMinute(boxOffice, runtime *float64) *float64 {
	if boxOffice == nil || runtime == nil || *runtime == 0 {
		return nil
	}
	v := *boxOffice / *runtime
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func releaseYear(rt *sources.RTMovie) *int64 {
	if rt.ReleaseDate == nil {
		return nil
	}
	y := int64(rt.ReleaseDate.Year())
	return &y
}

func genreToken(genre *string) *string {
	if genre == nil {
		return nil
	}
	return normalize.FirstToken(*genre)
}

func coalesce[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
