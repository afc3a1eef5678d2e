// Package people explodes the free-text director, writer, and actor fields of
// the films table into one row per (film, person, role).
package people

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"cinelake/internal/reconcile"
	"cinelake/internal/table"
	"cinelake/internal/textutil"
)

// TableName is the curated table the people are written to.
const TableName = "people"

// Role tags where a name was found.
type Role string

const (
	RoleDirectorRT   Role = "director_rt"
	RoleDirectorIMDB Role = "director_imdb"
	RoleWriterRT     Role = "writer_rt"
	RoleWriterIMDB   Role = "writer_imdb"
	RoleActor        Role = "actor"
)

// Person is one extracted credit. PersonID is a slug of Name and may collide
// across distinct people; rows are unique on (FilmID, Name, Role).
type Person struct {
	FilmID   string
	Name     string
	Role     Role
	PersonID string
}

// Columns is the people table layout.
var Columns = []table.Column{
	{Name: "film_id", Type: table.Text},
	{Name: "name", Type: table.Text},
	{Name: "role", Type: table.Text},
	{Name: "person_id", Type: table.Text},
}

type roleSource struct {
	role  Role
	field func(reconcile.Film) *string
}

// roleSources fixes the union order of the role streams.
var roleSources = []roleSource{
	{RoleDirectorRT, func(f reconcile.Film) *string { return f.RTDirector }},
	{RoleDirectorIMDB, func(f reconcile.Film) *string { return f.IMDBDirector }},
	{RoleWriterRT, func(f reconcile.Film) *string { return f.RTWriter }},
	{RoleWriterIMDB, func(f reconcile.Film) *string { return f.IMDBWriter }},
	{RoleActor, func(f reconcile.Film) *string { return f.Actors }},
}

// Extract returns the deduplicated credits of films.
func Extract(films []reconcile.Film) []Person {
	people, _ := ExtractContext(context.Background(), films)
	return people
}

// ExtractContext explodes each role in its own goroutine and unions the
// streams in a fixed role order, so the result does not depend on scheduling.
// Duplicates of (film_id, name, role) keep their first occurrence.
func ExtractContext(ctx context.Context, films []reconcile.Film) ([]Person, error) {
	streams := make([][]Person, len(roleSources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range roleSources {
		i, src := i, src
		g.Go(func() error {
			out, err := explode(ctx, films, src)
			streams[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type key struct {
		film string
		name string
		role Role
	}
	seen := make(map[key]struct{})
	var people []Person
	for _, stream := range streams {
		for _, p := range stream {
			k := key{p.FilmID, p.Name, p.Role}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			people = append(people, p)
		}
	}
	return people, nil
}

func explode(ctx context.Context, films []reconcile.Film, src roleSource) ([]Person, error) {
	var out []Person
	for i, film := range films {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		value := src.field(film)
		if value == nil {
			continue
		}
		for _, raw := range strings.Split(*value, ",") {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			out = append(out, Person{
				FilmID:   film.FilmID,
				Name:     name,
				Role:     src.role,
				PersonID: textutil.Slug(name),
			})
		}
	}
	return out, nil
}

// ToTable renders people in order.
func ToTable(people []Person) *table.Table {
	t := table.New(TableName, Columns...)
	for _, p := range people {
		t.MustAppend(p.FilmID, p.Name, string(p.Role), p.PersonID)
	}
	return t
}
