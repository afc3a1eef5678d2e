// Package reviews normalizes aggregator critic reviews into the reviews table.
package reviews

import (
	"fmt"
	"time"

	"cinelake/internal/normalize"
	"cinelake/internal/sources"
	"cinelake/internal/table"
)

// TableName is the curated table the reviews are written to.
const TableName = "reviews"

// Review is one normalized critic review. RTID references the aggregator id,
// not film_id.
type Review struct {
	RTID            string
	ReviewID        *string
	CriticName      *string
	PublicationName *string
	IsTopCritic     *bool
	ScoreRatio      *float64
	ScoreSentiment  *string
	Sentiment       *int64
	ReviewText      *string
	CreatedAt       *time.Time
}

// Columns is the reviews table layout.
var Columns = []table.Column{
	{Name: "rt_id", Type: table.Text},
	{Name: "review_id", Type: table.Text},
	{Name: "critic_name", Type: table.Text},
	{Name: "publication_name", Type: table.Text},
	{Name: "is_top_critic", Type: table.Boolean},
	{Name: "score_ratio", Type: table.Real},
	{Name: "score_sentiment", Type: table.Text},
	{Name: "sentiment", Type: table.Integer},
	{Name: "review_text", Type: table.Text},
	{Name: "created_at", Type: table.Timestamp},
}

// Build normalizes raw review rows, preserving input order.
func Build(rows []sources.RTReview) []Review {
	out := make([]Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, Normalize(row))
	}
	return out
}

// Normalize converts one raw review. The score sentiment text is kept as
// exported.
func Normalize(row sources.RTReview) Review {
	review := Review{
		ReviewID:        normalize.Text(row.ReviewID),
		CriticName:      normalize.Text(row.CriticName),
		PublicationName: normalize.Text(row.PublicationName),
		IsTopCritic:     normalize.Bool(row.IsTopCritic),
		ScoreRatio:      normalize.ReviewScore(row.OriginalScore),
		ScoreSentiment:  normalize.Text(row.ScoreSentiment),
		Sentiment:       normalize.Sentiment(row.ReviewState),
		ReviewText:      normalize.Text(row.ReviewText),
		CreatedAt:       normalize.Date(row.CreationDate),
	}
	if id := normalize.Text(row.RTID); id != nil {
		review.RTID = *id
	}
	return review
}

// ToTable renders reviews in order.
func ToTable(reviews []Review) *table.Table {
	t := table.New(TableName, Columns...)
	for _, r := range reviews {
		var rtID any
		if r.RTID != "" {
			rtID = r.RTID
		}
		t.MustAppend(
			rtID,
			table.Opt(r.ReviewID),
			table.Opt(r.CriticName),
			table.Opt(r.PublicationName),
			table.Opt(r.IsTopCritic),
			table.Opt(r.ScoreRatio),
			table.Opt(r.ScoreSentiment),
			table.Opt(r.Sentiment),
			table.Opt(r.ReviewText),
			table.Opt(r.CreatedAt),
		)
	}
	return t
}

// UserTableName is the override table user-submitted reviews are appended to.
const UserTableName = "user_reviews"

// UserColumns is the user review layout: the reviews columns plus film_id.
var UserColumns = append([]table.Column{{Name: "film_id", Type: table.Text}}, Columns...)

// UserReview is a review typed in by a user rather than exported by the
// aggregator.
type UserReview struct {
	FilmID      string
	RTID        string
	CriticName  string
	Publication string
	ScoreRatio  *float64
	Positive    bool
	Text        string
}

// UserReviewRow builds a one-row user review table. The review id is derived
// from now so repeated submissions never collide.
func UserReviewRow(r UserReview, now time.Time) (*table.Table, error) {
	now = now.UTC()
	sentiment, label := int64(0), "NEGATIVE"
	if r.Positive {
		sentiment, label = 1, "POSITIVE"
	}
	rtID := r.RTID
	if rtID == "" {
		rtID = r.FilmID
	}
	t := table.New(UserTableName, UserColumns...)
	err := t.Append(
		r.FilmID,
		rtID,
		fmt.Sprintf("user_%d", now.UnixNano()),
		optionalText(r.CriticName),
		optionalText(r.Publication),
		false,
		table.Opt(r.ScoreRatio),
		label,
		sentiment,
		optionalText(r.Text),
		now,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func optionalText(s string) any {
	if v := normalize.Text(s); v != nil {
		return *v
	}
	return nil
}
