package reviews

import (
	"testing"
	"time"

	"cinelake/internal/sources"
)

func TestNormalize(t *testing.T) {
	got := Normalize(sources.RTReview{
		RTID:            "inception",
		ReviewID:        "102030",
		CriticName:      "Jane Critic",
		PublicationName: "Daily Planet",
		IsTopCritic:     "True",
		OriginalScore:   "A-",
		ScoreSentiment:  "POSITIVE",
		ReviewState:     "fresh",
		ReviewText:      "  Dreams within dreams.  ",
		CreationDate:    "2010-07-20",
	})
	if got.RTID != "inception" || *got.ReviewID != "102030" || *got.PublicationName != "Daily Planet" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if !*got.IsTopCritic || *got.ScoreRatio != 0.925 || *got.Sentiment != 1 {
		t.Fatalf("unexpected normalized values: %+v", got)
	}
	if *got.ReviewText != "Dreams within dreams." || *got.ScoreSentiment != "POSITIVE" {
		t.Fatalf("unexpected text: %+v", got)
	}
	if got.CreatedAt == nil || got.CreatedAt.Month() != 7 {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestNormalizeUnparseableFieldsBecomeNull(t *testing.T) {
	got := Normalize(sources.RTReview{
		RTID:          "heat",
		IsTopCritic:   "maybe",
		OriginalScore: "three stars",
		ReviewState:   "meh",
		CreationDate:  "July 2010",
	})
	if got.IsTopCritic != nil || got.ScoreRatio != nil || got.Sentiment != nil || got.CreatedAt != nil {
		t.Fatalf("expected nulls: %+v", got)
	}
	if got.CriticName != nil || got.ReviewText != nil {
		t.Fatalf("expected blank text to be null: %+v", got)
	}
}

func TestToTable(t *testing.T) {
	tbl := ToTable(Build([]sources.RTReview{
		{RTID: "heat", OriginalScore: "7/10", ReviewState: "rotten"},
		{RTID: "", OriginalScore: "85"},
	}))
	if tbl.Name != TableName || tbl.Len() != 2 {
		t.Fatalf("unexpected table %s with %d rows", tbl.Name, tbl.Len())
	}
	if tbl.Value(0, "score_ratio") != 0.7 || tbl.Value(0, "sentiment") != int64(0) {
		t.Fatalf("unexpected first row: %v", tbl.Rows[0])
	}
	if tbl.Value(1, "rt_id") != nil || tbl.Value(1, "score_ratio") != 85.0 {
		t.Fatalf("unexpected second row: %v", tbl.Rows[1])
	}
}

func TestUserReviewRow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	score := 0.9
	tbl, err := UserReviewRow(UserReview{
		FilmID:     "tt1375666",
		CriticName: "  Me ",
		ScoreRatio: &score,
		Positive:   true,
	}, now)
	if err != nil {
		t.Fatalf("UserReviewRow: %v", err)
	}
	if tbl.Name != UserTableName || tbl.Len() != 1 {
		t.Fatalf("unexpected table %s with %d rows", tbl.Name, tbl.Len())
	}
	checks := map[string]any{
		"film_id":          "tt1375666",
		"rt_id":            "tt1375666",
		"critic_name":      "Me",
		"publication_name": nil,
		"is_top_critic":    false,
		"score_ratio":      0.9,
		"score_sentiment":  "POSITIVE",
		"sentiment":        int64(1),
		"review_text":      nil,
	}
	for col, want := range checks {
		if got := tbl.Value(0, col); got != want {
			t.Errorf("%s = %v, want %v", col, got, want)
		}
	}
	created, ok := tbl.Value(0, "created_at").(time.Time)
	if !ok || !created.Equal(now) || created.Location() != time.UTC {
		t.Errorf("created_at = %v", tbl.Value(0, "created_at"))
	}

	neg, err := UserReviewRow(UserReview{FilmID: "heat", RTID: "heat_1995"}, now)
	if err != nil {
		t.Fatalf("UserReviewRow: %v", err)
	}
	if neg.Value(0, "rt_id") != "heat_1995" || neg.Value(0, "sentiment") != int64(0) || neg.Value(0, "score_sentiment") != "NEGATIVE" {
		t.Fatalf("unexpected negative review: %v", neg.Rows)
	}
}
