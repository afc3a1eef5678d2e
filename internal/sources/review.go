package sources

// RTReviewColumns lists the aggregator review export columns that are read.
// "publicatioName" is the export's own spelling.
var RTReviewColumns = []string{
	"id", "reviewId", "criticName", "publicatioName", "isTopCritic",
	"originalScore", "scoreSentiment", "reviewState", "reviewText",
	"creationDate",
}

// RTReview is one aggregator review row as exported. Normalization happens in
// the reviews package.
type RTReview struct {
	RTID            string
	ReviewID        string
	CriticName      string
	PublicationName string
	IsTopCritic     string
	OriginalScore   string
	ScoreSentiment  string
	ReviewState     string
	ReviewText      string
	CreationDate    string
}

// ParseRTReview maps one review CSV record.
func ParseRTReview(row Row) RTReview {
	return RTReview{
		RTID:            row.Get("id"),
		ReviewID:        row.Get("reviewId"),
		CriticName:      row.Get("criticName"),
		PublicationName: row.Get("publicatioName"),
		IsTopCritic:     row.Get("isTopCritic"),
		OriginalScore:   row.Get("originalScore"),
		ScoreSentiment:  row.Get("scoreSentiment"),
		ReviewState:     row.Get("reviewState"),
		ReviewText:      row.Get("reviewText"),
		CreationDate:    row.Get("creationDate"),
	}
}

// ReadRTReviews decodes an aggregator review export.
func ReadRTReviews(path string) ([]RTReview, error) {
	var out []RTReview
	err := ReadCSV(path, RTReviewColumns, func(row Row) error {
		out = append(out, ParseRTReview(row))
		return nil
	})
	return out, err
}
