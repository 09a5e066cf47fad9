package dataset

// Merge inner-joins ratings to movies on MovieID = ID, preserving the order
// of ratings. Ratings whose movie is unknown, or whose movie has an empty
// title, are dropped and counted in stats.
func Merge(movies []Movie, ratings []Rating, stats *LoadStats) []MergedRow {
	if stats == nil {
		stats = &LoadStats{}
	}
	byID := make(map[int]*Movie, len(movies))
	for i := range movies {
		m := &movies[i]
		if _, dup := byID[m.ID]; dup {
			stats.MoviesDuplicateID++
			continue
		}
		byID[m.ID] = m
	}

	rows := make([]MergedRow, 0, len(ratings))
	for _, r := range ratings {
		m, ok := byID[r.MovieID]
		if !ok {
			stats.RatingsUnmatched++
			continue
		}
		if m.Title == "" {
			stats.RatingsEmptyTitle++
			continue
		}
		rows = append(rows, MergedRow{
			UserID:  r.UserID,
			MovieID: m.ID,
			Title:   m.Title,
			Genres:  m.Genres,
			Rating:  r.Rating,
		})
	}
	stats.MergedRows = len(rows)
	return rows
}
