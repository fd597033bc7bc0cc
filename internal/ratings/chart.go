package ratings

import (
	"errors"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const dayFormat = "2006-01-02"

// bucket groups points, which must be ordered by creation time, into one bucket per UTC day.
func bucket(points []models.RatingEntry) []models.ChartBucket {
	buckets := []models.ChartBucket{}
	var sum int
	for _, p := range points {
		day := p.CreatedAt.UTC().Format(dayFormat)
		if n := len(buckets); n == 0 || buckets[n-1].Date != day {
			sum = 0
			buckets = append(buckets, models.ChartBucket{Date: day})
		}
		b := &buckets[len(buckets)-1]
		sum += p.Rating
		b.Count++
		b.Avg = float64(sum) / float64(b.Count)
	}
	return buckets
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
