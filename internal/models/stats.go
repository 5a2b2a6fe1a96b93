package models

import "math"

// Stats aggregates feedback for a manager or an employee. Percentages are in
// [0, 100] with two decimals; every percentage is 0 when TotalFeedback is 0.
type Stats struct {
	TotalFeedback          int64                 `json:"total_feedback"`
	PositiveFeedback       int64                 `json:"positive_feedback"`
	NeutralFeedback        int64                 `json:"neutral_feedback"`
	NegativeFeedback       int64                 `json:"negative_feedback"`
	SentimentDistribution  map[Sentiment]int64   `json:"sentiment_distribution"`
	SentimentPercentages   map[Sentiment]float64 `json:"sentiment_percentages"`
	AcknowledgedFeedback   int64                 `json:"acknowledged_feedback"`
	PendingAcknowledgement int64                 `json:"pending_acknowledgement"`
	AcknowledgementRate    float64               `json:"acknowledgement_rate"`
}

func NewStats(bySentiment map[Sentiment]int64, acknowledged int64) *Stats {
	s := &Stats{
		SentimentDistribution: make(map[Sentiment]int64, len(Sentiments)),
		SentimentPercentages:  make(map[Sentiment]float64, len(Sentiments)),
	}
	for _, sent := range Sentiments {
		n := bySentiment[sent]
		s.SentimentDistribution[sent] = n
		s.TotalFeedback += n
	}
	s.PositiveFeedback = s.SentimentDistribution[SentimentPositive]
	s.NeutralFeedback = s.SentimentDistribution[SentimentNeutral]
	s.NegativeFeedback = s.SentimentDistribution[SentimentNegative]
	for _, sent := range Sentiments {
		s.SentimentPercentages[sent] = Percent(s.SentimentDistribution[sent], s.TotalFeedback)
	}

	if acknowledged > s.TotalFeedback {
		acknowledged = s.TotalFeedback
	}
	s.AcknowledgedFeedback = acknowledged
	s.PendingAcknowledgement = s.TotalFeedback - acknowledged
	s.AcknowledgementRate = Percent(acknowledged, s.TotalFeedback)
	return s
}

// Percent returns part/total*100 rounded to two decimals, or 0 for an empty total.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
