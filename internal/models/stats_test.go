package models

import "testing"

func TestPercent(t *testing.T) {
	cases := []struct {
		part, total int64
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 1, 100},
		{1, 8, 12.5},
	}
	for _, tc := range cases {
		if got := Percent(tc.part, tc.total); got != tc.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tc.part, tc.total, got, tc.want)
		}
	}
}

func TestNewStats(t *testing.T) {
	s := NewStats(map[Sentiment]int64{SentimentPositive: 2, SentimentNegative: 1}, 1)
	if s.TotalFeedback != 3 {
		t.Fatalf("total = %d, want 3", s.TotalFeedback)
	}
	if s.PositiveFeedback != 2 || s.NeutralFeedback != 0 || s.NegativeFeedback != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.SentimentPercentages[SentimentPositive] != 66.67 {
		t.Fatalf("positive pct = %v", s.SentimentPercentages[SentimentPositive])
	}
	if s.AcknowledgementRate != 33.33 || s.PendingAcknowledgement != 2 {
		t.Fatalf("unexpected ack figures: rate=%v pending=%d", s.AcknowledgementRate, s.PendingAcknowledgement)
	}
}

func TestNewStatsEmpty(t *testing.T) {
	s := NewStats(nil, 0)
	if s.TotalFeedback != 0 || s.AcknowledgementRate != 0 {
		t.Fatalf("unexpected empty stats: %+v", s)
	}
	if _, ok := s.SentimentDistribution[SentimentNeutral]; !ok {
		t.Fatalf("distribution should list every sentiment")
	}
}
