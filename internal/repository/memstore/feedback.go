package memstore

import (
	"context"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type FeedbackRepo struct{ s *Store }

func (r *FeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	defer r.s.lock(ctx)()
	if fb.IdempotencyKey != "" {
		for _, existing := range r.s.d.feedback {
			if existing.ManagerID == fb.ManagerID && existing.IdempotencyKey == fb.IdempotencyKey {
				return apperr.Conflict("feedback with this idempotency key already exists")
			}
		}
	}
	fb.ID = bson.NewObjectID()
	fb.CreatedAt = r.s.now()
	fb.UpdatedAt = fb.CreatedAt
	r.s.d.feedback[fb.ID] = *fb
	return nil
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	defer r.s.lock(ctx)()
	fb, ok := r.s.d.feedback[id]
	if !ok {
		return nil, nil
	}
	return &fb, nil
}

func (r *FeedbackRepo) FindByIdempotencyKey(ctx context.Context, managerID bson.ObjectID, key string) (*models.Feedback, error) {
	defer r.s.lock(ctx)()
	for _, fb := range r.s.d.feedback {
		if fb.ManagerID == managerID && fb.IdempotencyKey == key {
			return &fb, nil
		}
	}
	return nil, nil
}

func (r *FeedbackRepo) Update(ctx context.Context, fb *models.Feedback) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.d.feedback[fb.ID]
	if !ok {
		return apperr.NotFound("feedback not found")
	}
	fb.UpdatedAt = r.s.now()
	stored.Strengths = fb.Strengths
	stored.Improvements = fb.Improvements
	stored.Sentiment = fb.Sentiment
	stored.UpdatedAt = fb.UpdatedAt
	r.s.d.feedback[fb.ID] = stored
	return nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.d.feedback[id]; !ok {
		return false, nil
	}
	delete(r.s.d.feedback, id)
	return true, nil
}

func (r *FeedbackRepo) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	defer r.s.lock(ctx)()
	return sorted(r.s.d.feedback, filter.Matches,
		func(fb *models.Feedback) (time.Time, bson.ObjectID) { return fb.CreatedAt, fb.ID },
		true), nil
}

func (r *FeedbackRepo) CountBySentiment(ctx context.Context, filter models.FeedbackFilter) (map[models.Sentiment]int64, error) {
	defer r.s.lock(ctx)()
	counts := make(map[models.Sentiment]int64)
	for _, fb := range r.s.d.feedback {
		if filter.Matches(&fb) {
			counts[fb.Sentiment]++
		}
	}
	return counts, nil
}

type CommentRepo struct{ s *Store }

func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	defer r.s.lock(ctx)()
	c.ID = bson.NewObjectID()
	c.CreatedAt = r.s.now()
	r.s.d.comments[c.ID] = *c
	return nil
}

func (r *CommentRepo) ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Comment, error) {
	defer r.s.lock(ctx)()
	return sorted(r.s.d.comments,
		func(c *models.Comment) bool { return c.FeedbackID == feedbackID },
		func(c *models.Comment) (time.Time, bson.ObjectID) { return c.CreatedAt, c.ID },
		false), nil
}

func (r *CommentRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	return deleteWhere(r.s.d.comments, func(c *models.Comment) bool { return c.FeedbackID == feedbackID }), nil
}

type AckRepo struct{ s *Store }

func (r *AckRepo) Acknowledge(ctx context.Context, ack *models.Acknowledgement) (*models.Acknowledgement, bool, error) {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.d.acks {
		if existing.FeedbackID == ack.FeedbackID && existing.EmployeeID == ack.EmployeeID {
			return &existing, false, nil
		}
	}
	stored := *ack
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = r.s.now()
	r.s.d.acks[stored.ID] = stored
	return &stored, true, nil
}

func (r *AckRepo) ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Acknowledgement, error) {
	defer r.s.lock(ctx)()
	return sorted(r.s.d.acks,
		func(a *models.Acknowledgement) bool { return a.FeedbackID == feedbackID },
		func(a *models.Acknowledgement) (time.Time, bson.ObjectID) { return a.CreatedAt, a.ID },
		false), nil
}

func (r *AckRepo) AcknowledgedSet(ctx context.Context, feedbackIDs []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	defer r.s.lock(ctx)()
	want := make(map[bson.ObjectID]bool, len(feedbackIDs))
	for _, id := range feedbackIDs {
		want[id] = true
	}
	set := make(map[bson.ObjectID]bool)
	for _, a := range r.s.d.acks {
		if want[a.FeedbackID] {
			set[a.FeedbackID] = true
		}
	}
	return set, nil
}

func (r *AckRepo) Count(ctx context.Context, filter models.AckFilter) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, a := range r.s.d.acks {
		if filter.Matches(&a) {
			n++
		}
	}
	return n, nil
}

func (r *AckRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	return deleteWhere(r.s.d.acks, func(a *models.Acknowledgement) bool { return a.FeedbackID == feedbackID }), nil
}

type TagRepo struct{ s *Store }

func (r *TagRepo) Create(ctx context.Context, tag *models.Tag) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.d.tags {
		if existing.FeedbackID == tag.FeedbackID && existing.NameKey == tag.NameKey {
			return apperr.Conflict("tag %q already exists on this feedback", tag.TagName)
		}
	}
	tag.ID = bson.NewObjectID()
	tag.CreatedAt = r.s.now()
	r.s.d.tags[tag.ID] = *tag
	return nil
}

func (r *TagRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Tag, error) {
	defer r.s.lock(ctx)()
	tag, ok := r.s.d.tags[id]
	if !ok {
		return nil, nil
	}
	return &tag, nil
}

func (r *TagRepo) ListByFeedback(ctx context.Context, feedbackIDs ...bson.ObjectID) ([]models.Tag, error) {
	defer r.s.lock(ctx)()
	want := make(map[bson.ObjectID]bool, len(feedbackIDs))
	for _, id := range feedbackIDs {
		want[id] = true
	}
	return sorted(r.s.d.tags,
		func(t *models.Tag) bool { return want[t.FeedbackID] },
		func(t *models.Tag) (time.Time, bson.ObjectID) { return t.CreatedAt, t.ID },
		false), nil
}

func (r *TagRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.d.tags[id]; !ok {
		return false, nil
	}
	delete(r.s.d.tags, id)
	return true, nil
}

func (r *TagRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	return deleteWhere(r.s.d.tags, func(t *models.Tag) bool { return t.FeedbackID == feedbackID }), nil
}

func deleteWhere[T any](m map[bson.ObjectID]T, match func(*T) bool) int64 {
	var n int64
	for id, v := range m {
		if match(&v) {
			delete(m, id)
			n++
		}
	}
	return n
}
