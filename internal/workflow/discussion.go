package workflow

import (
	"context"
	"strings"
	"unicode/utf8"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CommentView struct {
	models.Comment
	UserName string `json:"user_name"`
}

// AcknowledgeFeedback marks feedback as seen by its subject. Repeating it is a
// no-op that returns the original acknowledgement with created=false.
func (s *Service) AcknowledgeFeedback(ctx context.Context, actor Actor, feedbackID bson.ObjectID) (*models.Acknowledgement, bool, error) {
	fb, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return nil, false, err
	}
	if actor.UserID != fb.EmployeeID {
		return nil, false, apperr.Authorization("only the employee this feedback is about can acknowledge it")
	}

	ack, created, err := s.stores.Acks.Acknowledge(ctx, &models.Acknowledgement{
		FeedbackID: fb.ID,
		EmployeeID: fb.EmployeeID,
		ManagerID:  fb.ManagerID,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.emit(notify.Event{
			Type:        notify.FeedbackAcknowledged,
			FeedbackID:  fb.ID.Hex(),
			ActorID:     actor.UserID.Hex(),
			RecipientID: fb.ManagerID.Hex(),
		})
	}
	return ack, created, nil
}

func (s *Service) ListAcknowledgements(ctx context.Context, actor Actor, feedbackID bson.ObjectID) ([]models.Acknowledgement, error) {
	fb, err := s.loadViewable(ctx, actor, feedbackID)
	if err != nil {
		return nil, err
	}
	acks, err := s.stores.Acks.ListByFeedback(ctx, fb.ID)
	if err != nil {
		return nil, err
	}
	if acks == nil {
		acks = []models.Acknowledgement{}
	}
	return acks, nil
}

// AddComment appends a markdown comment to the feedback thread.
func (s *Service) AddComment(ctx context.Context, actor Actor, feedbackID bson.ObjectID, text string) (*CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text is required")
	}
	fb, err := s.loadViewable(ctx, actor, feedbackID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		FeedbackID: fb.ID,
		UserID:     actor.UserID,
		Text:       text,
		IsMarkdown: true,
	}
	if err := s.stores.Comments.Create(ctx, c); err != nil {
		return nil, err
	}

	recipient := fb.EmployeeID
	if actor.UserID == fb.EmployeeID {
		recipient = fb.ManagerID
	}
	s.emit(notify.Event{
		Type:        notify.CommentAdded,
		FeedbackID:  fb.ID.Hex(),
		ActorID:     actor.UserID.Hex(),
		RecipientID: recipient.Hex(),
	})

	users, err := s.users(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &CommentView{Comment: *c, UserName: nameOf(users, actor.UserID)}, nil
}

// ListComments returns the thread oldest first.
func (s *Service) ListComments(ctx context.Context, actor Actor, feedbackID bson.ObjectID) ([]CommentView, error) {
	fb, err := s.loadViewable(ctx, actor, feedbackID)
	if err != nil {
		return nil, err
	}
	comments, err := s.stores.Comments.ListByFeedback(ctx, fb.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{Comment: c, UserName: nameOf(users, c.UserID)})
	}
	return views, nil
}

// AddTag attaches a label to feedback. Names are unique per feedback,
// ignoring case.
func (s *Service) AddTag(ctx context.Context, actor Actor, feedbackID bson.ObjectID, name string) (*models.Tag, error) {
	name, err := normalizeTag(name)
	if err != nil {
		return nil, err
	}
	fb, err := s.loadViewable(ctx, actor, feedbackID)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{
		FeedbackID: fb.ID,
		TagName:    name,
		NameKey:    tagKey(name),
		CreatedBy:  actor.UserID,
	}
	if err := s.stores.Tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag. The feedback's author and the tag's creator may
// delete it.
func (s *Service) DeleteTag(ctx context.Context, actor Actor, tagID bson.ObjectID) error {
	tag, err := s.stores.Tags.FindByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return apperr.NotFound("tag not found")
	}
	fb, err := s.loadViewable(ctx, actor, tag.FeedbackID)
	if err != nil {
		return err
	}
	if actor.UserID != fb.ManagerID && actor.UserID != tag.CreatedBy {
		return apperr.Authorization("only the feedback author or the tag creator can remove this tag")
	}
	deleted, err := s.stores.Tags.Delete(ctx, tag.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("tag not found")
	}
	return nil
}

func (s *Service) ListTags(ctx context.Context, actor Actor, feedbackID bson.ObjectID) ([]models.Tag, error) {
	fb, err := s.loadViewable(ctx, actor, feedbackID)
	if err != nil {
		return nil, err
	}
	tags, err := s.stores.Tags.ListByFeedback(ctx, fb.ID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// SuggestedTags returns the fixed list offered when tagging feedback.
func (s *Service) SuggestedTags() []string {
	return append([]string(nil), models.SuggestedTags...)
}

func normalizeTag(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("tag name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxTagLength {
		return "", apperr.Validation("tag name must be at most %d characters", models.MaxTagLength)
	}
	return name, nil
}

// normalizeTags validates names and drops case-insensitive duplicates.
func normalizeTags(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n, err := normalizeTag(n)
		if err != nil {
			return nil, err
		}
		if seen[tagKey(n)] {
			continue
		}
		seen[tagKey(n)] = true
		out = append(out, n)
	}
	return out, nil
}

func tagKey(name string) string {
	return strings.ToLower(name)
}
