package workflow

import (
	"context"
	"errors"
	"strings"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type FeedbackView struct {
	models.Feedback
	ManagerName  string       `json:"manager_name,omitempty"`
	EmployeeName string       `json:"employee_name,omitempty"`
	Acknowledged bool         `json:"acknowledged"`
	Tags         []models.Tag `json:"tags"`
}

type SubmitInput struct {
	EmployeeID     bson.ObjectID
	Strengths      string
	Improvements   string
	Sentiment      models.Sentiment
	Tags           []string
	IdempotencyKey string
}

// EditInput holds the fields to change; nil fields keep their value.
type EditInput struct {
	Strengths    *string
	Improvements *string
	Sentiment    *models.Sentiment
}

func validateFeedbackFields(strengths, improvements string, sentiment models.Sentiment) error {
	if strings.TrimSpace(strengths) == "" {
		return apperr.Validation("strengths is required")
	}
	if strings.TrimSpace(improvements) == "" {
		return apperr.Validation("improvements is required")
	}
	if !sentiment.Valid() {
		return apperr.Validation("sentiment must be one of positive, neutral, negative")
	}
	return nil
}

// SubmitFeedback records feedback from a manager about an employee on their
// team. With an idempotency key a repeat submission returns the original and
// reports created=false.
func (s *Service) SubmitFeedback(ctx context.Context, actor Actor, in SubmitInput) (*FeedbackView, bool, error) {
	if !actor.IsManager() {
		return nil, false, apperr.Authorization("only managers can submit feedback")
	}
	if err := validateFeedbackFields(in.Strengths, in.Improvements, in.Sentiment); err != nil {
		return nil, false, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey != "" {
		existing, err := s.stores.Feedback.FindByIdempotencyKey(ctx, actor.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			view, err := s.feedbackView(ctx, existing)
			return view, false, err
		}
	}

	employee, err := s.stores.Users.FindByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, false, err
	}
	if employee == nil {
		return nil, false, apperr.NotFound("employee not found")
	}
	ok, err := s.managesEmployee(ctx, actor, employee.ID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, apperr.Authorization("employee is not on your team")
	}

	fb := &models.Feedback{
		ManagerID:      actor.UserID,
		EmployeeID:     employee.ID,
		Strengths:      strings.TrimSpace(in.Strengths),
		Improvements:   strings.TrimSpace(in.Improvements),
		Sentiment:      in.Sentiment,
		IdempotencyKey: in.IdempotencyKey,
	}
	err = s.stores.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.stores.Feedback.Create(ctx, fb); err != nil {
			return err
		}
		for _, name := range tags {
			tag := &models.Tag{FeedbackID: fb.ID, TagName: name, NameKey: tagKey(name), CreatedBy: actor.UserID}
			if err := s.stores.Tags.Create(ctx, tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent submission with the same key won the insert.
		if in.IdempotencyKey != "" && errors.Is(err, apperr.ErrConflict) {
			existing, ferr := s.stores.Feedback.FindByIdempotencyKey(ctx, actor.UserID, in.IdempotencyKey)
			if ferr == nil && existing != nil {
				view, verr := s.feedbackView(ctx, existing)
				return view, false, verr
			}
		}
		return nil, false, err
	}

	s.emit(notify.Event{
		Type:        notify.FeedbackSubmitted,
		FeedbackID:  fb.ID.Hex(),
		ActorID:     actor.UserID.Hex(),
		RecipientID: fb.EmployeeID.Hex(),
		Detail:      string(fb.Sentiment),
	})
	view, err := s.feedbackView(ctx, fb)
	return view, true, err
}

// EditFeedback applies a partial update. Only the authoring manager may edit.
func (s *Service) EditFeedback(ctx context.Context, actor Actor, id bson.ObjectID, in EditInput) (*FeedbackView, error) {
	fb, err := s.loadFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.UserID != fb.ManagerID {
		return nil, apperr.Authorization("only the manager who wrote this feedback can edit it")
	}

	updated := *fb
	if in.Strengths != nil {
		updated.Strengths = strings.TrimSpace(*in.Strengths)
	}
	if in.Improvements != nil {
		updated.Improvements = strings.TrimSpace(*in.Improvements)
	}
	if in.Sentiment != nil {
		updated.Sentiment = *in.Sentiment
	}
	if err := validateFeedbackFields(updated.Strengths, updated.Improvements, updated.Sentiment); err != nil {
		return nil, err
	}
	if err := s.stores.Feedback.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return s.feedbackView(ctx, &updated)
}

// DeleteFeedback removes feedback together with its comments, tags and
// acknowledgements.
func (s *Service) DeleteFeedback(ctx context.Context, actor Actor, id bson.ObjectID) error {
	fb, err := s.loadFeedback(ctx, id)
	if err != nil {
		return err
	}
	if actor.UserID != fb.ManagerID {
		return apperr.Authorization("only the manager who wrote this feedback can delete it")
	}

	return s.stores.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.stores.Comments.DeleteByFeedback(ctx, fb.ID); err != nil {
			return err
		}
		if _, err := s.stores.Tags.DeleteByFeedback(ctx, fb.ID); err != nil {
			return err
		}
		if _, err := s.stores.Acks.DeleteByFeedback(ctx, fb.ID); err != nil {
			return err
		}
		deleted, err := s.stores.Feedback.Delete(ctx, fb.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound("feedback not found")
		}
		return nil
	})
}

func (s *Service) GetFeedback(ctx context.Context, actor Actor, id bson.ObjectID) (*FeedbackView, error) {
	fb, err := s.loadViewable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.feedbackView(ctx, fb)
}

// ListEmployeeFeedback returns feedback about employeeID, newest first. The
// employee and their current manager may list it.
func (s *Service) ListEmployeeFeedback(ctx context.Context, actor Actor, employeeID bson.ObjectID) ([]FeedbackView, error) {
	if actor.UserID != employeeID {
		ok, err := s.managesEmployee(ctx, actor, employeeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Authorization("you are not allowed to view this employee's feedback")
		}
	}
	list, err := s.stores.Feedback.List(ctx, models.FeedbackFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	return s.feedbackViews(ctx, list)
}

// ListManagerFeedback returns feedback written by managerID, newest first.
func (s *Service) ListManagerFeedback(ctx context.Context, actor Actor, managerID bson.ObjectID) ([]FeedbackView, error) {
	if actor.UserID != managerID {
		return nil, apperr.Authorization("you can only list feedback you wrote")
	}
	list, err := s.stores.Feedback.List(ctx, models.FeedbackFilter{ManagerID: managerID})
	if err != nil {
		return nil, err
	}
	return s.feedbackViews(ctx, list)
}

func (s *Service) feedbackView(ctx context.Context, fb *models.Feedback) (*FeedbackView, error) {
	views, err := s.feedbackViews(ctx, []models.Feedback{*fb})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) feedbackViews(ctx context.Context, list []models.Feedback) ([]FeedbackView, error) {
	views := make([]FeedbackView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	ids := make([]bson.ObjectID, 0, len(list))
	people := make([]bson.ObjectID, 0, 2*len(list))
	for _, fb := range list {
		ids = append(ids, fb.ID)
		people = append(people, fb.ManagerID, fb.EmployeeID)
	}
	acked, err := s.stores.Acks.AcknowledgedSet(ctx, ids)
	if err != nil {
		return nil, err
	}
	tags, err := s.stores.Tags.ListByFeedback(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byFeedback := make(map[bson.ObjectID][]models.Tag, len(list))
	for _, t := range tags {
		byFeedback[t.FeedbackID] = append(byFeedback[t.FeedbackID], t)
	}
	users, err := s.users(ctx, people...)
	if err != nil {
		return nil, err
	}

	for _, fb := range list {
		t := byFeedback[fb.ID]
		if t == nil {
			t = []models.Tag{}
		}
		views = append(views, FeedbackView{
			Feedback:     fb,
			ManagerName:  nameOf(users, fb.ManagerID),
			EmployeeName: nameOf(users, fb.EmployeeID),
			Acknowledged: acked[fb.ID],
			Tags:         t,
		})
	}
	return views, nil
}
