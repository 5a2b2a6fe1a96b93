package workflow_test

import (
	"sync"
	"testing"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
)

func TestAcknowledgeTwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	manager, employee, _ := people(t, f)
	fb := f.submit(t, manager, employee, models.SentimentPositive)

	first, created, err := f.svc.AcknowledgeFeedback(f.ctx, employee, fb.ID)
	if err != nil || !created {
		t.Fatalf("first ack: created=%v err=%v", created, err)
	}
	second, created, err := f.svc.AcknowledgeFeedback(f.ctx, employee, fb.ID)
	if err != nil {
		t.Fatalf("second ack must not fail: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("second ack created a new row")
	}
	acks, _ := f.svc.ListAcknowledgements(f.ctx, manager, fb.ID)
	if len(acks) != 1 {
		t.Fatalf("ack rows = %d, want 1", len(acks))
	}

	got, _ := f.svc.GetFeedback(f.ctx, manager, fb.ID)
	if !got.Acknowledged {
		t.Fatalf("feedback should read as acknowledged")
	}

	f.svc.Wait()
	if n := len(f.rec.ofType(notify.FeedbackAcknowledged)); n != 1 {
		t.Fatalf("acknowledged events = %d, want 1", n)
	}
}

func TestConcurrentAcknowledge(t *testing.T) {
	f := newFixture(t)
	manager, employee, _ := people(t, f)
	fb := f.submit(t, manager, employee, models.SentimentNeutral)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := f.svc.AcknowledgeFeedback(f.ctx, employee, fb.ID); err != nil {
				t.Errorf("ack: %v", err)
			}
		}()
	}
	wg.Wait()
	acks, _ := f.store.Acks().ListByFeedback(f.ctx, fb.ID)
	if len(acks) != 1 {
		t.Fatalf("ack rows = %d, want 1", len(acks))
	}
}

func TestOnlySubjectCanAcknowledge(t *testing.T) {
	f := newFixture(t)
	manager, employee, _ := people(t, f)
	peer := f.user(t, "pat", models.RoleEmployee)
	fb := f.submit(t, manager, employee, models.SentimentPositive)

	_, _, err := f.svc.AcknowledgeFeedback(f.ctx, manager, fb.ID)
	wantKind(t, err, apperr.ErrAuthorization)
	_, _, err = f.svc.AcknowledgeFeedback(f.ctx, peer, fb.ID)
	wantKind(t, err, apperr.ErrAuthorization)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	manager, employee, other := people(t, f)
	fb := f.submit(t, manager, employee, models.SentimentPositive)

	if _, err := f.svc.AddComment(f.ctx, employee, fb.ID, "   "); err == nil {
		t.Fatalf("blank comment accepted")
	}
	_, err := f.svc.AddComment(f.ctx, other, fb.ID, "drive-by")
	wantKind(t, err, apperr.ErrAuthorization)

	c, err := f.svc.AddComment(f.ctx, employee, fb.ID, "Will do *next sprint*")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if !c.IsMarkdown || c.UserName != "eli" {
		t.Fatalf("unexpected comment: %+v", c)
	}
	if _, err := f.svc.AddComment(f.ctx, manager, fb.ID, "Great"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	thread, err := f.svc.ListComments(f.ctx, manager, fb.ID)
	if err != nil || len(thread) != 2 {
		t.Fatalf("thread: %v len=%d", err, len(thread))
	}
	if thread[0].UserName != "eli" || thread[1].UserName != "maria" {
		t.Fatalf("thread should be oldest first: %q, %q", thread[0].UserName, thread[1].UserName)
	}

	f.svc.Wait()
	events := f.rec.ofType(notify.CommentAdded)
	if len(events) != 2 || events[0].RecipientID == events[1].RecipientID {
		t.Fatalf("comment notifications should go to the other participant: %+v", events)
	}
}

func TestTags(t *testing.T) {
	f := newFixture(t)
	manager, employee, other := people(t, f)
	fb := f.submit(t, manager, employee, models.SentimentPositive)

	byEmployee, err := f.svc.AddTag(f.ctx, employee, fb.ID, " Growth ")
	if err != nil {
		t.Fatalf("employee tag: %v", err)
	}
	if byEmployee.TagName != "Growth" {
		t.Fatalf("tag name not trimmed: %q", byEmployee.TagName)
	}
	_, err = f.svc.AddTag(f.ctx, manager, fb.ID, "growth")
	wantKind(t, err, apperr.ErrConflict)
	_, err = f.svc.AddTag(f.ctx, manager, fb.ID, "")
	wantKind(t, err, apperr.ErrValidation)
	_, err = f.svc.AddTag(f.ctx, other, fb.ID, "Drive-by")
	wantKind(t, err, apperr.ErrAuthorization)

	byManager, err := f.svc.AddTag(f.ctx, manager, fb.ID, "Leadership")
	if err != nil {
		t.Fatalf("manager tag: %v", err)
	}

	// The subject may remove their own tag but not the author's.
	wantKind(t, f.svc.DeleteTag(f.ctx, employee, byManager.ID), apperr.ErrAuthorization)
	wantKind(t, f.svc.DeleteTag(f.ctx, other, byEmployee.ID), apperr.ErrAuthorization)
	if err := f.svc.DeleteTag(f.ctx, employee, byEmployee.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if err := f.svc.DeleteTag(f.ctx, manager, byManager.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	wantKind(t, f.svc.DeleteTag(f.ctx, manager, byManager.ID), apperr.ErrNotFound)

	tags, err := f.svc.ListTags(f.ctx, employee, fb.ID)
	if err != nil || len(tags) != 0 {
		t.Fatalf("tags after delete: %v %d", err, len(tags))
	}
	if n := len(f.svc.SuggestedTags()); n != 12 {
		t.Fatalf("suggested tags = %d", n)
	}
}
