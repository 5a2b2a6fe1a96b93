// Package memstore keeps every collection in process memory. It honours the
// same contracts as the Mongo repositories and backs tests and local runs.
package memstore

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type data struct {
	users    map[bson.ObjectID]models.User
	teams    map[bson.ObjectID]models.TeamMembership
	feedback map[bson.ObjectID]models.Feedback
	requests map[bson.ObjectID]models.FeedbackRequest
	comments map[bson.ObjectID]models.Comment
	acks     map[bson.ObjectID]models.Acknowledgement
	tags     map[bson.ObjectID]models.Tag
	sessions map[bson.ObjectID]models.Session
}

func (d *data) clone() data {
	return data{
		users:    maps.Clone(d.users),
		teams:    maps.Clone(d.teams),
		feedback: maps.Clone(d.feedback),
		requests: maps.Clone(d.requests),
		comments: maps.Clone(d.comments),
		acks:     maps.Clone(d.acks),
		tags:     maps.Clone(d.tags),
		sessions: maps.Clone(d.sessions),
	}
}

type Store struct {
	mu  sync.Mutex
	d   data
	now func() time.Time
}

func New() *Store {
	return &Store{
		d: data{
			users:    make(map[bson.ObjectID]models.User),
			teams:    make(map[bson.ObjectID]models.TeamMembership),
			feedback: make(map[bson.ObjectID]models.Feedback),
			requests: make(map[bson.ObjectID]models.FeedbackRequest),
			comments: make(map[bson.ObjectID]models.Comment),
			acks:     make(map[bson.ObjectID]models.Acknowledgement),
			tags:     make(map[bson.ObjectID]models.Tag),
			sessions: make(map[bson.ObjectID]models.Session),
		},
		now: time.Now,
	}
}

type txKey struct{}

// lock takes the store mutex unless ctx already runs inside this store's
// transaction, in which case RunInTx holds it.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTx runs fn with the store locked. If fn fails every write it made is
// rolled back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() *UserRepo { return &UserRepo{s} }
func (s *Store) Teams() *TeamRepo { return &TeamRepo{s} }
func (s *Store) Feedback() *FeedbackRepo { return &FeedbackRepo{s} }
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s} }
func (s *Store) Comments() *CommentRepo { return &CommentRepo{s} }
func (s *Store) Acks() *AckRepo { return &AckRepo{s} }
func (s *Store) Tags() *TagRepo { return &TagRepo{s} }
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s} }

// sorted returns the values of m accepted by keep, ordered by created time and
// then by id so records created in the same instant keep insertion order.
func sorted[T any](m map[bson.ObjectID]T, keep func(*T) bool, key func(*T) (time.Time, bson.ObjectID), desc bool) []T {
	out := make([]T, 0)
	for _, v := range m {
		if keep(&v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b T) int {
		ta, ia := key(&a)
		tb, ib := key(&b)
		c := ta.Compare(tb)
		if c == 0 {
			c = bytes.Compare(ia[:], ib[:])
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}
