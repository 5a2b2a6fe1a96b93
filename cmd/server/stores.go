package main

import (
	"context"
	"log"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/repository/memstore"
	"feedback-backend/internal/workflow"
)

type backend struct {
	stores   workflow.Stores
	sessions auth.SessionStore
	close    func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("⚠️  Using in-memory store; data is lost on restart")
		s := memstore.New()
		return &backend{
			stores: workflow.Stores{
				Users:    s.Users(),
				Teams:    s.Teams(),
				Feedback: s.Feedback(),
				Requests: s.Requests(),
				Comments: s.Comments(),
				Acks:     s.Acks(),
				Tags:     s.Tags(),
				Tx:       s,
			},
			sessions: s.Sessions(),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.MongoTransactions)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	feedbackRepo := repository.NewFeedbackRepo(db)
	requestRepo := repository.NewRequestRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	ackRepo := repository.NewAckRepo(db)
	tagRepo := repository.NewTagRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	// Ensure indexes
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	indexed := []struct {
		name string
		repo interface{ EnsureIndexes(context.Context) error }
	}{
		{"user", userRepo},
		{"team", teamRepo},
		{"feedback", feedbackRepo},
		{"request", requestRepo},
		{"comment", commentRepo},
		{"acknowledgement", ackRepo},
		{"tag", tagRepo},
		{"session", sessionRepo},
	}
	for _, r := range indexed {
		if err := r.repo.EnsureIndexes(idxCtx); err != nil {
			log.Printf("⚠️  Warning: failed to create %s indexes: %v", r.name, err)
		}
	}

	return &backend{
		stores: workflow.Stores{
			Users:    userRepo,
			Teams:    teamRepo,
			Feedback: feedbackRepo,
			Requests: requestRepo,
			Comments: commentRepo,
			Acks:     ackRepo,
			Tags:     tagRepo,
			Tx:       db,
		},
		sessions: sessionRepo,
		close:    db.Disconnect,
	}, nil
}
