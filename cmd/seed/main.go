// Command seed fills a running feedback API with demo managers, teams,
// feedback, requests, comments and acknowledgements.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"feedback-backend/internal/client"
	"feedback-backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

const demoPassword = "feedback123"

var (
	seedAPIURL    string
	seedManagers  int
	seedEmployees int
	seedRandom    int64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate a feedback API with demo data",
	Long: `Registers managers and employees through the public API, builds teams,
and adds feedback, acknowledgements, comments and feedback requests.
Every account uses the password "` + demoPassword + `".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedManagers < 1 || seedEmployees < 0 {
			return errors.New("--managers must be at least 1 and --employees non-negative")
		}
		gofakeit.Seed(seedRandom)
		s, err := seed(cmd.Context(), seedAPIURL, seedManagers, seedEmployees)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d managers, %d employees, %d feedback entries\n", s.managers, s.employees, s.feedback)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&seedAPIURL, "api", "http://localhost:8080", "Base URL of the feedback API")
	rootCmd.Flags().IntVar(&seedManagers, "managers", 3, "Number of managers to create")
	rootCmd.Flags().IntVar(&seedEmployees, "employees", 4, "Employees per manager")
	rootCmd.Flags().Int64Var(&seedRandom, "seed", time.Now().UnixNano(), "Random seed")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type member struct {
	api  *client.Client
	user models.UserSummary
}

type summary struct {
	managers, employees, feedback int
}

func seed(ctx context.Context, apiURL string, managers, perTeam int) (summary, error) {
	var s summary
	for i := 0; i < managers; i++ {
		mgr, ok := signUp(ctx, apiURL, models.RoleManager)
		if !ok {
			continue
		}
		s.managers++
		for j := 0; j < perTeam; j++ {
			emp, ok := signUp(ctx, apiURL, models.RoleEmployee)
			if !ok {
				continue
			}
			s.employees++
			if _, err := mgr.api.AddTeamMember(ctx, emp.user.ID); err != nil {
				log.Printf("⚠️  add %s to team: %v", emp.user.Email, err)
				continue
			}
			s.feedback += seedFeedback(ctx, mgr, emp)
		}
		log.Printf("✅ Seeded team for %s (%s / %s)", mgr.user.Name, mgr.user.Email, demoPassword)
	}
	if s.managers == 0 {
		return s, fmt.Errorf("no accounts could be created at %s", apiURL)
	}
	return s, nil
}

func signUp(ctx context.Context, apiURL string, role models.Role) (*member, bool) {
	api := client.New(apiURL)
	email := strings.ToLower(gofakeit.Username()) + "@" + gofakeit.DomainName()
	if _, err := api.Register(ctx, client.RegisterInput{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: demoPassword,
		Role:     role,
	}); err != nil {
		log.Printf("⚠️  register %s: %v", email, err)
		return nil, false
	}
	res, err := api.Login(ctx, email, demoPassword)
	if err != nil {
		log.Printf("⚠️  login %s: %v", email, err)
		return nil, false
	}
	api.SetToken(res.Token)
	return &member{api: api, user: res.User}, true
}

var sentiments = []string{
	string(models.SentimentPositive),
	string(models.SentimentNeutral),
	string(models.SentimentNegative),
}

func seedFeedback(ctx context.Context, mgr, emp *member) int {
	tags, err := mgr.api.SuggestedTags(ctx)
	if err != nil {
		log.Printf("⚠️  suggested tags: %v", err)
	}

	created := 0
	for n := gofakeit.Number(1, 3); n > 0; n-- {
		var picked []string
		if len(tags) > 0 {
			picked = []string{gofakeit.RandomString(tags)}
		}
		fb, err := mgr.api.SubmitFeedback(ctx, client.SubmitFeedbackInput{
			EmployeeID:   emp.user.ID,
			Strengths:    gofakeit.Sentence(10),
			Improvements: gofakeit.Sentence(12),
			Sentiment:    models.Sentiment(gofakeit.RandomString(sentiments)),
			Tags:         picked,
		})
		if err != nil {
			log.Printf("⚠️  submit feedback: %v", err)
			continue
		}
		created++
		if gofakeit.Bool() {
			if _, _, err := emp.api.Acknowledge(ctx, fb.ID); err != nil {
				log.Printf("⚠️  acknowledge: %v", err)
			}
		}
		if gofakeit.Bool() {
			if _, err := emp.api.AddComment(ctx, fb.ID, "**Thanks!** "+gofakeit.Sentence(6)); err != nil {
				log.Printf("⚠️  comment: %v", err)
			}
		}
	}

	if _, err := emp.api.RequestFeedback(ctx, client.RequestFeedbackInput{
		TargetManagerID: mgr.user.ID,
		Message:         gofakeit.Question(),
		IsAnonymous:     gofakeit.Bool(),
	}); err != nil {
		log.Printf("⚠️  request feedback: %v", err)
	}
	return created
}
