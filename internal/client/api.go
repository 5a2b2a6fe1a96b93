package client

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// --- Auth ---

func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	var res auth.LoginResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.UserSummary, error) {
	var res struct {
		User models.UserSummary `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/register", in, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	return err
}

// --- Team ---

func (c *Client) MyTeam(ctx context.Context) ([]models.UserSummary, error) {
	var out []models.UserSummary
	_, err := c.do(ctx, http.MethodGet, "/api/team", nil, &out)
	return out, err
}

func (c *Client) Team(ctx context.Context, managerID bson.ObjectID) ([]models.UserSummary, error) {
	var out []models.UserSummary
	_, err := c.do(ctx, http.MethodGet, "/api/team/"+managerID.Hex(), nil, &out)
	return out, err
}

func (c *Client) AvailableEmployees(ctx context.Context, managerID bson.ObjectID) ([]models.UserSummary, error) {
	var out []models.UserSummary
	_, err := c.do(ctx, http.MethodGet, "/api/team/members/"+managerID.Hex(), nil, &out)
	return out, err
}

func (c *Client) AddTeamMember(ctx context.Context, employeeID bson.ObjectID) (*models.TeamMembership, error) {
	var out models.TeamMembership
	body := map[string]string{"employee_id": employeeID.Hex()}
	if _, err := c.do(ctx, http.MethodPost, "/api/team", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveTeamMember(ctx context.Context, employeeID bson.ObjectID) error {
	body := map[string]string{"employee_id": employeeID.Hex()}
	_, err := c.do(ctx, http.MethodDelete, "/api/team", body, nil)
	return err
}

// --- Feedback ---

type SubmitFeedbackInput struct {
	EmployeeID     bson.ObjectID    `json:"employee_id"`
	Strengths      string           `json:"strengths"`
	Improvements   string           `json:"improvements"`
	Sentiment      models.Sentiment `json:"sentiment"`
	Tags           []string         `json:"tags,omitempty"`
	IdempotencyKey string           `json:"idempotency_key"`
}

// SubmitFeedback creates feedback. A key is generated when the caller leaves
// IdempotencyKey empty; passing the same input again replays instead of
// creating a second entry.
func (c *Client) SubmitFeedback(ctx context.Context, in SubmitFeedbackInput) (*workflow.FeedbackView, error) {
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.NewString()
	}
	var out workflow.FeedbackView
	if _, err := c.do(ctx, http.MethodPost, "/api/feedback", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type EditFeedbackInput struct {
	Strengths    *string           `json:"strengths,omitempty"`
	Improvements *string           `json:"improvements,omitempty"`
	Sentiment    *models.Sentiment `json:"sentiment,omitempty"`
}

func (c *Client) EditFeedback(ctx context.Context, id bson.ObjectID, in EditFeedbackInput) (*workflow.FeedbackView, error) {
	var out workflow.FeedbackView
	if _, err := c.do(ctx, http.MethodPut, "/api/feedback/"+id.Hex(), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFeedback(ctx context.Context, id bson.ObjectID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/feedback/"+id.Hex(), nil, nil)
	return err
}

func (c *Client) Feedback(ctx context.Context, id bson.ObjectID) (*workflow.FeedbackView, error) {
	var out workflow.FeedbackView
	if _, err := c.do(ctx, http.MethodGet, "/api/feedback/"+id.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EmployeeFeedback(ctx context.Context, employeeID bson.ObjectID) ([]workflow.FeedbackView, error) {
	var out []workflow.FeedbackView
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/employee/"+employeeID.Hex(), nil, &out)
	return out, err
}

func (c *Client) ManagerFeedback(ctx context.Context, managerID bson.ObjectID) ([]workflow.FeedbackView, error) {
	var out []workflow.FeedbackView
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/manager/"+managerID.Hex(), nil, &out)
	return out, err
}

// Acknowledge marks feedback as seen. created is false when it already was.
func (c *Client) Acknowledge(ctx context.Context, feedbackID bson.ObjectID) (ack *models.Acknowledgement, created bool, err error) {
	var out models.Acknowledgement
	body := map[string]string{"feedback_id": feedbackID.Hex()}
	status, err := c.do(ctx, http.MethodPost, "/api/feedback/acknowledge", body, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}

func (c *Client) Acknowledgements(ctx context.Context, feedbackID bson.ObjectID) ([]models.Acknowledgement, error) {
	var out []models.Acknowledgement
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/acknowledgements/"+feedbackID.Hex(), nil, &out)
	return out, err
}

func (c *Client) ManagerStats(ctx context.Context, managerID bson.ObjectID) (*models.Stats, error) {
	var out models.Stats
	if _, err := c.do(ctx, http.MethodGet, "/api/feedback/stats/"+managerID.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EmployeeStats(ctx context.Context, employeeID bson.ObjectID) (*models.Stats, error) {
	var out models.Stats
	if _, err := c.do(ctx, http.MethodGet, "/api/feedback/employee/stats/"+employeeID.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Export struct {
	Filename string
	Body     []byte
}

func (c *Client) ExportFeedback(ctx context.Context, id bson.ObjectID) (*Export, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/feedback/export/"+id.Hex(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transient(err, "reading export")
	}
	exp := &Export{Body: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		exp.Filename = params["filename"]
	}
	return exp, nil
}

// --- Requests ---

type RequestFeedbackInput struct {
	TargetManagerID bson.ObjectID `json:"target_manager_id"`
	Message         string        `json:"message"`
	IsAnonymous     bool          `json:"is_anonymous"`
}

func (c *Client) RequestFeedback(ctx context.Context, in RequestFeedbackInput) (*workflow.RequestView, error) {
	var out workflow.RequestView
	if _, err := c.do(ctx, http.MethodPost, "/api/feedback/request", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id bson.ObjectID, status models.RequestStatus) (*workflow.RequestView, error) {
	var out workflow.RequestView
	body := map[string]models.RequestStatus{"status": status}
	if _, err := c.do(ctx, http.MethodPut, "/api/feedback/request/"+id.Hex(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ManagerRequests(ctx context.Context, managerID bson.ObjectID) ([]workflow.RequestView, error) {
	var out []workflow.RequestView
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/requests/"+managerID.Hex(), nil, &out)
	return out, err
}

func (c *Client) EmployeeRequests(ctx context.Context, employeeID bson.ObjectID) ([]workflow.RequestView, error) {
	var out []workflow.RequestView
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/requests/employee/"+employeeID.Hex(), nil, &out)
	return out, err
}

// --- Comments & tags ---

func (c *Client) AddComment(ctx context.Context, feedbackID bson.ObjectID, text string) (*workflow.CommentView, error) {
	var out workflow.CommentView
	body := map[string]string{"feedback_id": feedbackID.Hex(), "text": text}
	if _, err := c.do(ctx, http.MethodPost, "/api/comments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Comments(ctx context.Context, feedbackID bson.ObjectID) ([]workflow.CommentView, error) {
	var out []workflow.CommentView
	_, err := c.do(ctx, http.MethodGet, "/api/comments/"+feedbackID.Hex(), nil, &out)
	return out, err
}

func (c *Client) SuggestedTags(ctx context.Context) ([]string, error) {
	var out []string
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/tags", nil, &out)
	return out, err
}

func (c *Client) Tags(ctx context.Context, feedbackID bson.ObjectID) ([]models.Tag, error) {
	var out []models.Tag
	_, err := c.do(ctx, http.MethodGet, "/api/feedback/tags/"+feedbackID.Hex(), nil, &out)
	return out, err
}

func (c *Client) AddTag(ctx context.Context, feedbackID bson.ObjectID, name string) (*models.Tag, error) {
	var out models.Tag
	body := map[string]string{"feedback_id": feedbackID.Hex(), "tag_name": name}
	if _, err := c.do(ctx, http.MethodPost, "/api/feedback/tags", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTag(ctx context.Context, tagID bson.ObjectID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/feedback/tags/"+tagID.Hex(), nil, nil)
	return err
}

// --- Directory ---

func (c *Client) Users(ctx context.Context, role models.Role) ([]models.UserSummary, error) {
	path := "/api/users"
	if role != "" {
		path += "?" + url.Values{"role": {string(role)}}.Encode()
	}
	var out []models.UserSummary
	_, err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) User(ctx context.Context, id bson.ObjectID) (*models.UserSummary, error) {
	var out models.UserSummary
	if _, err := c.do(ctx, http.MethodGet, "/api/user/"+id.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
