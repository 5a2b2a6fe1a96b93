package workflow

import (
	"context"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AddTeamMember puts an employee on the acting manager's team. An employee
// already on any team is a conflict.
func (s *Service) AddTeamMember(ctx context.Context, actor Actor, managerID, employeeID bson.ObjectID) (*models.TeamMembership, error) {
	if !actor.IsManager() || actor.UserID != managerID {
		return nil, apperr.Authorization("you can only manage your own team")
	}
	employee, err := s.stores.Users.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperr.NotFound("employee not found")
	}
	if employee.Role != models.RoleEmployee {
		return nil, apperr.Validation("only employees can be added to a team")
	}

	m := &models.TeamMembership{ManagerID: managerID, EmployeeID: employeeID}
	if err := s.stores.Teams.Add(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveTeamMember takes an employee off the acting manager's team. Feedback
// already written stays in place.
func (s *Service) RemoveTeamMember(ctx context.Context, actor Actor, managerID, employeeID bson.ObjectID) error {
	if !actor.IsManager() || actor.UserID != managerID {
		return apperr.Authorization("you can only manage your own team")
	}
	removed, err := s.stores.Teams.Remove(ctx, managerID, employeeID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("team member not found")
	}
	return nil
}

// ListTeam returns the employees on managerID's team. The manager and the
// team's members may list it.
func (s *Service) ListTeam(ctx context.Context, actor Actor, managerID bson.ObjectID) ([]models.UserSummary, error) {
	if actor.UserID != managerID {
		current, err := s.currentManager(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if current != managerID {
			return nil, apperr.Authorization("you are not on this team")
		}
	}
	members, err := s.stores.Teams.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.EmployeeID)
	}
	users, err := s.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(members))
	for _, m := range members {
		if u := users[m.EmployeeID]; u != nil {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

// ListAvailableEmployees returns employees who are on no team yet.
func (s *Service) ListAvailableEmployees(ctx context.Context, actor Actor, managerID bson.ObjectID) ([]models.UserSummary, error) {
	if !actor.IsManager() || actor.UserID != managerID {
		return nil, apperr.Authorization("you can only manage your own team")
	}
	members, err := s.stores.Teams.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[bson.ObjectID]bool, len(members))
	for _, m := range members {
		taken[m.EmployeeID] = true
	}
	employees, err := s.stores.Users.List(ctx, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(employees))
	for i := range employees {
		if !taken[employees[i].ID] {
			out = append(out, employees[i].Summary())
		}
	}
	return out, nil
}

// ListUsers returns the directory, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, actor Actor, role models.Role) ([]models.UserSummary, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.Validation("role must be Manager or Employee")
	}
	users, err := s.stores.Users.List(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, actor Actor, id bson.ObjectID) (*models.UserSummary, error) {
	u, err := s.stores.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	summary := u.Summary()
	return &summary, nil
}
