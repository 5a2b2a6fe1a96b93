package workflow_test

import (
	"testing"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestTeamMembership(t *testing.T) {
	f := newFixture(t)
	manager := f.user(t, "maria", models.RoleManager)
	other := f.user(t, "otto", models.RoleManager)
	eli := f.user(t, "eli", models.RoleEmployee)
	ann := f.user(t, "ann", models.RoleEmployee)

	_, err := f.svc.AddTeamMember(f.ctx, other, manager.UserID, eli.UserID)
	wantKind(t, err, apperr.ErrAuthorization)
	_, err = f.svc.AddTeamMember(f.ctx, manager, manager.UserID, other.UserID)
	wantKind(t, err, apperr.ErrValidation)
	_, err = f.svc.AddTeamMember(f.ctx, manager, manager.UserID, bson.NewObjectID())
	wantKind(t, err, apperr.ErrNotFound)

	f.join(t, manager, eli)
	_, err = f.svc.AddTeamMember(f.ctx, other, other.UserID, eli.UserID)
	wantKind(t, err, apperr.ErrConflict)

	available, err := f.svc.ListAvailableEmployees(f.ctx, manager, manager.UserID)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(available) != 1 || available[0].ID != ann.UserID {
		t.Fatalf("available = %+v, want only ann", available)
	}

	team, err := f.svc.ListTeam(f.ctx, manager, manager.UserID)
	if err != nil || len(team) != 1 || team[0].Name != "eli" {
		t.Fatalf("team: %v %+v", err, team)
	}
	if _, err := f.svc.ListTeam(f.ctx, eli, manager.UserID); err != nil {
		t.Fatalf("member should see own team: %v", err)
	}
	_, err = f.svc.ListTeam(f.ctx, ann, manager.UserID)
	wantKind(t, err, apperr.ErrAuthorization)

	wantKind(t, f.svc.RemoveTeamMember(f.ctx, manager, manager.UserID, ann.UserID), apperr.ErrNotFound)
	if err := f.svc.RemoveTeamMember(f.ctx, manager, manager.UserID, eli.UserID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := f.svc.AddTeamMember(f.ctx, other, other.UserID, eli.UserID); err != nil {
		t.Fatalf("employee should be free to join another team: %v", err)
	}
}

func TestDirectory(t *testing.T) {
	f := newFixture(t)
	manager := f.user(t, "maria", models.RoleManager)
	f.user(t, "eli", models.RoleEmployee)
	f.user(t, "ann", models.RoleEmployee)

	employees, err := f.svc.ListUsers(f.ctx, manager, models.RoleEmployee)
	if err != nil || len(employees) != 2 || employees[0].Name != "ann" {
		t.Fatalf("employees: %v %+v", err, employees)
	}
	all, _ := f.svc.ListUsers(f.ctx, manager, "")
	if len(all) != 3 {
		t.Fatalf("all users = %d", len(all))
	}
	_, err = f.svc.ListUsers(f.ctx, manager, "Admin")
	wantKind(t, err, apperr.ErrValidation)

	u, err := f.svc.GetUser(f.ctx, workflow.Actor{UserID: bson.NewObjectID(), Role: models.RoleEmployee}, manager.UserID)
	if err != nil || u.Name != "maria" {
		t.Fatalf("get user: %v %+v", err, u)
	}
	_, err = f.svc.GetUser(f.ctx, manager, bson.NewObjectID())
	wantKind(t, err, apperr.ErrNotFound)
}
