package leads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/users"
)

type fixture struct {
	svc     *Service
	repo    *InMemoryRepository
	users   *users.InMemoryRepository
	audit   *activity.MemoryRecorder
	admin   *users.User
	manager *users.User
	bd      *users.User
	bd2     *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	userRepo := users.NewInMemoryRepository()
	admin, err := userRepo.Create(ctx, &users.User{Name: "Asha", Email: "asha@talentbridge.io", Role: users.RoleAdmin})
	require.NoError(t, err)
	manager, err := userRepo.Create(ctx, &users.User{Name: "Manu", Email: "manu@talentbridge.io", Role: users.RoleManager})
	require.NoError(t, err)
	bd, err := userRepo.Create(ctx, &users.User{Name: "Bala", Email: "bala@talentbridge.io", Role: users.RoleBDExecutive})
	require.NoError(t, err)
	bd2, err := userRepo.Create(ctx, &users.User{Name: "Banu", Email: "banu@talentbridge.io", Role: users.RoleBDExecutive})
	require.NoError(t, err)

	repo := NewInMemoryRepository()
	audit := activity.NewMemoryRecorder()
	svc := NewService(repo, userRepo, audit, nil, nil)

	return &fixture{svc: svc, repo: repo, users: userRepo, audit: audit,
		admin: admin, manager: manager, bd: bd, bd2: bd2}
}

func validCreateRequest() *CreateLeadRequest {
	return &CreateLeadRequest{
		CompanyName:      "Acme",
		WebsiteURL:       "https://acme.com",
		CompanyEmail:     "info@acme.com",
		IndustryName:     "Tech",
		NoOfDesignations: 1,
		PointsOfContact: []PointOfContact{
			{Name: "Jane", Email: "jane@acme.com"},
		},
	}
}

func TestCreateRequiresOneUsableContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		contacts []PointOfContact
	}{
		{"no contacts", nil},
		{"name without email", []PointOfContact{{Name: "Jane"}}},
		{"email without name", []PointOfContact{{Email: "jane@acme.com"}}},
		{"invalid email", []PointOfContact{{Name: "Jane", Email: "not-an-email"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			req.PointsOfContact = tt.contacts
			_, err := f.svc.Create(ctx, req, f.bd.ID)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err))
		})
	}
}

func TestCreateDefaultsStageToNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)
	assert.Equal(t, StageNew, lead.Stage)
	assert.Equal(t, f.bd.ID, lead.AssignedBy)
	assert.NotEmpty(t, lead.PointsOfContact[0].ID)

	entries, err := f.audit.Query(ctx, activity.Filter{LeadID: lead.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.ActionCreate, entries[0].Action)
}

func TestCreateCollectsAllFieldErrors(t *testing.T) {
	f := newFixture(t)

	req := &CreateLeadRequest{
		CompanyName:  "",
		WebsiteURL:   "acme.com",
		CompanyEmail: "nope",
	}
	_, err := f.svc.Create(context.Background(), req, f.bd.ID)
	require.Error(t, err)

	var v *faults.ValidationError
	require.ErrorAs(t, err, &v)
	fields := make(map[string]bool)
	for _, fe := range v.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"company_name", "website_url", "company_email", "industry_name", "no_of_designations", "points_of_contact"} {
		assert.True(t, fields[want], "expected a violation for %s", want)
	}
}

func TestUpdateStageEnumClosure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	for _, s := range Stages {
		_, err := f.svc.UpdateStage(ctx, lead.ID, s, f.bd.ID)
		require.NoError(t, err, "stage %q should be accepted", s)
	}

	_, err = f.svc.UpdateStage(ctx, lead.ID, Stage("Closed"), f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestUpdateStageLockEnforcement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	// bd locks the lead.
	locked := true
	_, err = f.svc.Update(ctx, lead.ID, &UpdateLeadRequest{Locked: &locked}, f.bd.ID)
	require.NoError(t, err)

	// Another BD executive is refused.
	_, err = f.svc.UpdateStage(ctx, lead.ID, StageContacted, f.bd2.ID)
	require.Error(t, err)
	assert.True(t, faults.IsAuthorization(err))

	// The lock holder may proceed.
	_, err = f.svc.UpdateStage(ctx, lead.ID, StageContacted, f.bd.ID)
	require.NoError(t, err)

	// Admin and Manager bypass the lock.
	_, err = f.svc.UpdateStage(ctx, lead.ID, StageNegotiation, f.admin.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateStage(ctx, lead.ID, StageWon, f.manager.ID)
	require.NoError(t, err)
}

func TestUpdateRejectsMalformedLinkedIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	bad := "https://twitter.com/acme"
	_, err = f.svc.Update(ctx, lead.ID, &UpdateLeadRequest{LinkedInLink: &bad}, f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestUpdateUnknownLeadIsNotFound(t *testing.T) {
	f := newFixture(t)

	name := "New Name"
	_, err := f.svc.Update(context.Background(), "missing", &UpdateLeadRequest{CompanyName: &name}, f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsNotFound(err))
}

func TestBulkAssignPartialApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		lead, err := f.svc.Create(ctx, validCreateRequest(), f.manager.ID)
		require.NoError(t, err)
		ids = append(ids, lead.ID)
	}
	ids = append(ids, "no-such-lead")

	res, err := f.svc.BulkAssign(ctx, &BulkAssignRequest{
		LeadIDs:    ids,
		AssigneeID: f.bd.ID,
		Stage:      StageContacted,
	}, f.manager.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Done)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "no-such-lead", res.Errors[0].Ref)

	for _, id := range ids[:3] {
		lead, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, f.bd.ID, lead.AssignedTo)
		assert.Equal(t, StageContacted, lead.Stage)
	}
}

func TestBulkAssignRequiresAssigneeOrStage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BulkAssign(context.Background(), &BulkAssignRequest{
		LeadIDs: []string{"l1"},
	}, f.manager.ID)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestVersionConflictOnConcurrentWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	// Two readers fetch the same version; the second writer must lose.
	stale, err := f.repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)

	fresh, err := f.repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	fresh.Stage = StageContacted
	_, err = f.repo.Update(ctx, fresh)
	require.NoError(t, err)

	stale.Stage = StageWon
	_, err = f.repo.Update(ctx, stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestContactManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	// Contact stage outside the enum is refused.
	_, err = f.svc.ReplaceContacts(ctx, lead.ID, []PointOfContact{
		{Name: "Jane", Stage: POCStage("Ghosted")},
	}, f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	// Email is not required once the lead exists.
	updated, err := f.svc.ReplaceContacts(ctx, lead.ID, []PointOfContact{
		{Name: "Ravi", Stage: POCBusy},
	}, f.bd.ID)
	require.NoError(t, err)
	require.Len(t, updated.PointsOfContact, 1)
	assert.Equal(t, "Ravi", updated.PointsOfContact[0].Name)

	// Per-item operations.
	updated, err = f.svc.AddContact(ctx, lead.ID, PointOfContact{Name: "Mia", Email: "mia@acme.com"}, f.bd.ID)
	require.NoError(t, err)
	require.Len(t, updated.PointsOfContact, 2)

	contactID := updated.PointsOfContact[1].ID
	updated, err = f.svc.UpdateContact(ctx, lead.ID, PointOfContact{ID: contactID, Name: "Mia K", Stage: POCContacted}, f.bd.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mia K", updated.PointsOfContact[1].Name)

	updated, err = f.svc.RemoveContact(ctx, lead.ID, contactID, f.bd.ID)
	require.NoError(t, err)
	require.Len(t, updated.PointsOfContact, 1)

	_, err = f.svc.RemoveContact(ctx, lead.ID, "no-such-contact", f.bd.ID)
	assert.True(t, faults.IsNotFound(err))
}

func TestRemarkLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	rm, err := f.svc.AddRemark(ctx, &Remark{LeadID: lead.ID, Type: RemarkText, Content: "spoke to Jane"}, f.bd.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bd.ID, rm.AuthorID)

	_, err = f.svc.AddRemark(ctx, &Remark{LeadID: lead.ID, Type: RemarkFile}, f.bd.ID)
	require.Error(t, err, "file remark needs a file_url")

	// Managers may not delete remarks.
	err = f.svc.DeleteRemark(ctx, lead.ID, rm.ID, f.manager.ID)
	require.Error(t, err)
	assert.True(t, faults.IsAuthorization(err))

	// A BD Executive may not delete another author's remark.
	err = f.svc.DeleteRemark(ctx, lead.ID, rm.ID, f.bd2.ID)
	require.Error(t, err)
	assert.True(t, faults.IsAuthorization(err))

	require.NoError(t, f.svc.DeleteRemark(ctx, lead.ID, rm.ID, f.bd.ID))

	// Admins can delete remarks they did not author.
	rm2, err := f.svc.AddRemark(ctx, &Remark{LeadID: lead.ID, Type: RemarkText, Content: "followup"}, f.bd.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRemark(ctx, lead.ID, rm2.ID, f.admin.ID))

	remarks, err := f.svc.ListRemarks(ctx, lead.ID)
	require.NoError(t, err)
	assert.Empty(t, remarks)
}

func TestDeleteLeadAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, lead.ID, f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsAuthorization(err))

	require.NoError(t, f.svc.Delete(ctx, lead.ID, f.admin.ID))
	_, err = f.svc.Get(ctx, lead.ID)
	assert.True(t, faults.IsNotFound(err))
}

func TestEndToEndCreateAndWin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, &CreateLeadRequest{
		CompanyName:      "Acme",
		WebsiteURL:       "https://acme.com",
		CompanyEmail:     "info@acme.com",
		IndustryName:     "Tech",
		NoOfDesignations: 1,
		PointsOfContact:  []PointOfContact{{Name: "Jane", Email: "jane@acme.com"}},
	}, f.bd.ID)
	require.NoError(t, err)
	assert.Equal(t, StageNew, lead.Stage)

	won, err := f.svc.UpdateStage(ctx, lead.ID, StageWon, f.bd.ID)
	require.NoError(t, err)
	assert.Equal(t, StageWon, won.Stage)

	entries, err := f.svc.Activities(ctx, lead.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, activity.ActionUpdate, entries[0].Action)
	assert.JSONEq(t, `{"stage":"Won"}`, string(entries[0].UpdatedFields))
}

func TestInactiveActorRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bd.Status = users.StatusInactive
	_, err := f.users.Update(ctx, f.bd)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, validCreateRequest(), f.bd.ID)
	require.Error(t, err)
	assert.True(t, faults.IsAuthorization(err))
}
