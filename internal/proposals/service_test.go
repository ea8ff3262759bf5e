package proposals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/ratecards"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
)

type fixture struct {
	svc      *Service
	leads    *leads.InMemoryRepository
	tmpl     *templates.Service
	cards    *ratecards.Service
	audit    *activity.MemoryRecorder
	leadID   string
	tmplID   string
	cardID   string
	cardVers string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	leadRepo := leads.NewInMemoryRepository()
	lead, err := leadRepo.Create(ctx, &leads.Lead{
		CompanyName:  "Acme",
		IndustryName: "Tech",
		WebsiteURL:   "https://acme.com",
		CompanyEmail: "info@acme.com",
		Stage:        leads.StageNew,
		PointsOfContact: []leads.PointOfContact{
			{ID: "poc-1", Name: "Jane", Email: "jane@acme.com"},
		},
	})
	require.NoError(t, err)

	tmplSvc := templates.NewService(templates.NewInMemoryRepository(), nil)
	tmpl, err := tmplSvc.Create(ctx, &templates.Template{
		Name:    "standard proposal",
		Kind:    templates.KindProposal,
		Content: "Dear {{contact_name}}, {{company_name}} pricing follows rate card {{rate_card_version}}. {{custom}}",
	})
	require.NoError(t, err)

	cardSvc := ratecards.NewService(ratecards.NewInMemoryRepository(), nil, nil)
	card, err := cardSvc.Create(ctx, &ratecards.RateCard{
		Version: "2026-Q3",
		Items: []ratecards.Item{
			{Name: "Senior Engineer", Category: ratecards.CategoryIT, BasePrice: 12000, Unit: "per hire"},
		},
	})
	require.NoError(t, err)
	_, err = cardSvc.Activate(ctx, card.ID)
	require.NoError(t, err)

	audit := activity.NewMemoryRecorder()
	svc := NewService(NewInMemoryRepository(), leadRepo, tmplSvc, cardSvc, audit, nil)

	return &fixture{
		svc: svc, leads: leadRepo, tmpl: tmplSvc, cards: cardSvc, audit: audit,
		leadID: lead.ID, tmplID: tmpl.ID, cardID: card.ID, cardVers: card.Version,
	}
}

func TestCreateSnapshotsTemplateAndRateCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, &CreateRequest{
		LeadID:     f.leadID,
		TemplateID: f.tmplID,
		Values:     map[string]string{"custom": "Regards."},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, f.tmplID, p.TemplateID)
	assert.Equal(t, "2026-Q3", p.RateCardVersion)
	assert.Equal(t, "Dear Jane, Acme pricing follows rate card 2026-Q3. Regards.", p.Content)

	// A later rate card does not rewrite the stored snapshot.
	card2, err := f.cards.Create(ctx, &ratecards.RateCard{
		Version: "2026-Q4",
		Items:   []ratecards.Item{{Name: "x", Category: ratecards.CategoryIT, BasePrice: 1}},
	})
	require.NoError(t, err)
	_, err = f.cards.Activate(ctx, card2.ID)
	require.NoError(t, err)

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-Q3", stored.RateCardVersion)
}

func TestCreateRequiresActiveRateCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cards.Delete(ctx, f.cardID))
	_, err := f.svc.Create(ctx, &CreateRequest{LeadID: f.leadID, TemplateID: f.tmplID}, "user-1")
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestCreateUnknownLead(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &CreateRequest{
		LeadID: "ghost", TemplateID: f.tmplID,
	}, "user-1")
	assert.True(t, faults.IsNotFound(err))
}

func TestUpdateStatusEnumOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, &CreateRequest{LeadID: f.leadID, TemplateID: f.tmplID}, "user-1")
	require.NoError(t, err)

	// Any enum value is accepted, even skipping the usual path.
	updated, err := f.svc.UpdateStatus(ctx, p.ID, StatusAccepted, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, p.ID, Status("Ghosted"), "user-1")
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestMarkSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, &CreateRequest{LeadID: f.leadID, TemplateID: f.tmplID}, "user-1")
	require.NoError(t, err)

	sent, err := f.svc.MarkSent(ctx, p.ID, ChannelEmail, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	assert.Equal(t, ChannelEmail, sent.SentVia)
	require.NotNil(t, sent.SentAt)

	_, err = f.svc.MarkSent(ctx, p.ID, Channel(""), "user-1")
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	entries, err := f.audit.Query(ctx, activity.Filter{LeadID: f.leadID, EntityType: "proposal"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
