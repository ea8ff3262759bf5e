package outreach

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/observability/metrics"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
)

func newStatusStore(t *testing.T) *StatusStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewStatusStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
}

func TestDispatchEmail(t *testing.T) {
	email := NewStubEmailSender(nil)
	store := newStatusStore(t)
	m := metrics.NewCRMMetrics(prometheus.NewRegistry())
	d := NewDispatcher(email, NewStubWhatsAppSender("", nil), store, m, nil)
	ctx := context.Background()

	delivery, err := d.Dispatch(ctx, &DispatchRequest{
		Channel: ChannelEmail,
		To:      "jane@acme.com",
		ToName:  "Jane",
		Subject: "Proposal",
		Body:    "Please find our proposal attached.",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, delivery.Status)
	require.Len(t, email.Sent, 1)
	assert.Equal(t, "Proposal", email.Sent[0].Subject)

	stored, err := store.Get(ctx, delivery.Ref)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)
}

func TestDispatchRendersStoredTemplate(t *testing.T) {
	tmplSvc := templates.NewService(templates.NewInMemoryRepository(), nil)
	tmpl, err := tmplSvc.Create(context.Background(), &templates.Template{
		Name:    "Follow-up",
		Kind:    templates.KindEmail,
		Subject: "Hello {{contact_name}}",
		Content: "Checking in about {{company_name}}. {{unknown}}",
	})
	require.NoError(t, err)

	email := NewStubEmailSender(nil)
	d := NewDispatcher(email, nil, nil, nil, nil).WithTemplates(tmplSvc)

	_, err = d.Dispatch(context.Background(), &DispatchRequest{
		Channel:    ChannelEmail,
		To:         "jane@acme.com",
		TemplateID: tmpl.ID,
		Values:     map[string]string{"contact_name": "Jane", "company_name": "Acme"},
	})
	require.NoError(t, err)
	require.Len(t, email.Sent, 1)
	assert.Equal(t, "Hello Jane", email.Sent[0].Subject)
	assert.Equal(t, "Checking in about Acme. {{unknown}}", email.Sent[0].Body)

	// Unknown template ids surface as not-found, not as a silent empty send.
	_, err = d.Dispatch(context.Background(), &DispatchRequest{
		Channel: ChannelEmail, To: "jane@acme.com", TemplateID: "ghost",
	})
	assert.True(t, faults.IsNotFound(err))
}

func TestDispatchValidation(t *testing.T) {
	d := NewDispatcher(NewStubEmailSender(nil), NewStubWhatsAppSender("", nil), nil, nil, nil)

	_, err := d.Dispatch(context.Background(), &DispatchRequest{Channel: Channel("fax"), Body: "x"})
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	_, err = d.Dispatch(context.Background(), &DispatchRequest{Channel: ChannelEmail})
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestEmailDeliveryProgression(t *testing.T) {
	store := newStatusStore(t)
	d := NewDispatcher(NewStubEmailSender(nil), nil, store, nil, nil)
	ctx := context.Background()

	delivery, err := d.Dispatch(ctx, &DispatchRequest{
		Channel: ChannelEmail, To: "jane@acme.com", Body: "hi",
	})
	require.NoError(t, err)

	for _, want := range []DeliveryStatus{StatusDelivered, StatusOpened} {
		got, err := store.Advance(ctx, delivery.Ref)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	// Terminal state holds.
	got, err := store.Advance(ctx, delivery.Ref)
	require.NoError(t, err)
	assert.Equal(t, StatusOpened, got.Status)
}

func TestWhatsAppDeliveryEndsRead(t *testing.T) {
	store := newStatusStore(t)
	wa := NewStubWhatsAppSender("", nil)
	d := NewDispatcher(nil, wa, store, nil, nil)
	ctx := context.Background()

	delivery, err := d.Dispatch(ctx, &DispatchRequest{
		Channel: ChannelWhatsApp, To: "+919876543210", Body: "hello",
	})
	require.NoError(t, err)
	require.Len(t, wa.Sent, 1)

	var last *Delivery
	for i := 0; i < 2; i++ {
		last, err = store.Advance(ctx, delivery.Ref)
		require.NoError(t, err)
	}
	assert.Equal(t, StatusRead, last.Status)
}

func TestAdvanceUnknownRef(t *testing.T) {
	store := newStatusStore(t)

	_, err := store.Advance(context.Background(), "ghost")
	assert.True(t, faults.IsNotFound(err))
}

func TestDispatchWithoutConfiguredSender(t *testing.T) {
	d := NewDispatcher(nil, nil, nil, nil, nil)

	_, err := d.Dispatch(context.Background(), &DispatchRequest{
		Channel: ChannelEmail, To: "a@b.co", Body: "x",
	})
	require.Error(t, err)
	assert.False(t, faults.IsValidation(err))
}
