package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil)

	tests := []struct {
		name string
		tmpl Template
	}{
		{"missing name", Template{Kind: KindEmail, Content: "hi"}},
		{"missing content", Template{Name: "t", Kind: KindEmail}},
		{"bad kind", Template{Name: "t", Kind: Kind("sms"), Content: "hi"}},
		{"subject on whatsapp", Template{Name: "t", Kind: KindWhatsApp, Subject: "s", Content: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.tmpl)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err))
		})
	}
}

func TestServiceCreateInfersPlaceholders(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil)

	created, err := svc.Create(context.Background(), &Template{
		Name:    "intro",
		Kind:    KindEmail,
		Subject: "Hello {{company}}",
		Content: "Hi {{name}}, this is {{sender}}.",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "name", "sender"}, created.Placeholders)
}

func TestServiceRenderByID(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, &Template{
		Name:    "intro",
		Kind:    KindEmail,
		Subject: "Offer for {{company}}",
		Content: "Hi {{name}}, your rate is {{rate}}.",
	})
	require.NoError(t, err)

	out, err := svc.RenderByID(ctx, created.ID, map[string]string{
		"company": "Acme",
		"name":    "Jane",
	})
	require.NoError(t, err)
	assert.Equal(t, "Offer for Acme", out.Subject)
	assert.Equal(t, "Hi Jane, your rate is {{rate}}.", out.Content)

	_, err = svc.RenderByID(ctx, "missing", nil)
	assert.True(t, faults.IsNotFound(err))
}

func TestServiceListFilters(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, &Template{Name: "a", Kind: KindEmail, Content: "x", Active: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &Template{Name: "b", Kind: KindWhatsApp, Content: "y"})
	require.NoError(t, err)

	out, err := svc.List(ctx, ListFilter{Kind: KindEmail})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name)

	out, err = svc.List(ctx, ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name)
}
