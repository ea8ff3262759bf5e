package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutes(t *testing.T) {
	out := Render("Hi {{name}}, greetings from {{company}}.", map[string]string{
		"name":    "Jane",
		"company": "TalentBridge",
	})
	assert.Equal(t, "Hi Jane, greetings from TalentBridge.", out)
}

func TestRenderLeavesUnresolvedTokens(t *testing.T) {
	assert.Equal(t, "Hello {{name}}", Render("Hello {{name}}", nil))
	assert.Equal(t, "Hello {{name}}", Render("Hello {{name}}", map[string]string{"other": "x"}))
}

func TestRenderIsIdempotent(t *testing.T) {
	tmpl := "Dear {{a}}, your quote is {{b}}."
	values := map[string]string{"a": "X", "b": "Y"}

	once := Render(tmpl, values)
	twice := Render(once, values)
	assert.Equal(t, once, twice)
}

func TestRenderValueIntroducingToken(t *testing.T) {
	// A substituted value may itself contain token syntax; a second pass then
	// resolves it. Callers render exactly once.
	out := Render("{{a}}", map[string]string{"a": "{{b}}", "b": "deep"})
	assert.Equal(t, "{{b}}", out)
	assert.Equal(t, "deep", Render(out, map[string]string{"a": "{{b}}", "b": "deep"}))
}

func TestTokensFirstAppearanceOrder(t *testing.T) {
	got := Tokens("{{b}} then {{a}} then {{b}} again")
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestUndeclaredTokens(t *testing.T) {
	tmpl := &Template{
		Kind:         KindEmail,
		Subject:      "Offer for {{company}}",
		Content:      "Hello {{name}}, see {{rate_card}}.",
		Placeholders: []string{"company", "name"},
	}
	assert.Equal(t, []string{"rate_card"}, UndeclaredTokens(tmpl))
}
