package sitegen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPromptBlockOrder(t *testing.T) {
	prompt := BuildSystemPrompt(DefaultStyle())

	headings := []string{
		"Output constraints:",
		"Hard constraints:",
		"Length:",
		"Style:",
		"Tone rules:",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(prompt, h)
		assert.Greater(t, idx, last, "heading %q out of order", h)
		last = idx
	}

	// 角色块没有标题，排在最前
	assert.True(t, strings.HasPrefix(prompt, "- You are a senior website copywriter"))
	assert.Contains(t, prompt, "- Never invent phone numbers")
}

func TestBuildSystemPromptSkipsEmptyBlocks(t *testing.T) {
	prompt := BuildSystemPrompt(StyleConfig{
		RoleIntro: []string{"You write copy."},
		Length:    []string{"Short."},
	})

	assert.Equal(t, "- You write copy.\n\nLength:\n- Short.", prompt)
	assert.NotContains(t, prompt, "Hard constraints:")
}

func TestBuildUserPromptBlockOrder(t *testing.T) {
	profile := &OnboardingProfile{Name: "Novák", Focus: "carpentry"}
	prompt := BuildUserPrompt(UserPromptInput{
		SectionType:  "h002",
		SectionTitle: "Hero",
		Version:      2,
		Language:     "cs",
		Brief:        "Business name: Novák",
		Persona:      "You are writing website copy for Novák.",
		Onboarding:   profile,
		DefaultData:  json.RawMessage(`{"headline":"x"}`),
	})

	markers := []string{
		"You are writing website copy for Novák.",
		"Business brief:",
		"Onboarding profile (JSON):",
		"Section type: h002",
		"Section meta:",
		"- Section title: Hero",
		"- Schema version: 2",
		"- Output language: cs",
		"Target data shape",
		`{"headline":"x"}`,
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(prompt, m)
		assert.Greater(t, idx, last, "marker %q out of order", m)
		last = idx
	}
}

func TestBuildUserPromptOmitsEmptyBlocks(t *testing.T) {
	prompt := BuildUserPrompt(UserPromptInput{
		SectionType: "ct001",
		Brief:       "a plumber in Prague",
		DefaultData: json.RawMessage(`{"email":""}`),
	})

	assert.NotContains(t, prompt, "You are writing")
	assert.NotContains(t, prompt, "Onboarding profile")
	assert.NotContains(t, prompt, "Section meta:")
	assert.Contains(t, prompt, "Business brief:\na plumber in Prague")
	assert.Contains(t, prompt, "Section type: ct001")
}
