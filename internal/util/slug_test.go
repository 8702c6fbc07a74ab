package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "WINDOW", "window"},
		{"spaces to dashes", "install window handle", "install-window-handle"},
		{"underscores to dashes", "door_frame", "door-frame"},
		{"already normalized", "install-window-handle", "install-window-handle"},
		{"trim whitespace", "  drill  ", "drill"},
		{"multiple spaces", "door   frame", "door-frame"},
		{"accents decomposed", "Montáž kliky", "montaz-kliky"},
		{"punctuation removal", "what's next?", "whats-next"},
		{"slashes", "door/window", "door-window"},
		{"mixed dashes", "--door--frame--", "door-frame"},
		{"numbers allowed", "Step 10", "step-10"},
		{"empty string", "", ""},
		{"only special chars", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSlug(tt.input))
		})
	}
}

func TestIsNormalizedSlug(t *testing.T) {
	assert.True(t, IsNormalizedSlug("install-window-handle"))
	assert.False(t, IsNormalizedSlug("Install Window Handle"))
	assert.False(t, IsNormalizedSlug(""))
	assert.False(t, IsNormalizedSlug("-leading"))
}

func TestCleanTagName(t *testing.T) {
	assert.Equal(t, "okno", CleanTagName("  okno "))
	assert.Equal(t, "plastové okno", CleanTagName("plastové \t okno"))
}

func TestTagNameKey(t *testing.T) {
	assert.Equal(t, TagNameKey("okno"), TagNameKey("Okno"))
	assert.Equal(t, TagNameKey("okno"), TagNameKey("  OKNO  "))
	assert.Equal(t, TagNameKey("plastové okno"), TagNameKey("Plastové   Okno"))
	assert.NotEqual(t, TagNameKey("okno"), TagNameKey("ókno"))
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "Montaz kliky", FoldText("Montáž kliky"))
	assert.Equal(t, "okno", FoldText("okno"))
	assert.Equal(t, "zamek dveri", FoldText("zámek dveří"))
}
