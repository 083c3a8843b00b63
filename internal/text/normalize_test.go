package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_ArabicVariants(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"hamza on alef", "أحمد", "احمد"},
		{"alef madda", "آمنة", "امنه"},
		{"hamza under alef", "إبراهيم", "ابراهيم"},
		{"taa marbuta", "مدرسة", "مدرسه"},
		{"alef maqsura", "مصطفى", "مصطفي"},
		{"hamza on waw", "مؤمن", "مومن"},
		{"hamza on yaa", "بئر", "بير"},
		{"diacritics", "مُحَمَّد", "محمد"},
		{"tatweel", "كـــذبة", "كذبه"},
		{"surrounding space", "  باريس ", "باريس"},
		{"latin case", "Paris", "paris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Normalize(tt.b), Normalize(tt.a))
			assert.True(t, Equal(tt.a, tt.b))
		})
	}
}

func TestNormalize_DistinctStaysDistinct(t *testing.T) {
	assert.NotEqual(t, Normalize("لندن"), Normalize("باريس"))
	assert.False(t, Equal("طوكيو", "باريس"))
}

func TestNormalizeRoomCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234", "1234"},
		{"١٢٣٤", "1234"}, // Arabic-Indic
		{"۱۲۳۴", "1234"}, // Extended Arabic-Indic
		{" 42١٢ ", "4212"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRoomCode(tt.in))
	}
}

func TestNormalize_TruthMatch(t *testing.T) {
	// A truth differing only by diacritics must be detected.
	truth := "بَارِيس"
	assert.True(t, Equal("باريس", truth))
}
