package draftreply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"review-responder/internal/models"
)

func TestEnsureSignOff(t *testing.T) {
	profile := &models.BusinessProfile{ResponderName: "Олена"}

	tests := []struct {
		name         string
		text         string
		want         string
		wantRepaired bool
	}{
		{
			name: "already signed",
			text: "Дякуємо за відгук!\n\n- Олена",
			want: "Дякуємо за відгук!\n\n- Олена",
		},
		{
			name: "trailing whitespace only",
			text: "Дякуємо!\n- Олена\n\n  ",
			want: "Дякуємо!\n- Олена",
		},
		{
			name:         "missing sign-off is appended",
			text:         "Дякуємо за відгук!",
			want:         "Дякуємо за відгук!\n\n- Олена",
			wantRepaired: true,
		},
		{
			name:         "em dash is normalized",
			text:         "Дякуємо!\n\n— Олена",
			want:         "Дякуємо!\n\n- Олена",
			wantRepaired: true,
		},
		{
			name:         "en dash without space",
			text:         "Дякуємо!\n–Олена.",
			want:         "Дякуємо!\n- Олена",
			wantRepaired: true,
		},
		{
			name:         "bare name",
			text:         "Дякуємо!\nОлена",
			want:         "Дякуємо!\n- Олена",
			wantRepaired: true,
		},
		{
			name: "sign-off at the end of a sentence",
			text: "Дякуємо за відгук! - Олена",
			want: "Дякуємо за відгук! - Олена",
		},
		{
			name:         "em dash sign-off at the end of a sentence",
			text:         "Дякуємо за відгук! — Олена.",
			want:         "Дякуємо за відгук! - Олена",
			wantRepaired: true,
		},
		{
			name:         "closing formula with name",
			text:         "Дякуємо за відгук!\nЗ повагою, Олена",
			want:         "Дякуємо за відгук!\nЗ повагою,\n- Олена",
			wantRepaired: true,
		},
		{
			name:         "hyphenated name is not a sign-off",
			text:         "Дякуємо!\nАнна-Олена",
			want:         "Дякуємо!\nАнна-Олена\n\n- Олена",
			wantRepaired: true,
		},
		{
			name:         "other signature is kept and sign-off appended",
			text:         "Дякуємо!\n- Адміністрація",
			want:         "Дякуємо!\n- Адміністрація\n\n- Олена",
			wantRepaired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repaired := EnsureSignOff(tt.text, profile)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRepaired, repaired)
			assert.True(t, strings.HasSuffix(got, profile.SignOff()))

			again, repairedAgain := EnsureSignOff(got, profile)
			assert.Equal(t, got, again)
			assert.False(t, repairedAgain)
		})
	}
}

func TestFindAvoidPhrases(t *testing.T) {
	phrases := []string{"ми в захваті", "Це чудово", "  "}

	assert.Equal(t, []string{"ми в захваті", "Це чудово"},
		FindAvoidPhrases("Ми В Захваті від вашого відгуку. це чудово!", phrases))
	assert.Empty(t, FindAvoidPhrases("Дякуємо за довіру.", phrases))
	assert.Empty(t, FindAvoidPhrases("будь-що", nil))
}
