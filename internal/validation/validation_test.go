package validation

import (
	"strings"
	"testing"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostForm(t *testing.T) {
	groups := []*domain.Group{
		{ID: "g1", Slug: "cats"},
		{ID: "g2", Slug: "dogs"},
	}

	tests := []struct {
		name       string
		form       PostForm
		wantFields []string
		wantText   string
		wantGroup  string
	}{
		{"text only", PostForm{Text: "Hello"}, nil, "Hello", ""},
		{"text and group", PostForm{Text: "Hello", Group: "g2"}, nil, "Hello", "g2"},
		{"trims text", PostForm{Text: "  Hello \n"}, nil, "Hello", ""},
		{"empty text", PostForm{Text: ""}, []string{"text"}, "", ""},
		{"blank text", PostForm{Text: " \t "}, []string{"text"}, "", ""},
		{"unknown group", PostForm{Text: "Hello", Group: "g9"}, []string{"group"}, "", ""},
		{"both invalid", PostForm{Group: "nope"}, []string{"text", "group"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := ValidatePostForm(tt.form, groups)
			if tt.wantFields != nil {
				require.True(t, errs.HasErrors())
				var fields []string
				for _, e := range errs {
					fields = append(fields, e.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
				return
			}

			require.False(t, errs.HasErrors(), "unexpected errors: %v", errs)
			assert.Equal(t, tt.wantText, input.Text)
			if tt.wantGroup == "" {
				assert.Nil(t, input.GroupID)
			} else {
				require.NotNil(t, input.GroupID)
				assert.Equal(t, tt.wantGroup, *input.GroupID)
			}
		})
	}
}

func TestValidatePostFormMessages(t *testing.T) {
	_, errs := ValidatePostForm(PostForm{Group: "x"}, nil)
	byField := errs.ByField()
	assert.Equal(t, []string{MsgRequired}, byField["text"])
	assert.Equal(t, []string{MsgInvalidChoice}, byField["group"])
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"with digits", "alice2", false},
		{"with punctuation", "a.l-i_c+e@x", false},
		{"empty", "", true},
		{"space", "alice smith", true},
		{"slash", "alice/bob", true},
		{"non ascii", "алиса", true},
		{"too long", strings.Repeat("a", 151), true},
		{"max length", strings.Repeat("a", 150), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"alice@example.com", false},
		{"alice@github", false},
		{"", true},
		{"@example.com", true},
		{"alice@", true},
		{"alice example@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSignupForm(t *testing.T) {
	valid := SignupForm{Username: "alice", Password: "correct horse", Password2: "correct horse"}
	assert.False(t, ValidateSignupForm(valid).HasErrors())

	withEmail := valid
	withEmail.Email = "alice@example.com"
	assert.False(t, ValidateSignupForm(withEmail).HasErrors())

	tests := []struct {
		name  string
		form  SignupForm
		field string
	}{
		{"missing username", SignupForm{Password: "longenough", Password2: "longenough"}, "username"},
		{"bad username", SignupForm{Username: "a b", Password: "longenough", Password2: "longenough"}, "username"},
		{"bad email", SignupForm{Username: "alice", Email: "nope", Password: "longenough", Password2: "longenough"}, "email"},
		{"missing password", SignupForm{Username: "alice"}, "password"},
		{"short password", SignupForm{Username: "alice", Password: "short", Password2: "short"}, "password"},
		{"mismatch", SignupForm{Username: "alice", Password: "longenough", Password2: "different"}, "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSignupForm(tt.form)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"cats", false},
		{"cats-and_dogs-2", false},
		{"", true},
		{"Cats", true},
		{"cats dogs", true},
		{"котики", true},
		{strings.Repeat("a", 51), true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGroup(t *testing.T) {
	assert.False(t, ValidateGroup(&domain.Group{Title: "Cats", Slug: "cats"}).HasErrors())

	errs := ValidateGroup(&domain.Group{Title: " ", Slug: "Bad Slug"})
	byField := errs.ByField()
	assert.Contains(t, byField, "title")
	assert.Contains(t, byField, "slug")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Cats", "cats"},
		{"Cats & Dogs", "cats-dogs"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Crème brûlée", "creme-brulee"},
		{"Тестовая группа", "testovaia-gruppa"},
		{"Ёжики в тумане", "ezhiki-v-tumane"},
		{"snake_case stays", "snake_case-stays"},
		{"!!!", ""},
		{strings.Repeat("long ", 20), "long-long-long-long-long-long-long-long-long-long"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Slugify(tt.title)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.NoError(t, ValidateSlug(got))
			}
		})
	}
}
