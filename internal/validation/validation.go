// Package validation provides validation functions for blog forms and records.
// Functions return either a cleaned value or field-level ValidationErrors;
// they never touch storage.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bcnelson/yatube/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field limits.
const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxGroupTitle     = 200
	MaxSlugLength     = 50
)

// Form error messages.
const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// isAlpha returns true if the byte is an ASCII letter.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// PostForm is a submitted post form.
type PostForm struct {
	Text  string
	Group string // group id, or empty for no group
}

// ValidatePostForm checks a submitted post against the known groups.
// On success it returns the cleaned input and no errors.
func ValidatePostForm(form PostForm, groups []*domain.Group) (domain.PostInput, ValidationErrors) {
	var errs ValidationErrors

	text := strings.TrimSpace(form.Text)
	if text == "" {
		errs.Add("text", form.Text, MsgRequired)
	}

	var groupID *string
	if g := strings.TrimSpace(form.Group); g != "" {
		found := false
		for _, group := range groups {
			if group.ID == g {
				found = true
				break
			}
		}
		if found {
			groupID = &g
		} else {
			errs.Add("group", form.Group, MsgInvalidChoice)
		}
	}

	if errs.HasErrors() {
		return domain.PostInput{}, errs
	}
	return domain.PostInput{Text: text, GroupID: groupID}, nil
}

// ValidateUsername validates a username.
// Usernames are 1-150 characters of letters, digits and @ . + - _.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	for _, b := range []byte(username) {
		if !isAlpha(b) && !isNum(b) && !strings.ContainsRune("@.+-_", rune(b)) {
			return fmt.Errorf("username can only contain letters, numbers, and @/./+/-/_ characters")
		}
	}
	return nil
}

// ValidatePassword validates password length.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters long", MaxPasswordLength)
	}
	return nil
}

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return fmt.Errorf("email must contain '@' after at least one character")
	}
	if atIndex == len(email)-1 {
		return fmt.Errorf("email must have domain after '@'")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return fmt.Errorf("email must not contain whitespace")
	}
	return nil
}

// SignupForm is a submitted registration form.
type SignupForm struct {
	Username  string
	FullName  string
	Email     string
	Password  string
	Password2 string
}

// ValidateSignupForm checks a registration form. Email is optional.
func ValidateSignupForm(form SignupForm) ValidationErrors {
	var errs ValidationErrors

	if form.Username == "" {
		errs.Add("username", form.Username, MsgRequired)
	} else if err := ValidateUsername(form.Username); err != nil {
		errs.Add("username", form.Username, err.Error())
	}

	if form.Email != "" {
		if err := ValidateEmail(form.Email); err != nil {
			errs.Add("email", form.Email, err.Error())
		}
	}

	if form.Password == "" {
		errs.Add("password", "", MsgRequired)
	} else if err := ValidatePassword(form.Password); err != nil {
		errs.Add("password", "", err.Error())
	} else if form.Password != form.Password2 {
		errs.Add("password2", "", "the two password fields didn't match")
	}

	return errs
}

// ValidateSlug validates a group slug: lowercase letters, digits, - and _.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug must not be empty")
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug must be at most %d characters", MaxSlugLength)
	}
	for _, b := range []byte(slug) {
		if !(b >= 'a' && b <= 'z') && !isNum(b) && b != '-' && b != '_' {
			return fmt.Errorf("slug can only contain lowercase letters, numbers, hyphens, or underscores")
		}
	}
	return nil
}

// ValidateGroup validates a group before it is stored.
func ValidateGroup(group *domain.Group) ValidationErrors {
	var errs ValidationErrors
	title := strings.TrimSpace(group.Title)
	if title == "" {
		errs.Add("title", group.Title, MsgRequired)
	} else if utf8.RuneCountInString(title) > MaxGroupTitle {
		errs.Add("title", group.Title, fmt.Sprintf("title must be at most %d characters", MaxGroupTitle))
	}
	if err := ValidateSlug(group.Slug); err != nil {
		errs.Add("slug", group.Slug, err.Error())
	}
	return errs
}

// cyrillic transliterates Russian letters, which accent stripping leaves untouched.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "iu", 'я': "ia",
}

// Slugify derives a slug from a title: accents are stripped, Cyrillic is
// transliterated, and runs of other characters become a single hyphen.
// The result may be empty when nothing in the title maps to ASCII.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		plain = strings.ToLower(title)
	}

	var b strings.Builder
	hyphen := false
	for _, r := range plain {
		if tr, ok := cyrillic[r]; ok {
			b.WriteString(tr)
			hyphen = false
			continue
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
