package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var repoOwnerRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
var repoNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func ValidateRegister(email, displayName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProjectSubmission checks the owner/repository pair and the
// user-chosen tags of a registration or edit request.
func ValidateProjectSubmission(owner, name string, tags []string) ValidationErrors {
	errs := make(ValidationErrors)

	owner = strings.TrimSpace(owner)
	if owner == "" {
		errs.Add("owner", "Repository owner is required")
	} else if len(owner) > 39 {
		errs.Add("owner", "Repository owner is too long")
	} else if !repoOwnerRegex.MatchString(owner) {
		errs.Add("owner", "Repository owner can only contain letters, numbers and dashes")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Repository name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Repository name is too long")
	} else if !repoNameRegex.MatchString(name) {
		errs.Add("name", "Repository name can only contain letters, numbers, dots, _ and -")
	}

	if len(tags) > 15 {
		errs.Add("tags", "At most 15 tags are allowed")
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errs.Add("tags", "Tags cannot be empty")
			break
		}
		if len(tag) > 30 {
			errs.Add("tags", "Tags must be at most 30 characters")
			break
		}
	}

	return errs
}

func ValidateProfile(handle, website *string) ValidationErrors {
	errs := make(ValidationErrors)

	if handle != nil {
		h := strings.TrimSpace(*handle)
		if h == "" {
			errs.Add("handle", "Handle cannot be blank")
		} else if len(h) < 3 {
			errs.Add("handle", "Handle must be at least 3 characters")
		} else if len(h) > 50 {
			errs.Add("handle", "Handle is too long")
		} else if !handleRegex.MatchString(h) {
			errs.Add("handle", "Handle can only contain letters, numbers, _ and -")
		}
	}

	if website != nil && *website != "" {
		w := *website
		if !strings.HasPrefix(w, "http://") && !strings.HasPrefix(w, "https://") {
			errs.Add("website", "Website must start with http:// or https://")
		}
	}

	return errs
}

func ValidateInquiry(name, email, subject, message string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(name) == "" {
		errs.Add("name", "Name is required")
	}
	validateEmail(email, errs)
	if strings.TrimSpace(subject) == "" {
		errs.Add("subject", "Subject is required")
	}
	if strings.TrimSpace(message) == "" {
		errs.Add("message", "Message is required")
	} else if len(message) > 5000 {
		errs.Add("message", "Message is too long")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
