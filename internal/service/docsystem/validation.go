package docsystem

import (
	"fmt"

	"dossier/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// normalizeEmails trims, lowercases and dedupes a share list
func normalizeEmails(users []string) []string {
	seen := make(map[string]bool, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		u = models.NormalizeEmail(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// emailListRule validates every entry of a []string or *[]string share list
var emailListRule = validation.By(func(value interface{}) error {
	var users []string
	switch v := value.(type) {
	case []string:
		users = v
	case *[]string:
		if v == nil {
			return nil
		}
		users = *v
	default:
		return fmt.Errorf("must be a list of emails")
	}

	for _, u := range users {
		if err := is.EmailFormat.Validate(u); err != nil {
			return fmt.Errorf("%q is not a valid email", u)
		}
	}
	return nil
})
