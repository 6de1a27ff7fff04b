package docsystem

import (
	"time"
)

// Folder is a node of an account's folder tree. Children are never stored on
// the parent; they are found by querying for ParentID.
type Folder struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	AccountID string    `json:"account_id" db:"account_id" bson:"account_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id" bson:"parent_id"` // NULL = root level
	Users     []string  `json:"users" db:"users" bson:"users"`             // Emails the folder is shared with
	IsSystem  bool      `json:"is_system" db:"is_system" bson:"is_system"` // Provisioned, cannot be deleted
	Path      string    `json:"path,omitempty" db:"-" bson:"-"`            // Computed display path, not stored
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of the account tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// SharedWith reports whether email is in the folder's share list.
func (f *Folder) SharedWith(email string) bool {
	return containsEmail(f.Users, email)
}

func containsEmail(users []string, email string) bool {
	if email == "" {
		return false
	}
	for _, u := range users {
		if u == email {
			return true
		}
	}
	return false
}
