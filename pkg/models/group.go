package models

import "time"

// Group is an external posting destination, typically a social-platform
// community. The platform identifier should be treated as immutable once the
// group is linked to a live account.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required"`
	PlatformID  string    `json:"platform_id,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the required-field rules for a group.
func (g *Group) Validate() error {
	if g.Name == "" {
		return ErrNameRequired
	}

	return nil
}
