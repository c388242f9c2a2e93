package services

import (
	"context"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
)

// Groups manages posting destinations.
type Groups struct {
	persistence persistence.Persistence
}

// NewGroups creates a new group service.
func NewGroups(persistence persistence.Persistence) *Groups {
	return &Groups{persistence: persistence}
}

// CreateGroupCommand carries the fields for a new group. Active defaults to
// true when creating, matching the entity's default posting state.
type CreateGroupCommand struct {
	Name        string `json:"name"        validate:"required"`
	PlatformID  string `json:"platform_id"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// Create validates and stores a new group.
func (s *Groups) Create(ctx context.Context, cmd CreateGroupCommand) (*models.Group, error) {
	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}

	group := &models.Group{
		Name:        cmd.Name,
		PlatformID:  cmd.PlatformID,
		URL:         cmd.URL,
		Description: cmd.Description,
		Active:      active,
	}

	if err := group.Validate(); err != nil {
		return nil, &ServiceError{Op: "CreateGroup", Err: err}
	}

	if err := s.persistence.Groups().Create(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// List returns all groups.
func (s *Groups) List(ctx context.Context) ([]*models.Group, error) {
	return s.persistence.Groups().GetAll(ctx)
}

// Fetch returns one group by ID.
func (s *Groups) Fetch(ctx context.Context, id string) (*models.Group, error) {
	return s.persistence.Groups().GetByID(ctx, id)
}

// Update replaces the mutable fields of an existing group and re-validates.
// The platform identifier is kept once set: a group linked to a live platform
// community must not silently point elsewhere.
func (s *Groups) Update(ctx context.Context, id string, cmd CreateGroupCommand) (*models.Group, error) {
	group, err := s.persistence.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = cmd.Name
	group.URL = cmd.URL
	group.Description = cmd.Description

	if group.PlatformID == "" {
		group.PlatformID = cmd.PlatformID
	}

	if cmd.Active != nil {
		group.Active = *cmd.Active
	}

	if err := group.Validate(); err != nil {
		return nil, &ServiceError{Op: "UpdateGroup", Err: err}
	}

	if err := s.persistence.Groups().Update(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// Delete removes a group. Schedules keep any references to it.
func (s *Groups) Delete(ctx context.Context, id string) error {
	return s.persistence.Groups().Delete(ctx, id)
}
