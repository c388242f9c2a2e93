package file

import (
	"context"
	"fmt"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

const groupCollection = "groups"

// GroupRepository handles group file operations.
type GroupRepository struct {
	root string
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(root string) *GroupRepository {
	return &GroupRepository{root: root}
}

// Create stores a new group with a generated ID and creation timestamp.
func (gr *GroupRepository) Create(_ context.Context, group *models.Group) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate group ID: %w", err)
	}

	group.ID = id.String()
	group.CreatedAt = time.Now().UTC()

	return writeDocument(gr.root, groupCollection, group.ID, group)
}

// GetAll returns every group in the collection.
func (gr *GroupRepository) GetAll(ctx context.Context) ([]*models.Group, error) {
	ids, err := documentIDs(gr.root, groupCollection)
	if err != nil {
		return nil, err
	}

	groups := make([]*models.Group, 0, len(ids))

	for _, id := range ids {
		group, err := gr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		groups = append(groups, group)
	}

	return groups, nil
}

// GetByID retrieves a group by its ID.
func (gr *GroupRepository) GetByID(_ context.Context, id string) (*models.Group, error) {
	var group models.Group

	found, err := readDocument(gr.root, groupCollection, id, &group)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "group", id, persistence.ErrGroupNotFound)
	}

	return &group, nil
}

// Update replaces an existing group.
func (gr *GroupRepository) Update(_ context.Context, group *models.Group) error {
	if !documentExists(gr.root, groupCollection, group.ID) {
		return persistence.NewEntityError("Update", "group", group.ID, persistence.ErrGroupNotFound)
	}

	return writeDocument(gr.root, groupCollection, group.ID, group)
}

// Delete removes a group. Schedules referencing it keep their dangling
// group IDs; deletion does not cascade.
func (gr *GroupRepository) Delete(_ context.Context, id string) error {
	found, err := deleteDocument(gr.root, groupCollection, id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewEntityError("Delete", "group", id, persistence.ErrGroupNotFound)
	}

	return nil
}
