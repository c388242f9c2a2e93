// Package file provides file-based persistence for the publishing entities.
// Each collection is a directory of JSON documents keyed by entity ID. It is
// intended for development and tests; production deployments use postgresql.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/getdivulga/divulga/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root         string
	products     *ProductRepository
	groups       *GroupRepository
	publications *PublicationRepository
	schedules    *ScheduleRepository
	history      *HistoryRepository
}

// NewPersistence creates a file persistence layer rooted at the given path.
// A "file://" prefix is stripped so the root can be passed as a database URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		products:     NewProductRepository(cleanRoot),
		groups:       NewGroupRepository(cleanRoot),
		publications: NewPublicationRepository(cleanRoot),
		schedules:    NewScheduleRepository(cleanRoot),
		history:      NewHistoryRepository(cleanRoot),
	}
}

func (fp *Persistence) Products() persistence.ProductRepository {
	return fp.products
}

func (fp *Persistence) Groups() persistence.GroupRepository {
	return fp.groups
}

func (fp *Persistence) Publications() persistence.PublicationRepository {
	return fp.publications
}

func (fp *Persistence) Schedules() persistence.ScheduleRepository {
	return fp.schedules
}

func (fp *Persistence) History() persistence.HistoryRepository {
	return fp.history
}

// Close performs any necessary cleanup. For file persistence there is none.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Shared JSON document helpers used by every repository in this package.

func readDocument(root, collection, id string, out any) (bool, error) {
	filePath := filepath.Clean(path.Join(root, collection, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %s: %w", collection, id, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %s: %w", collection, id, err)
	}

	return true, nil
}

func writeDocument(root, collection, id string, doc any) error {
	dir := path.Join(root, collection)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", collection, id, err)
	}

	filePath := filepath.Clean(path.Join(dir, id+".json"))

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", collection, id, err)
	}

	return nil
}

func deleteDocument(root, collection, id string) (bool, error) {
	filePath := filepath.Clean(path.Join(root, collection, id+".json"))

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}

	return true, nil
}

func documentIDs(root, collection string) ([]string, error) {
	dir := os.DirFS(path.Join(root, collection))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", collection, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

func documentExists(root, collection, id string) bool {
	_, err := os.Stat(filepath.Clean(path.Join(root, collection, id+".json")))

	return err == nil
}
