package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/floorhouse/site/internal/domain"
)

//go:embed data/*.json
var embeddedData embed.FS

const treatmentsFile = "treatments.json"

// Source supplies raw catalog containers to Load.
type Source interface {
	Collection(ctx context.Context, collection domain.CollectionType) (ProductContainer, error)
	Treatments(ctx context.Context) (TreatmentContainer, error)
}

// FSSource reads `<collection>.json` and `treatments.json` from a file system.
// A missing file is treated as an empty container.
type FSSource struct {
	fsys fs.FS
	root string
}

// NewFSSource reads data files located under root inside fsys.
func NewFSSource(fsys fs.FS, root string) *FSSource {
	if root == "" {
		root = "."
	}
	return &FSSource{fsys: fsys, root: root}
}

// EmbeddedSource returns the catalog compiled into the binary.
func EmbeddedSource() *FSSource {
	return NewFSSource(embeddedData, "data")
}

// DirSource reads data files from a directory on disk.
func DirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir), ".")
}

// Collection decodes <collection>.json under the source root.
func (s *FSSource) Collection(ctx context.Context, collection domain.CollectionType) (ProductContainer, error) {
	var container ProductContainer
	if err := s.decode(ctx, string(collection)+".json", &container); err != nil {
		return ProductContainer{}, err
	}
	return container, nil
}

// Treatments decodes the treatments file under the source root.
func (s *FSSource) Treatments(ctx context.Context) (TreatmentContainer, error) {
	var container TreatmentContainer
	if err := s.decode(ctx, treatmentsFile, &container); err != nil {
		return TreatmentContainer{}, err
	}
	return container, nil
}

func (s *FSSource) decode(ctx context.Context, name string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := fs.ReadFile(s.fsys, path.Join(s.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return nil
}
