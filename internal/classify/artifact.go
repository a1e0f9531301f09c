package classify

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/ml"
)

// FeatureWeight is one (feature, weight) entry in a category's top-feature
// list. It serializes as a two-element JSON array to keep the metadata
// document compact.
type FeatureWeight struct {
	Feature string
	Weight  float64
}

// MarshalJSON encodes the pair as ["feature", weight].
func (f FeatureWeight) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.Feature, f.Weight})
}

// UnmarshalJSON decodes ["feature", weight].
func (f *FeatureWeight) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &f.Feature); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &f.Weight)
}

// Metadata is the JSON metadata document persisted alongside each model
// version.
type Metadata struct {
	LastTrained        time.Time                  `json:"last_trained"`
	FeatureImportances map[string][]FeatureWeight `json:"feature_importances"`
	Categories         []string                   `json:"categories"`
	Version            int                        `json:"version"`
	Accuracy           float64                    `json:"accuracy"`
	IsTrained          bool                       `json:"is_trained"`
}

// Artifact is one immutable, versioned snapshot of the trained model: forest,
// fitted vectorizer and metadata. Prior versions remain loadable forever.
type Artifact struct {
	Forest     *ml.Forest
	Vectorizer *ml.Vectorizer
	Labels     *ml.LabelCodec
	Meta       Metadata
}

// ArtifactStore persists versioned model artifacts to a directory. Each
// version is three files: the serialized classifier, the serialized
// vectorizer, and a JSON metadata document. The metadata file is written
// last, so a version is only visible once all three files are durable.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the store, ensuring the directory exists.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create model directory: %v", common.ErrPersistenceFailure, err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

func (s *ArtifactStore) classifierPath(version int) string {
	return filepath.Join(s.dir, fmt.Sprintf("classifier_v%d.gob", version))
}

func (s *ArtifactStore) vectorizerPath(version int) string {
	return filepath.Join(s.dir, fmt.Sprintf("vectorizer_v%d.gob", version))
}

func (s *ArtifactStore) metadataPath(version int) string {
	return filepath.Join(s.dir, fmt.Sprintf("metadata_v%d.json", version))
}

// Versions lists every persisted version in ascending order, derived from the
// metadata documents present.
func (s *ArtifactStore) Versions() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model directory: %v", common.ErrPersistenceFailure, err)
	}

	var versions []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "metadata_v") || !strings.HasSuffix(name, ".json") {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "metadata_v"), ".json"))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions, nil
}

// NextVersion returns one greater than the highest persisted version.
// Versions increment monotonically and are never reused.
func (s *ArtifactStore) NextVersion() (int, error) {
	versions, err := s.Versions()
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 1, nil
	}
	return versions[len(versions)-1] + 1, nil
}

// Save persists an artifact under its metadata version. Files are written to
// temporary paths and renamed so readers never observe a half-written
// version.
func (s *ArtifactStore) Save(a *Artifact) error {
	version := a.Meta.Version

	if err := s.writeGob(s.classifierPath(version), a.Forest); err != nil {
		return err
	}
	if err := s.writeGob(s.vectorizerPath(version), a.Vectorizer); err != nil {
		return err
	}

	data, err := json.MarshalIndent(a.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode metadata: %v", common.ErrPersistenceFailure, err)
	}
	if err := atomicWrite(s.metadataPath(version), data); err != nil {
		return err
	}

	return nil
}

func (s *ArtifactStore) writeGob(path string, value any) error {
	tmp, err := os.CreateTemp(s.dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := gob.NewEncoder(tmp).Encode(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to encode %s: %v", common.ErrPersistenceFailure, filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	return nil
}

// Load reads a specific artifact version.
func (s *ArtifactStore) Load(version int) (*Artifact, error) {
	metaData, err := os.ReadFile(s.metadataPath(version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: model version %d", common.ErrNotFound, version)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata for version %d: %v", common.ErrPersistenceFailure, version, err)
	}

	forest := &ml.Forest{}
	if err := s.readGob(s.classifierPath(version), forest); err != nil {
		return nil, err
	}
	vectorizer := &ml.Vectorizer{}
	if err := s.readGob(s.vectorizerPath(version), vectorizer); err != nil {
		return nil, err
	}

	return &Artifact{
		Forest:     forest,
		Vectorizer: vectorizer,
		Labels:     &ml.LabelCodec{Classes: meta.Categories},
		Meta:       meta,
	}, nil
}

// LoadLatest reads the artifact with the highest version, or ErrNotFound when
// no version has been persisted.
func (s *ArtifactStore) LoadLatest() (*Artifact, error) {
	versions, err := s.Versions()
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: no saved models", common.ErrNotFound)
	}
	return s.Load(versions[len(versions)-1])
}

func (s *ArtifactStore) readGob(path string, value any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewDecoder(f).Decode(value); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", common.ErrPersistenceFailure, filepath.Base(path), err)
	}
	return nil
}
