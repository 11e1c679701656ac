// Package artifact loads the fitted model, scaler and column list as one
// matched set.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/service"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/ml"
)

// Set is a loaded artifact set. It is immutable after Load returns.
type Set struct {
	Manifest  Manifest
	Schema    model.ColumnSchema
	Scaler    *ml.StandardScaler
	Regressor port.Regressor
	version   string
}

// Version identifies the set: the manifest version, or a digest of the model
// file when the manifest does not name one.
func (s *Set) Version() string { return s.version }

// Pipeline builds the encoder and predictor for the set and checks that the
// model accepts vectors of the schema's width.
func (s *Set) Pipeline(logger *slog.Logger, observer service.CategoryObserver) (*service.FeatureEncoder, *service.Predictor, error) {
	encoder, err := service.NewFeatureEncoder(s.Schema, s.Scaler, logger, observer)
	if err != nil {
		return nil, nil, err
	}
	predictor := service.NewPredictor(s.Regressor)
	if err := predictor.Validate(s.Schema); err != nil {
		return nil, nil, err
	}
	return encoder, predictor, nil
}

// Loader reads artifact sets from a Source.
type Loader struct {
	source Source
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Load reads and validates every artifact. All failures match
// model.ErrArtifactLoad.
func (l *Loader) Load(ctx context.Context) (*Set, error) {
	manifest, err := l.manifest(ctx)
	if err != nil {
		return nil, err
	}

	columnsData, err := l.read(ctx, manifest, manifest.Files.Columns)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(columnsData, &names); err != nil {
		return nil, model.ArtifactLoadError("decoding "+manifest.Files.Columns, err)
	}
	schema, err := model.NewColumnSchema(names)
	if err != nil {
		return nil, err
	}

	scalerData, err := l.read(ctx, manifest, manifest.Files.Scaler)
	if err != nil {
		return nil, err
	}
	scaler, err := ml.DecodeScaler(scalerData)
	if err != nil {
		return nil, model.ArtifactLoadError("loading "+manifest.Files.Scaler, err)
	}

	modelData, err := l.read(ctx, manifest, manifest.Files.Model)
	if err != nil {
		return nil, err
	}
	regressor, err := ml.DecodeModel(modelData)
	if err != nil {
		return nil, model.ArtifactLoadError("loading "+manifest.Files.Model, err)
	}

	version := manifest.Version
	if version == "" {
		sum := sha256.Sum256(modelData)
		version = "sha256:" + hex.EncodeToString(sum[:])[:12]
	}

	l.logger.Info("artifacts loaded",
		"location", l.source.Location(),
		"version", version,
		"columns", schema.Len(),
		"model_features", regressor.NumFeatures(),
	)

	return &Set{
		Manifest:  manifest,
		Schema:    schema,
		Scaler:    scaler,
		Regressor: regressor,
		version:   version,
	}, nil
}

func (l *Loader) manifest(ctx context.Context) (Manifest, error) {
	data, err := l.source.Read(ctx, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no manifest, using default file names", "location", l.source.Location())
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, model.ArtifactLoadError("reading "+ManifestFile, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, model.ArtifactLoadError("parsing "+ManifestFile, err)
	}
	return m, nil
}

// read fetches name and checks it against the manifest digest, if any.
func (l *Loader) read(ctx context.Context, m Manifest, name string) ([]byte, error) {
	data, err := l.source.Read(ctx, name)
	if err != nil {
		return nil, model.ArtifactLoadError("reading "+name, err)
	}

	want, ok := m.SHA256[name]
	if !ok {
		return data, nil
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, want) {
		return nil, model.ArtifactLoadError(fmt.Sprintf("%s checksum mismatch: got %s, manifest pins %s", name, got, want), nil)
	}
	return data, nil
}
