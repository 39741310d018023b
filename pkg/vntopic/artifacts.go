package vntopic

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cognicore/vntopic/pkg/vntopic/encode"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/label"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
	"github.com/cognicore/vntopic/pkg/vntopic/topic"
)

// SaveArtifacts writes the fitted encoder, model, matrix, labels and a
// manifest. The manifest goes last so a reader that finds it can expect
// the other artifacts of the same run.
func (p *Pipeline) SaveArtifacts(ctx context.Context, st store.Store) error {
	f := p.fitted
	if f == nil {
		return fmt.Errorf("save artifacts: no fitted model: %w", internalerr.ErrNotFound)
	}
	parts := []struct {
		name string
		v    any
	}{
		{store.NameVocabulary, f.Encoder},
		{store.NameModel, f.Model},
		{store.NameMatrix, f.Matrix},
		{store.NameLabels, f.Labels},
	}
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if err := store.Save(ctx, st, part.name, f.RunID, part.v); err != nil {
			return err
		}
		names = append(names, part.name)
	}

	manifest := store.Manifest{
		RunID:     f.RunID,
		CreatedAt: f.CreatedAt,
		Topics:    f.Model.K,
		Terms:     f.Encoder.Vocabulary.Len(),
		Documents: f.Documents,
		Backend:   string(f.Model.Backend),
		Artifacts: names,
		Config: map[string]any{
			"vocabulary": p.opts.Vocabulary,
			"weighting":  p.opts.Weighting,
			"model":      p.opts.Model,
			"labeler":    p.opts.Labeler,
		},
	}
	if p.opts.Normalizer != nil {
		manifest.Config["normalizer"] = p.opts.Normalizer.Settings()
	}
	if err := store.Save(ctx, st, store.NameManifest, f.RunID, manifest); err != nil {
		return err
	}
	p.logger.Info("artifacts saved", "run_id", f.RunID, "artifacts", len(names)+1)
	return nil
}

// LoadFitted restores a fitted state written by SaveArtifacts. A missing
// or corrupted artifact is an error; nothing is refitted.
func (p *Pipeline) LoadFitted(ctx context.Context, st store.Store) error {
	var manifest store.Manifest
	if _, err := store.Load(ctx, st, store.NameManifest, &manifest); err != nil {
		return err
	}

	var (
		enc    encode.Encoder
		model  topic.Model
		matrix encode.Matrix
		labels []label.Label
	)
	for name, v := range map[string]any{
		store.NameVocabulary: &enc,
		store.NameModel:      &model,
		store.NameMatrix:     &matrix,
		store.NameLabels:     &labels,
	} {
		env, err := store.Load(ctx, st, name, v)
		if err != nil {
			return err
		}
		if env.RunID != manifest.RunID {
			return fmt.Errorf("artifact %s: %w: run %s does not match manifest run %s",
				name, internalerr.ErrCorruptArtifact, env.RunID, manifest.RunID)
		}
	}

	if err := enc.Validate(); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", store.NameVocabulary, internalerr.ErrCorruptArtifact, err)
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", store.NameModel, internalerr.ErrCorruptArtifact, err)
	}
	if err := matrix.Validate(); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", store.NameMatrix, internalerr.ErrCorruptArtifact, err)
	}
	if model.Terms() != enc.Vocabulary.Len() || matrix.Cols != enc.Vocabulary.Len() || len(labels) != model.K {
		return fmt.Errorf("artifacts disagree on shape: %w", internalerr.ErrCorruptArtifact)
	}

	p.checkNormalizer(manifest)

	p.fitted = &Fitted{
		RunID:     manifest.RunID,
		Encoder:   &enc,
		Model:     &model,
		Labels:    labels,
		Matrix:    &matrix,
		Documents: manifest.Documents,
		CreatedAt: manifest.CreatedAt,
	}
	p.logger.Info("artifacts loaded", "run_id", manifest.RunID, "topics", model.K, "terms", enc.Vocabulary.Len())
	return nil
}

// checkNormalizer warns when the text normalization differs from the run
// that produced the artifacts; clean text and topics would then drift.
func (p *Pipeline) checkNormalizer(m store.Manifest) {
	saved, ok := m.Config["normalizer"]
	if !ok || p.opts.Normalizer == nil {
		return
	}
	current := p.opts.Normalizer.Settings()
	if !reflect.DeepEqual(saved, current) {
		p.logger.Warn("normalizer settings differ from the fitted run",
			"run_id", m.RunID, "fitted", saved, "current", current)
	}
}
