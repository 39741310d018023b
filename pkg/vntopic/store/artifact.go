// Package store persists fitted pipeline artifacts and crawled articles.
//
// Artifacts are JSON envelopes carrying a kind, a format version, the run
// id (a ULID) and a SHA-256 of the payload. A blob whose checksum or
// structure does not verify is reported as internalerr.ErrCorruptArtifact.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Fixed artifact names.
const (
	NameVocabulary = "vocabulary"
	NameModel      = "model"
	NameMatrix     = "matrix"
	NameLabels     = "labels"
	NameManifest   = "manifest"
)

// FormatVersion is bumped whenever a payload layout changes.
const FormatVersion = 1

// Envelope wraps one artifact payload.
type Envelope struct {
	Kind      string          `json:"kind"`
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	SHA256    string          `json:"sha256"`
	Payload   json.RawMessage `json:"payload"`
}

// Manifest summarizes one fit.
type Manifest struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Topics    int            `json:"topics"`
	Terms     int            `json:"terms"`
	Documents int            `json:"documents"`
	Backend   string         `json:"backend"`
	Artifacts []string       `json:"artifacts"`
	Config    map[string]any `json:"config,omitempty"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a fresh, time-ordered run id.
func NewRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Encode marshals v into an envelope of the given kind.
func Encode(kind, runID string, v any, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	sum := sha256.Sum256(payload)
	return json.Marshal(Envelope{
		Kind:      kind,
		Version:   FormatVersion,
		RunID:     runID,
		CreatedAt: now.UTC(),
		SHA256:    hex.EncodeToString(sum[:]),
		Payload:   payload,
	})
}

// Decode verifies blob and unmarshals its payload into v.
func Decode(blob []byte, kind string, v any) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return env, fmt.Errorf("%s: %w: %v", kind, internalerr.ErrCorruptArtifact, err)
	}
	if env.Kind != kind {
		return env, fmt.Errorf("%s: %w: envelope kind is %q", kind, internalerr.ErrCorruptArtifact, env.Kind)
	}
	if env.Version != FormatVersion {
		return env, fmt.Errorf("%s: %w: unsupported version %d", kind, internalerr.ErrCorruptArtifact, env.Version)
	}
	sum := sha256.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.SHA256 {
		return env, fmt.Errorf("%s: %w: checksum mismatch", kind, internalerr.ErrCorruptArtifact)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return env, fmt.Errorf("%s: %w: %v", kind, internalerr.ErrCorruptArtifact, err)
	}
	return env, nil
}

// Save encodes v and writes it under name.
func Save(ctx context.Context, s Store, name, runID string, v any) error {
	blob, err := Encode(name, runID, v, time.Now())
	if err != nil {
		return err
	}
	if err := s.Put(ctx, name, blob); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Load reads and decodes the artifact stored under name.
func Load(ctx context.Context, s Store, name string, v any) (Envelope, error) {
	blob, err := s.Get(ctx, name)
	if err != nil {
		if errors.Is(err, internalerr.ErrNotFound) {
			return Envelope{}, fmt.Errorf("artifact %s: %w", name, err)
		}
		return Envelope{}, fmt.Errorf("load %s: %w", name, err)
	}
	return Decode(blob, name, v)
}
