package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cognicore/vntopic/pkg/vntopic"
	"github.com/cognicore/vntopic/pkg/vntopic/config"
	"github.com/cognicore/vntopic/pkg/vntopic/dataset"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
	"github.com/cognicore/vntopic/pkg/vntopic/store/filestore"
	"github.com/cognicore/vntopic/pkg/vntopic/store/sqlite"
)

func columns(d config.Dataset) dataset.Columns {
	return dataset.Columns{
		Text:        d.TextColumn,
		Date:        d.DateColumn,
		Title:       d.TitleColumn,
		Link:        d.LinkColumn,
		Description: d.DescriptionColumn,
	}
}

// readInput loads a CSV table, or a JSON Lines file when the name ends in
// .jsonl.
func readInput(path string) (*dataset.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		docs, err := dataset.ReadJSONLFile(path, logger)
		if err != nil {
			return nil, err
		}
		return dataset.TableFromDocs(docs), nil
	}
	return dataset.ReadCSVFile(path, columns(cfg.Dataset))
}

func openArtifacts(ctx context.Context) (store.Store, error) {
	switch cfg.Artifacts.Backend {
	case "sqlite":
		return sqlite.OpenSQLite(ctx, cfg.Artifacts.SQLitePath)
	case "file":
		return filestore.Open(cfg.Artifacts.Dir)
	}
	return nil, fmt.Errorf("unknown artifact backend %q", cfg.Artifacts.Backend)
}

// loadPipeline builds a pipeline from the config and restores the last
// saved run.
func loadPipeline(ctx context.Context) (*vntopic.Pipeline, error) {
	p, err := vntopic.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	st, err := openArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	if err := p.LoadFitted(ctx, st); err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	return p, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
