// Package seed loads the initial in-progress geocaches.
//
// A seed file is a list of records in JSON (a top-level array) or TOML
// ([[geocache]] tables). Records missing a required field, or with a field of
// the wrong type, are skipped rather than failing the whole load.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cachemaker/internal/model"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
)

//go:embed default.json
var defaultFS embed.FS

const defaultName = "default.json"

// imageReaders bounds concurrent image reads.
const imageReaders = 4

type Result struct {
	Items   []model.Geocache `json:"items"`
	Skipped int              `json:"skipped"`
}

// LoadDefault loads the seed bundled with the binary.
func LoadDefault(ctx context.Context, logger *slog.Logger) (Result, error) {
	return Load(ctx, defaultFS, defaultName, logger)
}

// LoadFile loads a seed file from disk; image names resolve relative to it.
func LoadFile(ctx context.Context, p string, logger *slog.Logger) (Result, error) {
	p = filepath.Clean(strings.TrimSpace(p))
	return Load(ctx, os.DirFS(filepath.Dir(p)), filepath.Base(p), logger)
}

// Load reads name from fsys. It fails only if the file cannot be read or
// parsed as a whole.
func Load(ctx context.Context, fsys fs.FS, name string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Result{}, fmt.Errorf("read seed: %w", err)
	}
	raw, err := decodeRecords(name, b)
	if err != nil {
		return Result{}, fmt.Errorf("parse seed %s: %w", name, err)
	}

	type pending struct {
		item      model.Geocache
		imagePath string
		skip      bool
	}
	recs := make([]pending, 0, len(raw))
	skipped := 0
	for i, r := range raw {
		item, imageName, ok := recordToGeocache(r)
		if !ok {
			logger.Debug("seed record skipped", "file", name, "record", i)
			skipped++
			continue
		}
		p := pending{item: item}
		if imageName != "" {
			p.imagePath = path.Join(path.Dir(name), imageName)
		}
		recs = append(recs, p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageReaders)
	for i := range recs {
		if recs[i].imagePath == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := fs.ReadFile(fsys, recs[i].imagePath)
			if err != nil || len(img) == 0 {
				recs[i].skip = true
				return nil
			}
			recs[i].item.Image = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	out := Result{Items: make([]model.Geocache, 0, len(recs)), Skipped: skipped}
	for _, r := range recs {
		if r.skip {
			logger.Debug("seed record skipped: image unreadable", "file", name, "image", r.imagePath)
			out.Skipped++
			continue
		}
		out.Items = append(out.Items, r.item)
	}
	logger.Info("seed loaded", "file", name, "loaded", len(out.Items), "skipped", out.Skipped)
	return out, nil
}

func decodeRecords(name string, b []byte) ([]any, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		var recs []any
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	case ".toml":
		var doc struct {
			Geocache []map[string]any `toml:"geocache"`
		}
		if _, err := toml.Decode(string(b), &doc); err != nil {
			return nil, err
		}
		recs := make([]any, 0, len(doc.Geocache))
		for _, r := range doc.Geocache {
			recs = append(recs, r)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("unsupported seed format %q (want .json or .toml)", path.Ext(name))
	}
}

func recordToGeocache(r any) (model.Geocache, string, bool) {
	rec, ok := r.(map[string]any)
	if !ok {
		return model.Geocache{}, "", false
	}
	name, ok := stringField(rec, model.KeyName)
	if !ok {
		return model.Geocache{}, "", false
	}
	summary, ok := stringField(rec, model.KeySummary)
	if !ok {
		return model.Geocache{}, "", false
	}
	lat, ok := floatField(rec, model.KeyLatitude)
	if !ok {
		return model.Geocache{}, "", false
	}
	lon, ok := floatField(rec, model.KeyLongitude)
	if !ok {
		return model.Geocache{}, "", false
	}
	g := model.Geocache{Name: name, Summary: summary, Latitude: lat, Longitude: lon}
	if !g.Coordinate().Valid() {
		return model.Geocache{}, "", false
	}

	imageName := ""
	if v, present := rec[model.KeyImage]; present {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return model.Geocache{}, "", false
		}
		imageName = strings.TrimSpace(s)
	}
	return g, imageName, true
}

func stringField(rec map[string]any, key string) (string, bool) {
	s, ok := rec[key].(string)
	return s, ok
}

func floatField(rec map[string]any, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
