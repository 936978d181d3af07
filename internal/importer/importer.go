// Package importer turns data dragged in from outside the catalog into new
// geocaches.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"cachemaker/internal/model"
)

const (
	MediaTypeText = "text/plain"
	MediaTypeJSON = "application/json"
)

var ErrInvalidPayload = errors.New("invalid payload")

type InvalidPayloadError struct {
	MediaType string
	Reason    string
}

func (e InvalidPayloadError) Error() string {
	if e.MediaType == "" {
		return "invalid payload: " + e.Reason
	}
	return fmt.Sprintf("invalid %s payload: %s", e.MediaType, e.Reason)
}

func (e InvalidPayloadError) Is(target error) bool { return target == ErrInvalidPayload }

// Representation is one encoding of a dragged payload.
type Representation struct {
	MediaType string
	Data      []byte
}

// Provider supplies external drag data. Load may block (clipboard readers,
// other processes).
type Provider interface {
	Load(ctx context.Context) (Representation, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Representation, error)

func (f ProviderFunc) Load(ctx context.Context) (Representation, error) { return f(ctx) }

// Text is a provider that already holds its plain-text payload.
func Text(s string) Provider {
	return ProviderFunc(func(context.Context) (Representation, error) {
		return Representation{MediaType: MediaTypeText, Data: []byte(s)}, nil
	})
}

// FromText builds a placeholder geocache named raw. raw is used verbatim, so
// an empty string gives an unnamed geocache.
func FromText(raw string) model.Geocache {
	return model.Geocache{
		Name:      raw,
		Summary:   model.UnknownSummary,
		Latitude:  0.0,
		Longitude: 0.0,
	}
}

// Decode interprets one representation. Plain text goes through FromText;
// JSON must be a geocache record with a name.
func Decode(rep Representation) (model.Geocache, error) {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(rep.MediaType))
	if err != nil {
		return model.Geocache{}, InvalidPayloadError{MediaType: rep.MediaType, Reason: err.Error()}
	}
	switch mt {
	case MediaTypeText:
		if !utf8.Valid(rep.Data) {
			return model.Geocache{}, InvalidPayloadError{MediaType: mt, Reason: "not utf-8"}
		}
		return FromText(string(rep.Data)), nil
	case MediaTypeJSON:
		return decodeJSON(rep.Data)
	default:
		return model.Geocache{}, InvalidPayloadError{MediaType: mt, Reason: "unsupported media type"}
	}
}

type jsonRecord struct {
	Name      *string  `json:"name"`
	Summary   *string  `json:"summary"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Image     []byte   `json:"image"`
}

func decodeJSON(b []byte) (model.Geocache, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var rec jsonRecord
	if err := dec.Decode(&rec); err != nil {
		return model.Geocache{}, InvalidPayloadError{MediaType: MediaTypeJSON, Reason: err.Error()}
	}
	if rec.Name == nil {
		return model.Geocache{}, InvalidPayloadError{MediaType: MediaTypeJSON, Reason: "missing name"}
	}
	g := FromText(*rec.Name)
	if rec.Summary != nil {
		g.Summary = *rec.Summary
	}
	if rec.Latitude != nil {
		g.Latitude = *rec.Latitude
	}
	if rec.Longitude != nil {
		g.Longitude = *rec.Longitude
	}
	if !g.Coordinate().Valid() {
		return model.Geocache{}, InvalidPayloadError{MediaType: MediaTypeJSON, Reason: "coordinate out of range"}
	}
	g.Image = rec.Image
	return g, nil
}

// Resolve loads and decodes a provider's payload. Any failure is reported as
// an InvalidPayloadError.
func Resolve(ctx context.Context, p Provider) (model.Geocache, error) {
	if p == nil {
		return model.Geocache{}, InvalidPayloadError{Reason: "no provider"}
	}
	rep, err := p.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			return model.Geocache{}, err
		}
		return model.Geocache{}, InvalidPayloadError{MediaType: rep.MediaType, Reason: err.Error()}
	}
	return Decode(rep)
}
