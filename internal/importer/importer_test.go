package importer

import (
	"context"
	"errors"
	"testing"

	"cachemaker/internal/model"

	"github.com/stretchr/testify/require"
)

func TestFromText(t *testing.T) {
	t.Parallel()

	got := FromText("Golden Gate Bridge")
	require.Equal(t, model.Geocache{
		Name:      "Golden Gate Bridge",
		Summary:   "Unknown",
		Latitude:  0.0,
		Longitude: 0.0,
	}, got)
	require.False(t, got.HasImage())
}

func TestFromTextKeepsWhitespaceAndEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "  padded \n", FromText("  padded \n").Name)
	require.Equal(t, "", FromText("").Name)
	require.Equal(t, model.UnknownSummary, FromText("").Summary)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rep     Representation
		want    model.Geocache
		wantErr bool
	}{
		{
			name: "plain text",
			rep:  Representation{MediaType: "text/plain", Data: []byte("Big Ben")},
			want: FromText("Big Ben"),
		},
		{
			name: "plain text with charset",
			rep:  Representation{MediaType: "text/plain; charset=utf-8", Data: []byte("Big Ben")},
			want: FromText("Big Ben"),
		},
		{
			name:    "invalid utf-8",
			rep:     Representation{MediaType: "text/plain", Data: []byte{0xff, 0xfe}},
			wantErr: true,
		},
		{
			name: "json record",
			rep: Representation{
				MediaType: "application/json",
				Data:      []byte(`{"name":"Eiffel Tower","summary":"Paris","latitude":48.85837,"longitude":2.294481}`),
			},
			want: model.Geocache{Name: "Eiffel Tower", Summary: "Paris", Latitude: 48.85837, Longitude: 2.294481},
		},
		{
			name: "json name only",
			rep:  Representation{MediaType: "application/json", Data: []byte(`{"name":"Nowhere"}`)},
			want: FromText("Nowhere"),
		},
		{
			name:    "json missing name",
			rep:     Representation{MediaType: "application/json", Data: []byte(`{"summary":"x"}`)},
			wantErr: true,
		},
		{
			name:    "json unknown field",
			rep:     Representation{MediaType: "application/json", Data: []byte(`{"name":"x","extra":1}`)},
			wantErr: true,
		},
		{
			name:    "json bad latitude",
			rep:     Representation{MediaType: "application/json", Data: []byte(`{"name":"x","latitude":91}`)},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			rep:     Representation{MediaType: "image/png", Data: []byte{1, 2, 3}},
			wantErr: true,
		},
		{
			name:    "malformed media type",
			rep:     Representation{MediaType: "", Data: []byte("x")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tt.rep)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	got, err := Resolve(context.Background(), Text("Golden Gate Bridge"))
	require.NoError(t, err)
	require.Equal(t, FromText("Golden Gate Bridge"), got)

	failing := ProviderFunc(func(context.Context) (Representation, error) {
		return Representation{}, errors.New("clipboard unavailable")
	})
	_, err = Resolve(context.Background(), failing)
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Resolve(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidPayload)
}
