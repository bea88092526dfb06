package catalogimport

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipLines(t *testing.T, lines []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// createImportFile creates a gzipped NDJSON import file.
func createImportFile(t *testing.T, lines []string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "dishes.ndjson.gz")
	require.NoError(t, os.WriteFile(filePath, gzipLines(t, lines), 0o600))
	return filePath
}

func TestFileLoader_Load(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createImportFile(t, []string{
		`{"name":"Kung Pao Chicken","categoryId":7,"price":"38.00","status":1,"flavors":[{"name":"spice","value":["mild","hot"]}]}`,
		``,
		`{"name":"Mapo Tofu","categoryId":7,"price":"18.5"}`,
		`   `,
		`{"name": oops}`,
	})

	records, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 1, records[0].Line)
	assert.NoError(t, records[0].Err)
	assert.Equal(t, "Kung Pao Chicken", records[0].Request.Name)
	assert.Equal(t, int64(7), records[0].Request.CategoryID)
	assert.Equal(t, "38", records[0].Request.Price.String())
	assert.Equal(t, []string{"mild", "hot"}, records[0].Request.Flavors[0].Values)

	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, "Mapo Tofu", records[1].Request.Name)

	assert.Equal(t, 5, records[2].Line)
	assert.Error(t, records[2].Err)
}

func TestFileLoader_Load_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	t.Run("Missing file", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.gz"))
		assert.Error(t, err)
	})

	t.Run("Not gzipped", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "plain.ndjson")
		require.NoError(t, os.WriteFile(filePath, []byte(`{"name":"x"}`), 0o600))

		_, err := loader.Load(context.Background(), filePath)
		assert.Error(t, err)
	})

	t.Run("Cancelled", func(t *testing.T) {
		lines := make([]string, 2*cancelCheck)
		for i := range lines {
			lines[i] = `{"name":"x","categoryId":1}`
		}
		filePath := createImportFile(t, lines)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := loader.Load(ctx, filePath)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// fakeObjectGetter serves a fixed body or error.
type fakeObjectGetter struct {
	body      []byte
	err       error
	gotBucket string
	gotKey    string
}

func (f *fakeObjectGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket, f.gotKey = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		getter := &fakeObjectGetter{body: gzipLines(t, []string{`{"name":"Kung Pao Chicken","categoryId":7}`})}
		loader := NewS3LoaderWithClient(getter, "menus", zerolog.Nop())

		records, err := loader.Load(context.Background(), "catalog/dishes.gz")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Kung Pao Chicken", records[0].Request.Name)
		assert.Equal(t, "menus", getter.gotBucket)
		assert.Equal(t, "catalog/dishes.gz", getter.gotKey)
	})

	t.Run("Object missing", func(t *testing.T) {
		getter := &fakeObjectGetter{err: errors.New("NoSuchKey")}
		loader := NewS3LoaderWithClient(getter, "menus", zerolog.Nop())

		_, err := loader.Load(context.Background(), "catalog/absent.gz")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "NoSuchKey")
	})

	t.Run("Corrupt body", func(t *testing.T) {
		getter := &fakeObjectGetter{body: []byte("not gzip")}
		loader := NewS3LoaderWithClient(getter, "menus", zerolog.Nop())

		_, err := loader.Load(context.Background(), "catalog/dishes.gz")

		assert.Error(t, err)
	})
}

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]Record, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]Record, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func TestFallbackLoader(t *testing.T) {
	ctx := context.Background()
	s3Records := []Record{{Line: 1}}
	localRecords := []Record{{Line: 1}, {Line: 2}}

	tests := []struct {
		name         string
		s3Loader     Loader
		fileErr      error
		expectedLen  int
		expectErr    bool
		expectedPath string
	}{
		{
			name: "S3 succeeds",
			s3Loader: &mockLoader{loadFunc: func(_ context.Context, path string) ([]Record, error) {
				assert.Equal(t, "catalog/dishes.gz", path)
				return s3Records, nil
			}},
			expectedLen: 1,
		},
		{
			name: "S3 fails, local succeeds",
			s3Loader: &mockLoader{loadFunc: func(context.Context, string) ([]Record, error) {
				return nil, errors.New("S3 connection failed")
			}},
			expectedLen:  2,
			expectedPath: "dishes.gz",
		},
		{
			name:         "S3 disabled",
			s3Loader:     nil,
			expectedLen:  2,
			expectedPath: "dishes.gz",
		},
		{
			name: "Both fail",
			s3Loader: &mockLoader{loadFunc: func(context.Context, string) ([]Record, error) {
				return nil, errors.New("S3 connection failed")
			}},
			fileErr:   errors.New("file not found"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileCalled := false
			fileLoader := &mockLoader{loadFunc: func(_ context.Context, path string) ([]Record, error) {
				fileCalled = true
				assert.Equal(t, "dishes.gz", path, "local path must not carry the S3 prefix")
				if tt.fileErr != nil {
					return nil, tt.fileErr
				}
				return localRecords, nil
			}}

			loader := NewFallbackLoader(tt.s3Loader, fileLoader, "catalog/", zerolog.Nop())
			records, err := loader.Load(ctx, "dishes.gz")

			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), "file not found"))
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expectedLen)
			assert.Equal(t, tt.expectedPath != "", fileCalled)
		})
	}
}
