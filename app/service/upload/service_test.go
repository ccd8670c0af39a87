package upload

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campusbot/app/config"
	"campusbot/app/service/catalog"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, maxSize int64) *Service {
	t.Helper()

	dir := t.TempDir()

	catalogSvc, err := catalog.Open(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, catalogSvc.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = catalogSvc.Shutdown()
	})

	svc, err := NewService(config.Uploads{
		Dir:     filepath.Join(dir, "uploads"),
		MaxSize: maxSize,
	}, catalogSvc.Uploads)
	require.NoError(t, err)

	return svc
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = form.RemoveAll()
	})

	require.Len(t, form.File["file"], 1)

	return form.File["file"][0]
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 1024)

	item, err := svc.Save(ctx, fileHeader(t, "Syllabus.PDF", []byte("course syllabus")))
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Equal(t, "Syllabus.PDF", item.OriginalName)
	assert.Equal(t, int64(len("course syllabus")), item.Size)
	assert.True(t, strings.HasSuffix(item.StoredName, ".pdf"))

	got, path, err := svc.Path(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "course syllabus", string(data))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSave_TooLarge(t *testing.T) {
	svc := newTestService(t, 4)

	_, err := svc.Save(context.Background(), fileHeader(t, "big.txt", []byte("too large")))
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, catalog.CodeInvalid, fmt.Sprint(oopsErr.Code()))

	entries, err := os.ReadDir(svc.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_StripsDirectories(t *testing.T) {
	item, err := newTestService(t, 1024).Save(context.Background(), fileHeader(t, "../../etc/notes.txt", []byte("x")))
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", item.OriginalName)
}

func TestGet_Missing(t *testing.T) {
	_, err := newTestService(t, 1024).Get(context.Background(), 7)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
