package credits

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadMergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"credits":[{"image_path":"images/taraweeh.png","attribution":"old"},{"image_path":"images/quran.png","attribution":"Q"}]}`)
	writeFile(t, dir, "b.json", `{"credits":[{"image_path":"images/taraweeh.png","attribution":"new"},{"attribution":"no path"}]}`)
	writeFile(t, dir, "broken.json", `{`)
	writeFile(t, dir, "notes.txt", `ignored`)

	list, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "images/quran.png", list[0].ImagePath)
	assert.Equal(t, "images/taraweeh.png", list[1].ImagePath)
	assert.Equal(t, "new", list[1].Attribution)
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "credits.json", `{"credits":[{"image_path":"images/rcm.png","attribution":"RCM","license":"CC-BY"}]}`)

	w := httptest.NewRecorder()
	Handler(dir)(w, httptest.NewRequest(http.MethodGet, "/credits", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Credits []Credit `json:"credits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Credits, 1)
	assert.Equal(t, "CC-BY", body.Credits[0].License)
}

func TestHandlerMissingDirectory(t *testing.T) {
	w := httptest.NewRecorder()
	Handler(filepath.Join(t.TempDir(), "missing"))(w, httptest.NewRequest(http.MethodGet, "/credits", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"credits":[]}`, w.Body.String())
}
