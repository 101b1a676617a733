package credits

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"go.uber.org/zap"
)

// Credit attributes one bundled activity image.
type Credit struct {
	ImagePath   string `json:"image_path"`
	Attribution string `json:"attribution"`
	License     string `json:"license,omitempty"`
}

type creditsFile struct {
	Credits []Credit `json:"credits"`
}

// Load reads every *.json file in dir and returns the unique credits sorted
// by image path. Unreadable files are skipped; a later file wins for the
// same image.
func Load(dir string) ([]Credit, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	log := logger.New().With(zap.String("dir", dir))
	all := make(map[string]Credit)

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).Warn("could not read credits file " + file.Name())
			continue
		}

		var cf creditsFile
		if err := json.Unmarshal(data, &cf); err != nil {
			log.WithError(err).Warn("could not parse credits file " + file.Name())
			continue
		}

		for _, c := range cf.Credits {
			if c.ImagePath == "" {
				continue
			}
			all[c.ImagePath] = c
		}
	}

	out := make([]Credit, 0, len(all))
	for _, c := range all {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ImagePath < out[j].ImagePath
	})
	return out, nil
}

// Handler serves GET /credits from the credits files in dir. A missing
// directory yields an empty list.
func Handler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		list, err := Load(dir)
		if err != nil && !os.IsNotExist(err) {
			logger.New().WithError(err).Error("failed to load image credits")
			http.Error(w, "Failed to load credits", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Credit{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"credits": list,
		})
	}
}
