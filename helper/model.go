package helper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knights-analytics/hugot"
)

// LabelMapFile is the file inside a model directory mapping class indices to labels.
const LabelMapFile = "label_map.json"

// PrepareModel downloads the model if it doesn't exist and returns the model path.
// Model names containing a slash are stored under ./models with the slash replaced by an underscore.
func PrepareModel(modelName string, onnxFilePath string) (string, error) {
	modelDir := "./models"
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	// Check if model exists, if not download it
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0750); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		if onnxFilePath != "" {
			downloadOptions.OnnxFilePath = onnxFilePath
		}
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}

// ModelAvailable reports whether dir exists and is a directory.
func ModelAvailable(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// LoadLabelMap reads label_map.json from a model directory.
// The file maps numeric class indices (as JSON object keys) to label strings.
// A missing file returns an empty map and no error.
func LoadLabelMap(modelDir string) (map[int]string, error) {
	labels := map[int]string{}

	data, err := os.ReadFile(filepath.Join(modelDir, LabelMapFile))
	if os.IsNotExist(err) {
		return labels, nil
	} else if err != nil {
		return nil, NewError("read label map", err)
	}

	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewError("decode label map", err)
	}

	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, NewError("decode label map", fmt.Errorf("invalid class index %q", k))
		}
		labels[idx] = v
	}

	return labels, nil
}
