package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneFileExt is the extension of scene description files
const SceneFileExt = ".txt"

// ErrSceneNotFound is returned by FindScene for an unknown scene ID
var ErrSceneNotFound = errors.New("scene not found")

// SceneInfo describes a scene file found on disk
type SceneInfo struct {
	ID          string `json:"id"`          // File name without extension
	Name        string `json:"name"`        // "# Scene:" header, or the title-cased ID
	Description string `json:"description"` // "# Description:" header
	FilePath    string `json:"filePath"`
}

// ListScenes scans dir for scene files and returns them sorted by file name
func ListScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("scenes directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+SceneFileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}
	sort.Strings(files)

	scenes := make([]SceneInfo, 0, len(files))
	for _, path := range files {
		info, err := ParseSceneMetadata(path)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}
	return scenes, nil
}

// FindScene returns the scene in dir whose ID matches id
func FindScene(dir, id string) (SceneInfo, error) {
	scenes, err := ListScenes(dir)
	if err != nil {
		return SceneInfo{}, err
	}
	for _, s := range scenes {
		if s.ID == id {
			return s, nil
		}
	}
	return SceneInfo{}, fmt.Errorf("%w: %q", ErrSceneNotFound, id)
}

// ParseSceneMetadata reads the leading comment block of a scene file.
// Parsing stops at the first line that is not a comment.
func ParseSceneMetadata(path string) (SceneInfo, error) {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:       id,
		Name:     titleCase(id),
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))

		if value, ok := strings.CutPrefix(content, "Scene:"); ok {
			info.Name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(content, "Description:"); ok {
			info.Description = strings.TrimSpace(value)
		}
	}

	return info, scanner.Err()
}

// titleCase converts a filename-style string to title case
// e.g., "glass-room" -> "Glass Room"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
