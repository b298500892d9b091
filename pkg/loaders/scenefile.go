package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/scene"
)

// blockKeywords lists the directives that open a "}"-terminated block
var blockKeywords = map[string]bool{
	"sphere":   true,
	"plane":    true,
	"triangle": true,
	"light":    true,
	"material": true,
}

// pendingBlock accumulates the lines of a block until its terminator is read
type pendingBlock struct {
	keyword   string
	startLine int
	lines     []string
}

// SceneParser holds the state of a single parse pass over a scene file
type SceneParser struct {
	scene    *scene.Scene
	material scene.Material // Current material, snapshotted into each object
	block    *pendingBlock
	logger   core.Logger
}

// NewSceneParser creates a parser that builds a scene with the given name
func NewSceneParser(name string, logger core.Logger) *SceneParser {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &SceneParser{
		scene:    scene.NewScene(name),
		material: scene.DefaultMaterial(),
		logger:   logger,
	}
}

// ParseScene parses scene description content from an io.Reader
func ParseScene(reader io.Reader, name string, logger core.Logger) (*scene.Scene, error) {
	parser := NewSceneParser(name, logger)

	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := parser.processLine(lineNum, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	parser.finalize()
	return parser.scene, nil
}

// LoadScene loads and parses a scene file. A missing file yields an error
// matching fs.ErrNotExist.
func LoadScene(filename string, logger core.Logger) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open scene file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s, err := ParseScene(file, name, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// processLine handles one line of input
func (p *SceneParser) processLine(lineNum int, line string) error {
	if p.block != nil {
		if isBlockTerminator(line) {
			return p.closeBlock()
		}
		// Comments are allowed inside blocks too
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			p.block.lines = append(p.block.lines, line)
		}
		return nil
	}

	if strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 || !blockKeywords[fields[0]] {
		return nil
	}

	p.block = &pendingBlock{
		keyword:   fields[0],
		startLine: lineNum,
		lines:     []string{line},
	}

	// One-line block: "material { phong: 8 }"
	if len(fields) > 1 && fields[len(fields)-1] == "}" {
		return p.closeBlock()
	}
	return nil
}

// closeBlock hands the accumulated block to its builder
func (p *SceneParser) closeBlock() error {
	block := p.block
	p.block = nil
	text := strings.Join(block.lines, "\n")

	switch block.keyword {
	case "sphere", "plane", "triangle":
		obj, err := buildObject(text, p.material, p.logger)
		if err != nil {
			return fmt.Errorf("line %d: %s block: %w", block.startLine, block.keyword, err)
		}
		p.scene.AddObject(obj)
	case "light":
		position, intensity, err := buildLight(text)
		if err != nil {
			return fmt.Errorf("line %d: light block: %w", block.startLine, err)
		}
		p.scene.AddLight(position, intensity)
	case "material":
		if err := applyMaterial(text, &p.material); err != nil {
			return fmt.Errorf("line %d: material block: %w", block.startLine, err)
		}
	}
	return nil
}

// finalize drops a block left open at end of input
func (p *SceneParser) finalize() {
	if p.block != nil {
		p.logger.Printf("Warning: %s block starting at line %d has no closing '}', ignored\n",
			p.block.keyword, p.block.startLine)
		p.block = nil
	}
}

// isBlockTerminator reports whether line closes the current block
func isBlockTerminator(line string) bool {
	return strings.TrimSpace(line) == "}"
}
