package config

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/critters/components"
)

//go:embed default.world
var defaultWorld []byte

// Tile is a background tile kind. Tiles have no simulation effect.
type Tile uint8

const (
	TileGrass Tile = iota
	TileDaisies
	TileHill
	TileLongGrass
	TilePit
	TileSand
	TileDirt
)

var tileNames = map[string]Tile{
	"daisies":    TileDaisies,
	"hill":       TileHill,
	"long_grass": TileLongGrass,
	"pit":        TilePit,
	"sand":       TileSand,
	"dirt":       TileDirt,
}

// ScenerySpec places one scenery object at world coordinates.
type ScenerySpec struct {
	Type components.SceneryType
	X, Y int
}

// WorldSpec describes the world layout: its tile grid and scenery placements.
type WorldSpec struct {
	Rows, Cols int
	Tiles      [][]Tile // indexed [row][col]; unlisted cells are grass
	Scenery    []ScenerySpec
}

// Extent returns the world size in world units.
func (s *WorldSpec) Extent(tileSize int) (width, height float64) {
	return float64(s.Cols * tileSize), float64(s.Rows * tileSize)
}

// LoadWorldSpec reads a world spec file. If path is empty, the embedded
// default world is used.
func LoadWorldSpec(path string) (*WorldSpec, error) {
	if path == "" {
		return ParseWorldSpec(bytes.NewReader(defaultWorld))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening world spec: %w", err)
	}
	defer f.Close()

	spec, err := ParseWorldSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseWorldSpec parses the world spec text format.
//
// The first line holds "rows cols". Each following line is "name : x y",
// where name is either a tile kind (x, y are grid cells) or a scenery type
// (x, y are world coordinates). Blank lines and lines starting with # are
// skipped.
func ParseWorldSpec(r io.Reader) (*WorldSpec, error) {
	sc := bufio.NewScanner(r)
	spec := &WorldSpec{}
	line := 0
	sized := false

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if !sized {
			rows, cols, err := parseSize(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			spec.Rows, spec.Cols = rows, cols
			spec.Tiles = make([][]Tile, rows)
			for i := range spec.Tiles {
				spec.Tiles[i] = make([]Tile, cols)
			}
			sized = true
			continue
		}

		if err := spec.parseEntry(text); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading world spec: %w", err)
	}
	if !sized {
		return nil, fmt.Errorf("%w: empty world spec", ErrInvalidConfiguration)
	}
	return spec, nil
}

func parseSize(text string) (rows, cols int, err error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want \"rows cols\", got %q", ErrInvalidConfiguration, text)
	}
	rows, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: rows: %v", ErrInvalidConfiguration, err)
	}
	cols, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: cols: %v", ErrInvalidConfiguration, err)
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("%w: world must have positive rows and cols, got %d x %d", ErrInvalidConfiguration, rows, cols)
	}
	return rows, cols, nil
}

func (s *WorldSpec) parseEntry(text string) error {
	name, rest, ok := strings.Cut(text, ":")
	if !ok {
		return fmt.Errorf("%w: want \"name : x y\", got %q", ErrInvalidConfiguration, text)
	}
	name = strings.TrimSpace(name)
	coords := strings.Fields(rest)
	if len(coords) != 2 {
		return fmt.Errorf("%w: %s: want two coordinates, got %q", ErrInvalidConfiguration, name, strings.TrimSpace(rest))
	}
	x, err := strconv.Atoi(coords[0])
	if err != nil {
		return fmt.Errorf("%w: %s: x: %v", ErrInvalidConfiguration, name, err)
	}
	y, err := strconv.Atoi(coords[1])
	if err != nil {
		return fmt.Errorf("%w: %s: y: %v", ErrInvalidConfiguration, name, err)
	}

	if tile, ok := tileNames[name]; ok {
		if x < 0 || x >= s.Cols || y < 0 || y >= s.Rows {
			return fmt.Errorf("%w: %s: cell (%d, %d) outside %d x %d grid", ErrInvalidConfiguration, name, x, y, s.Cols, s.Rows)
		}
		s.Tiles[y][x] = tile
		return nil
	}

	kind, ok := components.ParseSceneryType(name)
	if !ok {
		return fmt.Errorf("%w: unknown tile or scenery type %q", ErrInvalidConfiguration, name)
	}
	s.Scenery = append(s.Scenery, ScenerySpec{Type: kind, X: x, Y: y})
	return nil
}
