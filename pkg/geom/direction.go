package geom

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/logicview/pkg/errors"
)

// Direction is the facing of an element. Gate coordinates are authored for
// [Right]; the other directions are quarter turns of that layout.
type Direction int

// Directions in clockwise order.
const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = [...]string{"up", "right", "down", "left"}

func (d Direction) String() string {
	if d < Up || d > Left {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the four named directions.
func (d Direction) Valid() bool { return d >= Up && d <= Left }

// CW returns the next direction clockwise.
func (d Direction) CW() Direction { return (d + 1) % 4 }

// CCW returns the next direction counter-clockwise.
func (d Direction) CCW() Direction { return (d + 3) % 4 }

// ParseDirection parses "up", "right", "down" or "left" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return Right, errs.New(errs.ErrCodeInvalidInput, "unknown direction %q (must be up, right, down or left)", s)
}
