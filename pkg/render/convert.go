package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	errs "github.com/matzehuels/logicview/pkg/errors"
)

// Format is a raster or print format reachable from SVG.
type Format string

const (
	PNG Format = "png"
	PDF Format = "pdf"
)

// converter is the librsvg command line tool. Tests point it elsewhere.
var converter = "rsvg-convert"

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return Convert(svg, PDF, 1)
}

// ToPNG converts an SVG document to PNG, enlarged by scale.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return Convert(svg, PNG, scale)
}

// Convert pipes svg through rsvg-convert. A missing tool is reported as
// INTERNAL with install hints; a non-positive scale as INVALID_INPUT.
func Convert(svg []byte, format Format, scale float64) ([]byte, error) {
	if format != PNG && format != PDF {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported output format %q", format)
	}
	if scale <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s scale must be positive, got %.2f", format, scale)
	}
	if _, err := exec.LookPath(converter); err != nil {
		return nil, errs.New(errs.ErrCodeInternal,
			"%s export requires librsvg (macOS: brew install librsvg, Linux: apt install librsvg2-bin)", format)
	}

	args := []string{"-f", string(format)}
	if format == PNG {
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	}
	cmd := exec.Command(converter, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s: %s", converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
