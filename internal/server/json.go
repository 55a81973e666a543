package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/netlist"
	"github.com/matzehuels/logicview/pkg/view"
)

type scopeJSON struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"name"`
	Path        []string         `json:"path"`
	Depth       int              `json:"depth"`
	Elements    []elementJSON    `json:"elements"`
	Connections []connectionJSON `json:"connections"`
}

type elementJSON struct {
	Key      uint64     `json:"key"`
	ID       uint64     `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Dir      string     `json:"dir"`
	State    string     `json:"state"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	W        int        `json:"w"`
	H        int        `json:"h"`
	Inputs   []gateJSON `json:"inputs"`
	Outputs  []gateJSON `json:"outputs"`
	Children int        `json:"children,omitempty"`
}

type gateJSON struct {
	Key      uint64   `json:"key"`
	ID       uint64   `json:"id"`
	Owner    uint64   `json:"owner"`
	Dir      string   `json:"dir"`
	BitWidth int      `json:"bit_width"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Conns    []uint64 `json:"conns"`
}

type connectionJSON struct {
	Key   uint64 `json:"key"`
	Out   uint64 `json:"out"`
	In    uint64 `json:"in"`
	Valid bool   `json:"valid"`
}

type netJSON struct {
	Name    string   `json:"name"`
	Gates   []uint64 `json:"gates"`
	Drivers int      `json:"drivers"`
	Width   int      `json:"width"`
	Mixed   bool     `json:"mixed"`
	Valid   bool     `json:"valid"`
	Conns   int      `json:"conns"`
}

type errorJSON struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Elements []uint64 `json:"elements,omitempty"`
}

func toElement(el *view.Element) elementJSON {
	return elementJSON{
		Key:      uint64(el.Key()),
		ID:       el.ID(),
		Name:     el.Name,
		Kind:     el.Kind().String(),
		Dir:      el.Dir().String(),
		State:    el.State.String(),
		X:        el.X,
		Y:        el.Y,
		W:        el.W,
		H:        el.H,
		Inputs:   toGates(el.Inputs()),
		Outputs:  toGates(el.Outputs()),
		Children: len(el.Children()),
	}
}

func toGates(gates []*view.Gate) []gateJSON {
	out := make([]gateJSON, len(gates))
	for i, g := range gates {
		out[i] = toGate(g)
	}
	return out
}

func toGate(g *view.Gate) gateJSON {
	conns := make([]uint64, 0, g.NumConns())
	for _, k := range g.Conns() {
		conns = append(conns, uint64(k))
	}
	return gateJSON{
		Key:      uint64(g.Key()),
		ID:       g.ID(),
		Owner:    uint64(g.Parent()),
		Dir:      g.Dir().String(),
		BitWidth: g.BitWidth(),
		X:        g.X,
		Y:        g.Y,
		Conns:    conns,
	}
}

func toConnection(c *view.Connection) connectionJSON {
	return connectionJSON{Key: uint64(c.Key()), Out: uint64(c.Out()), In: uint64(c.In()), Valid: c.Valid()}
}

func toNet(n netlist.Net) netJSON {
	gates := make([]uint64, len(n.Gates))
	for i, g := range n.Gates {
		gates[i] = uint64(g.Key())
	}
	return netJSON{
		Name:    n.Name,
		Gates:   gates,
		Drivers: n.Drivers,
		Width:   n.Width,
		Mixed:   n.Mixed,
		Valid:   n.Valid,
		Conns:   n.Conns,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	body := errorJSON{Code: string(code), Message: errs.UserMessage(err)}
	var loop *errs.LoopError
	if errors.As(err, &loop) {
		body.Elements = loop.Elements
	}
	writeJSON(w, statusFor(code), body)
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidTarget, errs.ErrCodeDirectionMismatch, errs.ErrCodeFeedbackLoop:
		return http.StatusConflict
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeIndexOutOfRange:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
