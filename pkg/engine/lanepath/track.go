package lanepath

import (
	"strings"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
)

// Track is the ordered list of roads an agent intends to drive along, each with the
// direction it is passed in.
type Track []graph.TrackElement

// ParseTrack reads a track from elements like "+R1", "-R2" or "R3". A missing sign
// means forwards.
func ParseTrack(elements []string) (Track, error) {
	t := make(Track, 0, len(elements))
	for _, el := range elements {
		el = strings.TrimSpace(el)
		o := graph.Forwards
		switch {
		case strings.HasPrefix(el, "+"):
			el = el[1:]
		case strings.HasPrefix(el, "-"):
			o, el = graph.Backwards, el[1:]
		}
		if el == "" {
			return nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "empty road in track element")
		}
		t = append(t, graph.TrackElement{Orientation: o, Road: el})
	}
	return t, nil
}

// Reverse returns the track driven in the opposite direction.
func (t Track) Reverse() Track {
	r := make(Track, len(t))
	for i, el := range t {
		r[len(t)-1-i] = graph.TrackElement{Orientation: el.Orientation.Invert(), Road: el.Road}
	}
	return r
}

func (t Track) Clone() Track {
	if t == nil {
		return nil
	}
	return append(Track(nil), t...)
}

func (t Track) Strings() []string {
	out := make([]string, len(t))
	for i, el := range t {
		sign := "+"
		if el.Orientation == graph.Backwards {
			sign = "-"
		}
		out[i] = sign + el.Road
	}
	return out
}

func (t Track) String() string {
	return strings.Join(t.Strings(), " ")
}

func (t Track) index(el graph.TrackElement) int {
	for i, e := range t {
		if e == el {
			return i
		}
	}
	return -1
}

// rotate moves the element at i to the front, in place.
func (t Track) rotate(i int) {
	if i <= 0 || i >= len(t) {
		return
	}
	head := append(Track(nil), t[:i]...)
	copy(t, t[i:])
	copy(t[len(t)-i:], head)
}
