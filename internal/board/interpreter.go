package board

import (
	"log"
	"strings"

	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/feed"
	"github.com/ayusman/airsketch/internal/geom"
	"github.com/ayusman/airsketch/internal/palette"
)

// Interpreter turns tracking samples into stroke operations.
//
// It is not safe for concurrent use: samples, manual controls and resizes must
// reach it one at a time.
type Interpreter struct {
	store     *canvas.Store
	palette   *palette.Palette
	surface   Surface
	malformed bool
}

// New creates an Interpreter over the given store and palette.
func New(store *canvas.Store, pal *palette.Palette) *Interpreter {
	if store == nil {
		store = canvas.NewStore()
	}
	if pal == nil {
		pal = palette.New(nil)
	}
	return &Interpreter{
		store:   store,
		palette: pal,
		surface: Surface{Width: DefaultWidth, Height: DefaultHeight},
	}
}

// Store returns the stroke store.
func (in *Interpreter) Store() *canvas.Store {
	return in.store
}

// Palette returns the hover palette.
func (in *Interpreter) Palette() *palette.Palette {
	return in.palette
}

// Surface returns the current surface size.
func (in *Interpreter) Surface() Surface {
	return in.surface
}

// Resize changes the surface size used for samples from now on.
// Strokes already stored keep their pixel coordinates. Non-positive sizes are ignored.
func (in *Interpreter) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	in.surface = Surface{Width: width, Height: height}
}

// Interpret applies one tracking sample and returns the next state.
func (in *Interpreter) Interpret(st State, s feed.Sample) (State, Effects) {
	fx := Effects{Highlight: -1}

	if !s.Detected {
		in.malformed = false
		st.Current = ""
		st.Grabbed = ""
		st.Mode = feed.ModeUndetected
		fx.Skeleton = Skeleton{Joints: []Joint{}, Paths: [][]geom.Point{}}
		return st, fx
	}

	fx.Detected = true
	if s.Cursor == nil || s.Mode == "" {
		if !in.malformed {
			log.Printf("board: skipping detected sample without mode or cursor")
			in.malformed = true
		}
		fx.Skipped = true
		return st, fx
	}
	in.malformed = false

	p := in.surface.Denormalize(s.Cursor.X, s.Cursor.Y)

	// Strokes may have been erased or cleared since the IDs were taken.
	if _, ok := in.store.Get(st.Current); !ok {
		st.Current = ""
	}
	if _, ok := in.store.Get(st.Grabbed); !ok {
		st.Grabbed = ""
	}

	// The marker reflects the new mode but the color and grab held before
	// this sample is applied.
	st.Mode = s.Mode
	cursor := &Cursor{
		X:        p.X,
		Y:        p.Y,
		Border:   cursorBorder(st),
		Grabbing: st.Grabbed != "",
		Mode:     s.Mode,
	}

	switch s.Mode {
	case feed.ModeDrawing:
		if st.Current == "" {
			st.Current = in.store.Add(st.ActiveColor, p).ID
		} else {
			in.store.Append(st.Current, p)
		}
		st.Grabbed = ""

	case feed.ModeSelection:
		if st.Grabbed == "" {
			if hit, ok := in.store.FindClosest(p, canvas.GrabRadius); ok {
				first, _ := hit.First()
				st.Grabbed = hit.ID
				st.GrabOffset = p.Sub(first)
			}
		} else {
			in.store.MoveTo(st.Grabbed, p.Sub(st.GrabOffset))
		}
		st.Current = ""

	case feed.ModeEraser:
		fx.Erased = in.store.EraseAt(p, canvas.EraseRadius)
		st.Current = ""
		st.Grabbed = ""

	default:
		st.Current = ""
		st.Grabbed = ""
	}

	if c, idx, changed := in.palette.CheckHover(p, st.ActiveColor); changed {
		st.ActiveColor = c
		fx.Highlight = idx
	}

	fx.ModeLabel = "Mode: " + strings.ToUpper(string(s.Mode))
	fx.Cursor = cursor
	fx.Skeleton = in.skeleton(s.Landmarks)
	fx.Redraw = true

	return st, fx
}

// cursorBorder picks the cursor marker color for the state.
func cursorBorder(st State) canvas.Color {
	switch {
	case st.Mode == feed.ModeDrawing:
		return st.ActiveColor
	case st.Grabbed != "":
		return canvas.GrabColor
	default:
		return canvas.NeutralColor
	}
}

// skeleton places the landmarks on the surface and resolves the bone chains.
// Landmarks missing from the sample are skipped within a chain.
func (in *Interpreter) skeleton(landmarks []feed.Landmark) Skeleton {
	sk := Skeleton{
		Joints: make([]Joint, 0, len(landmarks)),
		Paths:  make([][]geom.Point, 0, len(Bones)),
	}

	byID := make(map[int]geom.Point, len(landmarks))
	for _, lm := range landmarks {
		p := in.surface.Denormalize(lm.X, lm.Y)
		sk.Joints = append(sk.Joints, Joint{ID: lm.ID, Point: p})
		if _, seen := byID[lm.ID]; !seen {
			byID[lm.ID] = p
		}
	}

	for _, chain := range Bones {
		path := make([]geom.Point, 0, len(chain))
		for _, id := range chain {
			if p, ok := byID[id]; ok {
				path = append(path, p)
			}
		}
		sk.Paths = append(sk.Paths, path)
	}
	return sk
}

// Clear empties the stroke store and drops any held stroke.
func (in *Interpreter) Clear(st State) State {
	in.store.Clear()
	st.Current = ""
	st.Grabbed = ""
	return st
}

// SelectColor sets the active color directly, as a palette click would, and
// returns the palette index to highlight (-1 if the color has no swatch).
// Strokes already drawn keep their color.
func (in *Interpreter) SelectColor(st State, c canvas.Color) (State, int) {
	st.ActiveColor = c
	return st, in.palette.IndexOf(c)
}

// Frame assembles a full render update for the state and effects.
func (in *Interpreter) Frame(st State, fx Effects) Frame {
	return Frame{
		Effects:     fx,
		Strokes:     in.store.Strokes(),
		Grabbed:     st.Grabbed,
		ActiveColor: st.ActiveColor,
		LineWidth:   canvas.LineWidth,
		Surface:     in.surface,
		Palette:     in.palette.Entries(),
	}
}
