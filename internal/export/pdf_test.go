package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/geom"
)

func sampleStrokes() []canvas.Stroke {
	return []canvas.Stroke{
		{ID: "a", Color: canvas.DefaultColor, Points: []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 80}, {X: 200, Y: 90}}},
		{ID: "b", Color: "#f472b6", Points: []geom.Point{{X: 300, Y: 300}}},
		{ID: "c", Color: "#ffffff"},
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, Page{Width: 1280, Height: 720, Title: "board"}, sampleStrokes())
	if err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestWritePDF_EmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, Page{Width: 800, Height: 600}, nil); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a document for an empty board")
	}
}

func TestWritePDF_EmptySurface(t *testing.T) {
	tests := []Page{
		{Width: 0, Height: 600},
		{Width: 800, Height: -1},
	}
	for _, page := range tests {
		var buf bytes.Buffer
		if err := WritePDF(&buf, page, sampleStrokes()); !errors.Is(err, ErrEmptySurface) {
			t.Errorf("WritePDF(%+v) error = %v, want ErrEmptySurface", page, err)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")

	if err := WriteFile(path, Page{Width: 720, Height: 1280}, sampleStrokes()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
}
