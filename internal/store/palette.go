package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/palette"
)

// ErrInvalidBox is returned for a swatch whose box has no area.
var ErrInvalidBox = errors.New("invalid swatch box")

// PaletteRepository stores the palette swatches.
type PaletteRepository struct {
	db *sql.DB
}

// Palette returns the palette repository for this store.
func (s *Store) Palette() *PaletteRepository {
	return &PaletteRepository{db: s.db}
}

// seed inserts the default swatches when the table is empty.
func (r *PaletteRepository) seed() error {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM palette_entries`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := r.Replace(palette.DefaultEntries())
	return err
}

// validate normalizes the color and checks the box of e.
func validate(e *palette.Entry) error {
	c, err := canvas.ParseColor(string(e.Color))
	if err != nil {
		return err
	}
	e.Color = c
	if e.Box.Right < e.Box.Left || e.Box.Bottom < e.Box.Top {
		return fmt.Errorf("%w: %+v", ErrInvalidBox, e.Box)
	}
	return nil
}

// List returns the swatches in display order.
func (r *PaletteRepository) List() ([]palette.Entry, error) {
	rows, err := r.db.Query(
		`SELECT id, color, box_left, box_top, box_right, box_bottom
		 FROM palette_entries ORDER BY position, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []palette.Entry{}
	for rows.Next() {
		var e palette.Entry
		var color string
		if err := rows.Scan(&e.ID, &color, &e.Box.Left, &e.Box.Top, &e.Box.Right, &e.Box.Bottom); err != nil {
			return nil, err
		}
		e.Color = canvas.Color(color)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetByID retrieves a swatch by its ID.
func (r *PaletteRepository) GetByID(id string) (*palette.Entry, error) {
	e := &palette.Entry{}
	var color string

	err := r.db.QueryRow(
		`SELECT id, color, box_left, box_top, box_right, box_bottom
		 FROM palette_entries WHERE id = ?`,
		id,
	).Scan(&e.ID, &color, &e.Box.Left, &e.Box.Top, &e.Box.Right, &e.Box.Bottom)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	e.Color = canvas.Color(color)
	return e, nil
}

// Create appends a swatch at the end of the palette. A missing ID is
// generated. The stored entry is returned.
func (r *PaletteRepository) Create(e palette.Entry) (palette.Entry, error) {
	if err := validate(&e); err != nil {
		return palette.Entry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		`INSERT INTO palette_entries (id, color, box_left, box_top, box_right, box_bottom, position)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM palette_entries))`,
		e.ID, string(e.Color), e.Box.Left, e.Box.Top, e.Box.Right, e.Box.Bottom,
	)
	if err != nil {
		return palette.Entry{}, err
	}

	return e, nil
}

// Replace swaps the whole palette for entries, keeping their order.
// Nothing changes if any entry is invalid.
func (r *PaletteRepository) Replace(entries []palette.Entry) ([]palette.Entry, error) {
	out := make([]palette.Entry, len(entries))
	for i, e := range entries {
		if err := validate(&e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		out[i] = e
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM palette_entries`); err != nil {
		return nil, err
	}

	for i, e := range out {
		_, err := tx.Exec(
			`INSERT INTO palette_entries (id, color, box_left, box_top, box_right, box_bottom, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Color), e.Box.Left, e.Box.Top, e.Box.Right, e.Box.Bottom, i,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a swatch by its ID.
func (r *PaletteRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM palette_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
