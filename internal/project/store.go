package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"montage/internal/canvas"
	"montage/internal/config"
)

// ErrNotFound reports a fetch for a collage id with no stored record.
var ErrNotFound = errors.New("collage not found")

// Store manages collage persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the project database and verifies the
// schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// FetchAll returns every stored collage, most recently updated first.
func (s *Store) FetchAll(ctx context.Context) ([]Collage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, snapshot_path, created_at, updated_at FROM collages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list collages: %w", err)
	}
	defer rows.Close()

	var collages []Collage
	for rows.Next() {
		collage, err := scanCollage(rows)
		if err != nil {
			return nil, err
		}
		collages = append(collages, collage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range collages {
		items, err := s.fetchItems(ctx, collages[i].ID)
		if err != nil {
			return nil, err
		}
		collages[i].Items = items
	}
	return collages, nil
}

// FetchOne returns a single collage with its items, or ErrNotFound.
func (s *Store) FetchOne(ctx context.Context, id uuid.UUID) (*Collage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, snapshot_path, created_at, updated_at FROM collages WHERE id = ?`, id.String())
	collage, err := scanCollage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch collage: %w", err)
	}

	items, err := s.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	collage.Items = items
	return &collage, nil
}

// Upsert writes the whole collage record, replacing its item rows in one
// transaction.
func (s *Store) Upsert(ctx context.Context, collage Collage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collages (id, snapshot_path, created_at, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             snapshot_path = excluded.snapshot_path,
             updated_at = excluded.updated_at`,
		collage.ID.String(),
		nullableString(collage.SnapshotPath),
		collage.CreatedAt.UTC().Format(time.RFC3339Nano),
		collage.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert collage: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM collage_items WHERE collage_id = ?`, collage.ID.String()); err != nil {
		return fmt.Errorf("clear collage items: %w", err)
	}

	for position, item := range collage.Items {
		shaderJSON, err := json.Marshal(item.ShaderStack)
		if err != nil {
			return fmt.Errorf("marshal shader stack: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO collage_items (
                id, collage_id, base_path, cutout_path, uses_cutout, z_position,
                translation_x, translation_y, scale, rotation, width, height,
                shader_stack, position
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID.String(),
			collage.ID.String(),
			item.BasePath,
			nullableString(item.CutoutPath),
			boolToInt(item.UsesCutout),
			item.ZPosition,
			item.Transform.Translation.X,
			item.Transform.Translation.Y,
			item.Transform.Scale,
			item.Transform.Rotation,
			item.Transform.Size.Width,
			item.Transform.Size.Height,
			string(shaderJSON),
			position,
		)
		if err != nil {
			return fmt.Errorf("insert collage item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Delete removes a collage record and, via cascade, its item rows. It
// reports whether a record existed.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM collages WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("delete collage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) fetchItems(ctx context.Context, collageID uuid.UUID) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base_path, cutout_path, uses_cutout, z_position,
                translation_x, translation_y, scale, rotation, width, height, shader_stack
         FROM collage_items WHERE collage_id = ? ORDER BY position`,
		collageID.String())
	if err != nil {
		return nil, fmt.Errorf("query collage items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanCollage(scanner interface{ Scan(dest ...any) error }) (Collage, error) {
	var (
		idRaw        string
		snapshotPath sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&idRaw, &snapshotPath, &createdRaw, &updatedRaw); err != nil {
		return Collage{}, err
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return Collage{}, fmt.Errorf("parse collage id: %w", err)
	}
	collage := Collage{ID: id, SnapshotPath: snapshotPath.String}
	if created, err := parseTimeString(createdRaw); err == nil {
		collage.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		collage.UpdatedAt = updated
	}
	return collage, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (Item, error) {
	var (
		idRaw        string
		basePath     string
		cutoutPath   sql.NullString
		usesCutout   int
		zPosition    int
		translationX float64
		translationY float64
		scale        float64
		rotation     float64
		width        float64
		height       float64
		shaderJSON   string
	)
	if err := scanner.Scan(
		&idRaw, &basePath, &cutoutPath, &usesCutout, &zPosition,
		&translationX, &translationY, &scale, &rotation, &width, &height, &shaderJSON,
	); err != nil {
		return Item{}, err
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return Item{}, fmt.Errorf("parse item id: %w", err)
	}

	var rawShaders []string
	if err := json.Unmarshal([]byte(shaderJSON), &rawShaders); err != nil {
		return Item{}, fmt.Errorf("unmarshal shader stack: %w", err)
	}
	// Unknown shader names from newer schema versions are dropped rather
	// than failing the load.
	shaders := make([]canvas.Shader, 0, len(rawShaders))
	for _, raw := range rawShaders {
		if shader, ok := canvas.ParseShader(raw); ok {
			shaders = append(shaders, shader)
		}
	}

	return Item{
		ID:         id,
		BasePath:   basePath,
		CutoutPath: cutoutPath.String,
		UsesCutout: usesCutout != 0,
		ZPosition:  zPosition,
		Transform: canvas.Transform{
			Translation: canvas.Vec2{X: translationX, Y: translationY},
			Scale:       scale,
			Rotation:    rotation,
			Size:        canvas.Size{Width: width, Height: height},
		},
		ShaderStack: shaders,
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
