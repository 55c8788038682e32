// Package sqlitestore persists an inkboard.Board to a SQLite file and loads
// it back for hydration.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/phanxgames/inkboard"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    x          REAL NOT NULL DEFAULT 0,
    y          REAL NOT NULL DEFAULT 0,
    width      REAL NOT NULL DEFAULT 0,
    height     REAL NOT NULL DEFAULT 0,
    rotation   REAL NOT NULL DEFAULT 0,
    collapsed  INTEGER NOT NULL DEFAULT 0,
    pinned     INTEGER NOT NULL DEFAULT 0,
    data       TEXT
);

CREATE TABLE IF NOT EXISTS board_groups (
    id         TEXT PRIMARY KEY,
    x          REAL NOT NULL,
    y          REAL NOT NULL,
    width      REAL NOT NULL,
    height     REAL NOT NULL,
    padding    REAL NOT NULL DEFAULT 0,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS group_children (
    group_id   TEXT NOT NULL REFERENCES board_groups(id) ON DELETE CASCADE,
    item_id    TEXT NOT NULL,
    item_type  TEXT NOT NULL,
    position   INTEGER NOT NULL,
    rel_x      REAL NOT NULL,
    rel_y      REAL NOT NULL,
    scale_x    REAL NOT NULL DEFAULT 1,
    scale_y    REAL NOT NULL DEFAULT 1,
    rotation   REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (group_id, item_id)
);
`

// Store implements inkboard.Persister on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ inkboard.Persister = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// --- inkboard.Persister ---

// CreateItem inserts an item, replacing any row with the same id.
func (s *Store) CreateItem(ctx context.Context, it inkboard.Item) error {
	data, err := encodeData(it.Data)
	if err != nil {
		return fmt.Errorf("create item %s: %w", it.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO items (id, type, x, y, width, height, rotation, collapsed, pinned, data)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, it.ID, string(it.Type), it.X, it.Y, it.Width, it.Height, it.Rotation,
		boolInt(it.Collapsed), boolInt(it.Pinned), data)
	if err != nil {
		return fmt.Errorf("create item %s: %w", it.ID, err)
	}
	return nil
}

// MoveItem applies the non-nil fields of patch.
func (s *Store) MoveItem(ctx context.Context, t inkboard.ItemType, id string, patch inkboard.ItemPatch) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE items SET
            x = COALESCE(?, x),
            y = COALESCE(?, y),
            pinned = COALESCE(?, pinned),
            collapsed = COALESCE(?, collapsed)
        WHERE id = ? AND type = ?
    `, nullable(patch.X), nullable(patch.Y), nullableBool(patch.Pinned), nullableBool(patch.Collapsed), id, string(t))
	if err != nil {
		return fmt.Errorf("move item %s: %w", id, err)
	}
	return nil
}

// DeleteItem removes an item and any group membership row for it.
func (s *Store) DeleteItem(ctx context.Context, t inkboard.ItemType, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ? AND type = ?`, id, string(t)); err != nil {
			return fmt.Errorf("delete item %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_children WHERE item_id = ?`, id); err != nil {
			return fmt.Errorf("delete item %s membership: %w", id, err)
		}
		return nil
	})
}

// CreateGroup stores a group and its children.
func (s *Store) CreateGroup(ctx context.Context, g inkboard.Group) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		return insertGroup(ctx, tx, g)
	})
}

// UpdateGroup applies a partial update. When the group row is missing the
// snapshot is inserted instead.
func (s *Store) UpdateGroup(ctx context.Context, id string, u inkboard.GroupUpdate, snapshot inkboard.Group) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE board_groups SET
                x = COALESCE(?, x),
                y = COALESCE(?, y),
                name = COALESCE(?, name)
            WHERE id = ?
        `, nullable(u.X), nullable(u.Y), nullable(u.Name), id)
		if err != nil {
			return fmt.Errorf("update group %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return insertGroup(ctx, tx, snapshot)
		}
		return nil
	})
}

// DeleteGroup removes a group and its membership rows. Child items stay.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_children WHERE group_id = ?`, id); err != nil {
			return fmt.Errorf("delete group %s children: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM board_groups WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete group %s: %w", id, err)
		}
		return nil
	})
}

// --- Hydration ---

// Load reads every item and group, in insertion order, for Board.Hydrate.
func (s *Store) Load(ctx context.Context) ([]inkboard.Item, []inkboard.Group, error) {
	items, err := s.loadItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, nil, err
	}
	return items, groups, nil
}

// Hydrate loads the database into b.
func (s *Store) Hydrate(ctx context.Context, b *inkboard.Board) error {
	items, groups, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return b.Hydrate(items, groups)
}

func (s *Store) loadItems(ctx context.Context) ([]inkboard.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, type, x, y, width, height, rotation, collapsed, pinned, data
        FROM items ORDER BY rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var out []inkboard.Item
	for rows.Next() {
		var (
			it                inkboard.Item
			typ               string
			collapsed, pinned int64
			data              sql.NullString
		)
		if err := rows.Scan(&it.ID, &typ, &it.X, &it.Y, &it.Width, &it.Height, &it.Rotation, &collapsed, &pinned, &data); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Type = inkboard.ItemType(typ)
		it.Collapsed = collapsed != 0
		it.Pinned = pinned != 0
		if data.Valid {
			if err := json.Unmarshal([]byte(data.String), &it.Data); err != nil {
				return nil, fmt.Errorf("decode item %s data: %w", it.ID, err)
			}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return out, nil
}

func (s *Store) loadGroups(ctx context.Context) ([]inkboard.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, x, y, width, height, padding, name, created_at
        FROM board_groups ORDER BY rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	var (
		groups []inkboard.Group
		index  = make(map[string]int)
	)
	for rows.Next() {
		var (
			g       inkboard.Group
			created string
		)
		if err := rows.Scan(&g.ID, &g.X, &g.Y, &g.Width, &g.Height, &g.Padding, &g.Meta.Name, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if created != "" {
			if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
				g.Meta.CreatedAt = ts
			}
		}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load groups: %w", err)
	}
	rows.Close()

	crows, err := s.db.QueryContext(ctx, `
        SELECT group_id, item_id, item_type, rel_x, rel_y, scale_x, scale_y, rotation
        FROM group_children ORDER BY group_id, position
    `)
	if err != nil {
		return nil, fmt.Errorf("load group children: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var (
			gid, typ string
			c        inkboard.GroupChild
		)
		r := &c.Relative
		if err := crows.Scan(&gid, &c.ID, &typ, &r.X, &r.Y, &r.ScaleX, &r.ScaleY, &r.Rotation); err != nil {
			return nil, fmt.Errorf("scan group child: %w", err)
		}
		c.Type = inkboard.ItemType(typ)
		if i, ok := index[gid]; ok {
			groups[i].Children = append(groups[i].Children, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("load group children: %w", err)
	}
	return groups, nil
}

// --- Helpers ---

func insertGroup(ctx context.Context, tx *sql.Tx, g inkboard.Group) error {
	created := ""
	if !g.Meta.CreatedAt.IsZero() {
		created = g.Meta.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := tx.ExecContext(ctx, `
        INSERT OR REPLACE INTO board_groups (id, x, y, width, height, padding, name, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, g.ID, g.X, g.Y, g.Width, g.Height, g.Padding, g.Meta.Name, created)
	if err != nil {
		return fmt.Errorf("create group %s: %w", g.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_children WHERE group_id = ?`, g.ID); err != nil {
		return fmt.Errorf("create group %s: %w", g.ID, err)
	}
	for i, c := range g.Children {
		r := c.Relative
		_, err := tx.ExecContext(ctx, `
            INSERT INTO group_children (group_id, item_id, item_type, position, rel_x, rel_y, scale_x, scale_y, rotation)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, g.ID, c.ID, string(c.Type), i, r.X, r.Y, r.ScaleX, r.ScaleY, r.Rotation)
		if err != nil {
			return fmt.Errorf("create group %s child %s: %w", g.ID, c.ID, err)
		}
	}
	return nil
}

// tx runs fn in a transaction, rolling back on error.
func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func encodeData(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	return string(b), nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableBool(p *bool) any {
	if p == nil {
		return nil
	}
	return boolInt(*p)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
