package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS fills (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	template TEXT NOT NULL,
	output_path TEXT NOT NULL,
	tag_count INTEGER NOT NULL,
	replacements INTEGER NOT NULL,
	created_at INTEGER NOT NULL
)`

// Entry 一次成功填充的记录
type Entry struct {
	ID           string
	Template     string
	OutputPath   string
	TagCount     int
	Replacements int
	CreatedAt    time.Time
}

// Store 基于 SQLite 的填充历史
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open 打开（必要时创建）历史数据库
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("历史数据库路径不能为空")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开历史数据库失败: %w", err)
	}
	// 单连接避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化历史数据库失败: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Record 写入一条记录，ID 和时间为空时自动生成
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fills (id, template, output_path, tag_count, replacements, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Template, e.OutputPath, e.TagCount, e.Replacements, e.CreatedAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("写入历史记录失败: %w", err)
	}
	return e, nil
}

// Recent 返回最近的 limit 条记录，新的在前
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, output_path, tag_count, replacements, created_at FROM fills ORDER BY created_at DESC, seq DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("查询历史记录失败: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Template, &e.OutputPath, &e.TagCount, &e.Replacements, &created); err != nil {
			return nil, fmt.Errorf("读取历史记录失败: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
