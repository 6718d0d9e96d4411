package database

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// backupTables lists every table, parents before children.
var backupTables = []string{
	"site_settings",
	"users",
	"categories",
	"genres",
	"content",
	"content_categories",
	"content_genres",
	"episodes",
	"download_links",
	"streaming_links",
	"cast_members",
	"content_casts",
	"content_images",
	"external_ratings",
	"user_favorites",
	"user_watch_history",
	"watchlists",
	"watchlist_items",
	"notifications",
	"notification_settings",
	"reviews",
	"review_likes",
	"comments",
	"reports",
}

// ErrInvalidBackup marks a restore input holding anything but row inserts.
var ErrInvalidBackup = errors.New("invalid backup")

const backupTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

// CreateBackup writes every table as INSERT statements, one per line.
func (m *Manager) CreateBackup(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- yemenflix backup\n-- created: %s\n-- dialect: %s\n\n",
		time.Now().UTC().Format(time.RFC3339), m.db.Dialector.Name())

	db := m.db.WithContext(ctx)
	for _, table := range backupTables {
		n, err := m.dumpTable(db, bw, table)
		if err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}
		log.Debug().Str("table", table).Int("rows", n).Msg("table dumped")
	}
	return bw.Flush()
}

func (m *Manager) dumpTable(db *gorm.DB, w io.Writer, table string) (int, error) {
	rows, err := db.Table(table).Rows()
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	quotedCols := make([]string, len(cols))
	for i, c := range cols {
		quotedCols[i] = pq.QuoteIdentifier(c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", pq.QuoteIdentifier(table), strings.Join(quotedCols, ", "))

	n := 0
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = m.literal(v)
		}
		if _, err := fmt.Fprintf(w, "%s%s);\n", prefix, strings.Join(literals, ", ")); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func (m *Manager) literal(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return m.quote(val.Format(backupTimeLayout))
	case []byte:
		return m.quote(string(val))
	case string:
		return m.quote(val)
	default:
		return m.quote(fmt.Sprint(val))
	}
}

func (m *Manager) quote(s string) string {
	if m.isSQLite() {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return pq.QuoteLiteral(s)
}

// RestoreBackup clears every table and replays a backup in one transaction.
func (m *Manager) RestoreBackup(ctx context.Context, r io.Reader) error {
	statements, err := splitStatements(r)
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if err := checkStatement(stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearTables(tx); err != nil {
			return err
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("restore statement failed: %w", err)
			}
		}
		return m.resetSequences(tx)
	})
	if err != nil {
		return err
	}
	log.Info().Int("statements", len(statements)).Msg("backup restored")
	return nil
}

// ResetDatabase removes every row and seeds the defaults again.
func (m *Manager) ResetDatabase(ctx context.Context) error {
	if err := m.db.WithContext(ctx).Transaction(clearTables); err != nil {
		return err
	}
	return m.seed(ctx)
}

func clearTables(tx *gorm.DB) error {
	for i := len(backupTables) - 1; i >= 0; i-- {
		if err := tx.Exec("DELETE FROM " + pq.QuoteIdentifier(backupTables[i])).Error; err != nil {
			return fmt.Errorf("clear %s: %w", backupTables[i], err)
		}
	}
	return nil
}

// resetSequences moves postgres serial sequences past the restored ids.
func (m *Manager) resetSequences(tx *gorm.DB) error {
	if m.isSQLite() {
		return nil
	}
	for _, table := range backupTables {
		if !tx.Migrator().HasColumn(table, "id") {
			continue
		}
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence(%s, 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s",
			pq.QuoteLiteral(table), pq.QuoteIdentifier(table))
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("reset sequence %s: %w", table, err)
		}
	}
	return nil
}

// checkStatement accepts only INSERT INTO one of the backup tables.
func checkStatement(stmt string) error {
	const insert = "INSERT INTO "
	if len(stmt) < len(insert) || !strings.EqualFold(stmt[:len(insert)], insert) {
		return fmt.Errorf("%w: only INSERT statements are allowed", ErrInvalidBackup)
	}
	rest := strings.TrimLeft(stmt[len(insert):], " ")
	var table string
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return fmt.Errorf("%w: unterminated table name", ErrInvalidBackup)
		}
		table = rest[1 : end+1]
	} else if end := strings.IndexAny(rest, " ("); end > 0 {
		table = rest[:end]
	}
	for _, known := range backupTables {
		if table == known {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown table %q", ErrInvalidBackup, table)
}

// splitStatements splits SQL text on semicolons outside quoted literals and
// drops "--" comment lines.
func splitStatements(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var (
		out     []string
		current strings.Builder
		inQuote bool
	)
	text := string(data)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if !inQuote && current.Len() == 0 && ch == '-' && strings.HasPrefix(text[i:], "--") {
			for i < len(text) && text[i] != '\n' {
				i++
			}
			continue
		}
		if !inQuote && current.Len() == 0 && (ch == '\n' || ch == ' ' || ch == '\t' || ch == '\r') {
			continue
		}
		if ch == '\'' {
			inQuote = !inQuote
		}
		if ch == ';' && !inQuote {
			out = append(out, current.String())
			current.Reset()
			continue
		}
		current.WriteByte(ch)
	}
	if inQuote {
		return nil, fmt.Errorf("backup ends inside a quoted literal")
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		out = append(out, rest)
	}
	return out, nil
}
