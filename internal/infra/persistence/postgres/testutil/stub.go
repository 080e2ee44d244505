// Package testutil provides an in-memory stub database for postgres store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// StubConn records statements and keeps rows per table. It understands the
// narrow SQL the postgres store issues: INSERT with ON CONFLICT DO NOTHING,
// DELETE and SELECT with AND-ed equality predicates, ORDER BY and LIMIT.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Tables     map[string][]map[string]any
	FailExec   bool
	FailPing   bool
	FailQuery  bool
	RowsErr    error
	FailCommit bool
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "INSERT INTO"):
		return c.insert(query, args)
	case strings.HasPrefix(upper, "DELETE FROM"):
		table, where, err := parseDelete(query)
		if err != nil {
			return nil, err
		}
		var kept []map[string]any
		removed := 0
		for _, row := range c.Tables[table] {
			if matches(row, where, args) {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		c.Tables[table] = kept
		return driver.RowsAffected(removed), nil
	}
	return driver.RowsAffected(0), nil
}

func (c *StubConn) insert(query string, args []driver.NamedValue) (driver.Result, error) {
	table, cols, err := parseInsert(query)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(args) {
		return nil, fmt.Errorf("column/arg mismatch for %s", table)
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		row[col] = args[i].Value
	}
	if conflict := parseConflict(query); len(conflict) > 0 {
		for _, existing := range c.Tables[table] {
			same := true
			for _, col := range conflict {
				if existing[col] != row[col] {
					same = false
					break
				}
			}
			if same {
				return driver.RowsAffected(0), nil
			}
		}
	}
	c.Tables[table] = append(c.Tables[table], row)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	sel, err := parseSelect(query)
	if err != nil {
		return nil, err
	}
	var picked []map[string]any
	for _, row := range c.Tables[sel.table] {
		if matches(row, sel.where, args) {
			picked = append(picked, row)
		}
	}
	if sel.orderBy != "" {
		sort.SliceStable(picked, func(i, j int) bool {
			a, b := fmt.Sprint(picked[i][sel.orderBy]), fmt.Sprint(picked[j][sel.orderBy])
			if sel.desc {
				return a > b
			}
			return a < b
		})
	}
	if sel.limit > 0 && len(picked) > sel.limit {
		picked = picked[:sel.limit]
	}
	values := make([][]driver.Value, 0, len(picked))
	for _, row := range picked {
		vals := make([]driver.Value, len(sel.cols))
		for i, col := range sel.cols {
			vals[i] = row[col]
		}
		values = append(values, vals)
	}
	return &stubRows{cols: sel.cols, rows: values, err: c.RowsErr}, nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}
func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

// predicate is one "col = $n" term.
type predicate struct {
	col string
	arg int
}

func matches(row map[string]any, where []predicate, args []driver.NamedValue) bool {
	for _, p := range where {
		if p.arg >= len(args) || row[p.col] != args[p.arg].Value {
			return false
		}
	}
	return true
}

func parseWhere(clause string) ([]predicate, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, nil
	}
	var out []predicate
	for _, term := range splitFold(clause, " and ") {
		parts := strings.SplitN(term, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("cannot parse predicate %q", term)
		}
		placeholder := strings.TrimPrefix(strings.TrimSpace(parts[1]), "$")
		n, err := strconv.Atoi(placeholder)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("unsupported placeholder in %q", term)
		}
		out = append(out, predicate{col: strings.ToLower(strings.TrimSpace(parts[0])), arg: n - 1})
	}
	return out, nil
}

func parseInsert(query string) (string, []string, error) {
	up := strings.ToUpper(query)
	intoIdx := strings.Index(up, "INTO ")
	if intoIdx == -1 {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	rest := strings.TrimSpace(query[intoIdx+len("INTO "):])
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open == -1 || closeIdx == -1 || closeIdx <= open {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	table := strings.ToLower(strings.TrimSpace(rest[:open]))
	cols := splitColumns(rest[open+1 : closeIdx])
	return table, cols, nil
}

// parseConflict returns the ON CONFLICT target columns, if any.
func parseConflict(query string) []string {
	up := strings.ToUpper(query)
	idx := strings.Index(up, "ON CONFLICT")
	if idx == -1 {
		return nil
	}
	rest := query[idx+len("ON CONFLICT"):]
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open == -1 || closeIdx <= open {
		return nil
	}
	return splitColumns(rest[open+1 : closeIdx])
}

func parseDelete(query string) (string, []predicate, error) {
	rest := strings.TrimSpace(query)[len("delete from "):]
	whereIdx := strings.Index(strings.ToLower(rest), " where ")
	if whereIdx == -1 {
		return strings.ToLower(strings.TrimSpace(rest)), nil, nil
	}
	where, err := parseWhere(rest[whereIdx+len(" where "):])
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(strings.TrimSpace(rest[:whereIdx])), where, nil
}

type selectQuery struct {
	table   string
	cols    []string
	where   []predicate
	orderBy string
	desc    bool
	limit   int
}

func parseSelect(query string) (selectQuery, error) {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)
	if !strings.HasPrefix(lower, "select ") {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	fromIdx := strings.Index(lower, " from ")
	if fromIdx == -1 {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	sel := selectQuery{cols: splitColumns(q[len("select "):fromIdx])}
	rest := q[fromIdx+len(" from "):]

	if i := strings.Index(strings.ToLower(rest), " limit "); i != -1 {
		n, err := strconv.Atoi(strings.TrimSpace(rest[i+len(" limit "):]))
		if err != nil {
			return selectQuery{}, fmt.Errorf("cannot parse limit: %s", query)
		}
		sel.limit = n
		rest = rest[:i]
	}
	if i := strings.Index(strings.ToLower(rest), " order by "); i != -1 {
		fields := strings.Fields(strings.ToLower(rest[i+len(" order by "):]))
		if len(fields) == 0 {
			return selectQuery{}, fmt.Errorf("cannot parse order by: %s", query)
		}
		sel.orderBy = fields[0]
		sel.desc = len(fields) > 1 && fields[1] == "desc"
		rest = rest[:i]
	}
	if i := strings.Index(strings.ToLower(rest), " where "); i != -1 {
		where, err := parseWhere(rest[i+len(" where "):])
		if err != nil {
			return selectQuery{}, err
		}
		sel.where = where
		rest = rest[:i]
	}
	sel.table = strings.ToLower(strings.TrimSpace(rest))
	if sel.table == "" {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	return sel, nil
}

func splitColumns(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(part)))
	}
	return out
}

// splitFold splits s around sep ignoring case.
func splitFold(s, sep string) []string {
	var out []string
	lower := strings.ToLower(s)
	for {
		i := strings.Index(lower, sep)
		if i == -1 {
			return append(out, s)
		}
		out = append(out, s[:i])
		s, lower = s[i+len(sep):], lower[i+len(sep):]
	}
}
