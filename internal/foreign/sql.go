package foreign

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"monkey/internal/object"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQL owns the database handles opened by a script. Handles are small
// integers that scripts pass back into the other sql_ builtins.
type SQL struct {
	connections  map[int64]*sql.DB
	transactions map[int64]*sql.Tx
	nextID       int64
}

func NewSQL() *SQL {
	return &SQL{
		connections:  map[int64]*sql.DB{},
		transactions: map[int64]*sql.Tx{},
	}
}

// Builtins returns the sql_ builtins bound to this handle table.
func (s *SQL) Builtins() map[string]*object.Builtin {
	return map[string]*object.Builtin{
		"sql_open":     s.fnOpen(),
		"sql_exec":     s.fnExec(),
		"sql_query":    s.fnQuery(),
		"sql_close":    s.fnClose(),
		"sql_begin":    s.fnBegin(),
		"sql_commit":   s.fnCommit(),
		"sql_rollback": s.fnRollback(),
	}
}

// Close rolls back open transactions and closes every connection.
func (s *SQL) Close() error {
	var errs []error
	for id, tx := range s.transactions {
		if err := tx.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("failed to rollback handle %d: %w", id, err))
		}
		delete(s.transactions, id)
	}
	for id, db := range s.connections {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close handle %d: %w", id, err))
		}
		delete(s.connections, id)
	}
	return errors.Join(errs...)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// conn returns the open transaction for the handle if there is one.
func (s *SQL) conn(id int64) (execer, bool) {
	if tx, ok := s.transactions[id]; ok {
		return tx, true
	}
	db, ok := s.connections[id]
	return db, ok
}

func (s *SQL) fnOpen() *object.Builtin {
	return &object.Builtin{
		Name: "sql_open",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 2 {
				return ctx.NewError("sql_open expects 2 arguments: driver, dsn")
			}
			driver, err := unpackString(args[0], "sql_open")
			if err != nil {
				return ctx.NewError("%s", err)
			}
			dsn, err := unpackString(args[1], "sql_open")
			if err != nil {
				return ctx.NewError("%s", err)
			}

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return ctx.NewError("failed to open connection: %v", err)
			}
			if driver == "sqlite3" {
				// every connection to :memory: is a different database
				db.SetMaxOpenConns(1)
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return ctx.NewError("failed to ping database: %v", err)
			}

			s.nextID++
			s.connections[s.nextID] = db
			slog.Debug("sql connection opened",
				slog.String("driver", driver),
				slog.Int64("handle", s.nextID))
			return &object.Integer{Value: s.nextID}
		},
	}
}

func (s *SQL) fnExec() *object.Builtin {
	return &object.Builtin{
		Name: "sql_exec",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) < 2 {
				return ctx.NewError("sql_exec expects at least 2 arguments: handle, sql")
			}
			conn, query, params, errObj := s.prepare(ctx, "sql_exec", args)
			if errObj != nil {
				return errObj
			}

			result, err := conn.Exec(query, params...)
			if err != nil {
				return ctx.NewError("exec failed: %v", err)
			}

			// not every driver reports both
			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()

			res := object.NewHash()
			res.Put(&object.String{Value: "rows_affected"}, &object.Integer{Value: affected})
			res.Put(&object.String{Value: "last_insert_id"}, &object.Integer{Value: lastID})
			return res
		},
	}
}

func (s *SQL) fnQuery() *object.Builtin {
	return &object.Builtin{
		Name: "sql_query",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) < 2 {
				return ctx.NewError("sql_query expects at least 2 arguments: handle, sql")
			}
			conn, query, params, errObj := s.prepare(ctx, "sql_query", args)
			if errObj != nil {
				return errObj
			}

			rows, err := conn.Query(query, params...)
			if err != nil {
				return ctx.NewError("query failed: %v", err)
			}
			defer rows.Close()

			result, err := renderRows(rows)
			if err != nil {
				return ctx.NewError("query failed: %v", err)
			}
			return result
		},
	}
}

func (s *SQL) prepare(
	ctx object.EvaluatorContext,
	name string,
	args []object.Object,
) (execer, string, []interface{}, *object.Error) {
	id, err := unpackInteger(args[0], name)
	if err != nil {
		return nil, "", nil, ctx.NewError("%s", err)
	}
	query, err := unpackString(args[1], name)
	if err != nil {
		return nil, "", nil, ctx.NewError("%s", err)
	}
	conn, ok := s.conn(id)
	if !ok {
		return nil, "", nil, ctx.NewError("invalid connection handle %d", id)
	}
	params, err := toParams(args[2:], name)
	if err != nil {
		return nil, "", nil, ctx.NewError("%s", err)
	}
	return conn, query, params, nil
}

func (s *SQL) fnClose() *object.Builtin {
	return &object.Builtin{
		Name: "sql_close",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return ctx.NewError("sql_close expects 1 argument: handle")
			}
			id, err := unpackInteger(args[0], "sql_close")
			if err != nil {
				return ctx.NewError("%s", err)
			}

			if tx, ok := s.transactions[id]; ok {
				if err := tx.Rollback(); err != nil {
					slog.Warn("failed to rollback on close",
						slog.Int64("handle", id),
						slog.Any("error", err))
				}
				delete(s.transactions, id)
			}
			db, ok := s.connections[id]
			if !ok {
				return ctx.NewError("invalid connection handle %d", id)
			}
			delete(s.connections, id)
			if err := db.Close(); err != nil {
				return ctx.NewError("failed to close connection: %v", err)
			}

			slog.Debug("sql connection closed", slog.Int64("handle", id))
			return object.NULL
		},
	}
}

func (s *SQL) fnBegin() *object.Builtin {
	return &object.Builtin{
		Name: "sql_begin",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return ctx.NewError("sql_begin expects 1 argument: handle")
			}
			id, err := unpackInteger(args[0], "sql_begin")
			if err != nil {
				return ctx.NewError("%s", err)
			}

			db, ok := s.connections[id]
			if !ok {
				return ctx.NewError("invalid connection handle %d", id)
			}
			if _, ok := s.transactions[id]; ok {
				return ctx.NewError("transaction already open on handle %d", id)
			}

			tx, err := db.Begin()
			if err != nil {
				return ctx.NewError("failed to begin transaction: %v", err)
			}

			s.transactions[id] = tx
			return args[0]
		},
	}
}

func (s *SQL) fnCommit() *object.Builtin {
	return &object.Builtin{
		Name: "sql_commit",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return s.finishTx(ctx, "sql_commit", args, (*sql.Tx).Commit)
		},
	}
}

func (s *SQL) fnRollback() *object.Builtin {
	return &object.Builtin{
		Name: "sql_rollback",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return s.finishTx(ctx, "sql_rollback", args, (*sql.Tx).Rollback)
		},
	}
}

func (s *SQL) finishTx(
	ctx object.EvaluatorContext,
	name string,
	args []object.Object,
	finish func(*sql.Tx) error,
) object.Object {
	if len(args) != 1 {
		return ctx.NewError("%s expects 1 argument: handle", name)
	}
	id, err := unpackInteger(args[0], name)
	if err != nil {
		return ctx.NewError("%s", err)
	}

	tx, ok := s.transactions[id]
	if !ok {
		return ctx.NewError("no open transaction on handle %d", id)
	}
	delete(s.transactions, id)

	if err := finish(tx); err != nil {
		return ctx.NewError("%s failed: %v", name, err)
	}
	return args[0]
}

func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := []object.Object{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := object.NewHash()
		for i, col := range columns {
			row.Put(&object.String{Value: col}, fromColumn(values[i]))
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &object.Array{Elements: resultRows}, nil
}
