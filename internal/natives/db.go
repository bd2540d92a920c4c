package natives

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/neon-lang/neon/internal/vm"
)

// dbHandle wraps an open sqlite connection as a language value
type dbHandle struct {
	db   *sql.DB
	path string
}

func (h *dbHandle) TypeName() string { return "Database" }
func (h *dbHandle) Format() string   { return "<database " + h.path + ">" }

func dbMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"open":  {Name: "Db.open", Arity: 1, Fn: dbOpen},
		"exec":  {Name: "Db.exec", Arity: 2, Fn: dbExec},
		"query": {Name: "Db.query", Arity: 2, Fn: dbQuery},
		"close": {Name: "Db.close", Arity: 1, Fn: dbClose},
	}
}

func dbOpen(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.ObjVal(&dbHandle{db: db, path: path}), nil
}

func argHandle(args []vm.Value, i int) (*dbHandle, error) {
	if i < len(args) {
		if h, ok := args[i].Obj.(*dbHandle); ok {
			return h, nil
		}
	}
	return nil, errors.New("argument must be a database handle from Db.open")
}

func dbExec(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	h, err := argHandle(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	stmt, err := argString(args, 2)
	if err != nil {
		return vm.NilVal(), err
	}
	res, err := h.db.Exec(stmt)
	if err != nil {
		return vm.NilVal(), err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(float64(affected)), nil
}

// dbQuery returns rows as an array of maps keyed by column name
func dbQuery(v *vm.VM, args []vm.Value) (vm.Value, error) {
	h, err := argHandle(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	stmt, err := argString(args, 2)
	if err != nil {
		return vm.NilVal(), err
	}

	rows, err := h.db.Query(stmt)
	if err != nil {
		return vm.NilVal(), err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return vm.NilVal(), err
	}

	var out []vm.Value
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return vm.NilVal(), err
		}

		row := vm.NewMapObject()
		for i, col := range cols {
			row.Set(v.Intern(col), sqlValue(v, raw[i]))
		}
		out = append(out, vm.ObjVal(row))
	}
	if err := rows.Err(); err != nil {
		return vm.NilVal(), err
	}
	return vm.ObjVal(&vm.ArrayObject{Elements: out}), nil
}

func dbClose(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	h, err := argHandle(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	if err := h.db.Close(); err != nil {
		return vm.NilVal(), err
	}
	return vm.NilVal(), nil
}

// sqlValue converts a scanned sqlite value to a language value
func sqlValue(v *vm.VM, raw interface{}) vm.Value {
	switch x := raw.(type) {
	case nil:
		return vm.NilVal()
	case int64:
		return vm.NumberVal(float64(x))
	case float64:
		return vm.NumberVal(x)
	case bool:
		return vm.BoolVal(x)
	case []byte:
		return v.Intern(string(x))
	case string:
		return v.Intern(x)
	default:
		return v.Intern(fmt.Sprintf("%v", x))
	}
}
