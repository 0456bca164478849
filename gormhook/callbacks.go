package gormhook

import (
	"context"
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/callbacks"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
	"gorm.io/gorm/utils"

	"github.com/RRWM1rr0rB/uuidattr/core/uuid/policy"
	"github.com/RRWM1rr0rB/uuidattr/errors"
	"github.com/RRWM1rr0rB/uuidattr/logging"
	"github.com/RRWM1rr0rB/uuidattr/tracing"
)

// deferredValue is a raw expression destined for one row of an INSERT.
type deferredValue struct {
	row    int
	column string
	expr   string
}

// pendingValue is the attribute value an UPDATE is about to write.
type pendingValue struct {
	value string
	// ok is false when the caller assigned something the policy must not
	// touch, such as a raw expression.
	ok bool
	// row and key are set when the value comes from a map destination.
	row map[string]any
	key string
}

func (p *Plugin) tablePolicies(db *gorm.DB) (string, []*policy.Policy) {
	if db.Error != nil {
		return "", nil
	}
	table := db.Statement.Table
	if db.Statement.Schema != nil {
		table = db.Statement.Schema.Table
	}
	return table, p.policies[table]
}

func (p *Plugin) beforeCreate(db *gorm.DB) {
	table, policies := p.tablePolicies(db)
	if len(policies) == 0 {
		return
	}
	defer p.since(table, "create", time.Now())

	stmt := db.Statement
	ctx, span := tracing.Continue(stmt.Context, createCallbackName)
	defer span.End()

	if rows, ok := mapRows(stmt.Dest); ok {
		p.createMaps(ctx, stmt, table, policies, rows)
		return
	}
	if stmt.Schema == nil {
		return
	}

	rows := recordRows(stmt.ReflectValue)
	var deferred []deferredValue
	for _, pol := range policies {
		field := p.lookupField(ctx, stmt.Schema, pol)
		if field == nil {
			continue
		}
		for i, row := range rows {
			action := pol.Apply(readString(ctx, field, row), true)
			p.observe(ctx, table, pol, action)

			switch action.Kind {
			case policy.SetLiteral:
				if err := field.Set(ctx, row, action.Value); err != nil {
					err = errors.Errorf("gormhook: set %s: %w", field.DBName, err)
					db.AddError(err)
					tracing.Error(ctx, err)
					return
				}
			case policy.SetDeferred:
				deferred = append(deferred, deferredValue{row: i, column: field.DBName, expr: action.Value})
			}
		}
	}

	if len(deferred) > 0 {
		p.buildInsert(ctx, db, deferred)
	}
}

// createMaps applies the policies to map rows. Deferred values are stored in
// the row as raw expressions, which gorm:create renders unquoted.
func (p *Plugin) createMaps(ctx context.Context, stmt *gorm.Statement, table string, policies []*policy.Policy, rows []map[string]any) {
	for _, pol := range policies {
		keys := p.mapKeys(ctx, stmt.Schema, pol)
		if len(keys) == 0 {
			continue
		}
		for _, row := range rows {
			key := pickKey(row, keys)
			current, ok := stringValue(row[key])
			if !ok {
				p.log(ctx).Warn("uuid attribute holds a non-string value, policy skipped",
					logging.StringAttr("table", table),
					logging.StringAttr("key", key))
				continue
			}

			action := pol.Apply(current, true)
			p.observe(ctx, table, pol, action)

			switch action.Kind {
			case policy.SetLiteral:
				row[key] = action.Value
			case policy.SetDeferred:
				row[key] = clause.Expr{SQL: action.Value}
			}
		}
	}
}

// buildInsert renders the INSERT ahead of gorm:create with the deferred
// expressions placed as raw SQL. gorm:create then only executes it.
func (p *Plugin) buildInsert(ctx context.Context, db *gorm.DB, deferred []deferredValue) {
	stmt := db.Statement
	if stmt.SQL.Len() > 0 {
		p.log(ctx).Warn("insert already built, storage-engine UUID skipped",
			logging.StringAttr("table", stmt.Schema.Table))
		return
	}

	if !stmt.Unscoped {
		for _, c := range stmt.Schema.CreateClauses {
			stmt.AddClause(c)
		}
	}

	values := callbacks.ConvertToCreateValues(stmt)
	if db.Error != nil {
		return
	}

	returning := make([]clause.Column, 0, len(stmt.Schema.FieldsWithDefaultDBValue)+1)
	for _, field := range stmt.Schema.FieldsWithDefaultDBValue {
		returning = appendColumn(returning, field.DBName)
	}

	for _, d := range deferred {
		col := columnIndex(values.Columns, d.column)
		if col < 0 || d.row >= len(values.Values) {
			p.log(ctx).Warn("column not part of insert, storage-engine UUID skipped",
				logging.StringAttr("table", stmt.Schema.Table),
				logging.StringAttr("column", d.column))
			continue
		}
		values.Values[d.row][col] = clause.Expr{SQL: d.expr}
		returning = appendColumn(returning, d.column)
	}

	stmt.SQL.Grow(180)
	stmt.AddClauseIfNotExists(clause.Insert{})
	stmt.AddClause(values)
	if utils.Contains(db.Callback().Create().Clauses, "RETURNING") {
		if _, ok := stmt.Clauses["RETURNING"]; !ok {
			stmt.AddClause(clause.Returning{Columns: returning})
		}
	}
	stmt.Build(stmt.BuildClauses...)
}

func (p *Plugin) beforeUpdate(db *gorm.DB) {
	table, policies := p.tablePolicies(db)
	if len(policies) == 0 {
		return
	}

	stmt := db.Statement
	// Only loaded records are handled; condition-based bulk updates carry
	// no record to inspect.
	if stmt.Schema == nil || stmt.ReflectValue.Kind() != reflect.Struct || !hasPrimaryKey(stmt) {
		return
	}
	defer p.since(table, "update", time.Now())

	ctx, span := tracing.Continue(stmt.Context, updateCallbackName)
	defer span.End()

	for _, pol := range policies {
		if !pol.EnableOnUpdate() {
			continue
		}
		field := p.lookupField(ctx, stmt.Schema, pol)
		if field == nil {
			continue
		}

		pending := pendingUpdate(ctx, stmt, field)
		if !pending.ok {
			p.log(ctx).Debug("uuid attribute assigned a non-string value, policy skipped",
				logging.StringAttr("table", table),
				logging.StringAttr("attribute", pol.Attribute()))
			continue
		}

		action := pol.Apply(pending.value, false)
		p.observe(ctx, table, pol, action)

		_, built := stmt.Clauses["SET"]
		switch {
		case action.Kind == policy.NoChange:
		case action.Kind == policy.SetDeferred:
			setAssignment(stmt, field.DBName, clause.Expr{SQL: action.Value})
		case built:
			setAssignment(stmt, field.DBName, action.Value)
		case pending.row != nil:
			pending.row[pending.key] = action.Value
		default:
			stmt.SetColumn(field.DBName, action.Value, true)
		}
	}
}

// pendingUpdate returns the attribute value the UPDATE is about to write.
// A value assigned by the caller, through a map or a separate struct of the
// model type, wins over the loaded record.
func pendingUpdate(ctx context.Context, stmt *gorm.Statement, field *schema.Field) pendingValue {
	if rows, isMap := mapRows(stmt.Dest); isMap {
		if len(rows) == 1 {
			for _, key := range []string{field.DBName, field.Name} {
				if v, ok := rows[0][key]; ok {
					s, ok := stringValue(v)
					return pendingValue{value: s, ok: ok, row: rows[0], key: key}
				}
			}
		}
	} else if dest := reflect.Indirect(reflect.ValueOf(stmt.Dest)); dest.Kind() == reflect.Struct &&
		dest != stmt.ReflectValue && dest.Type() == stmt.Schema.ModelType {
		// Updates with a struct only writes non-zero fields.
		if v, zero := field.ValueOf(ctx, dest); !zero {
			s, ok := stringValue(v)
			return pendingValue{value: s, ok: ok}
		}
	}
	return pendingValue{value: readString(ctx, field, stmt.ReflectValue), ok: true}
}

// setAssignment makes the UPDATE assign value to column, building the SET
// clause from the statement first when nothing has built it yet.
func setAssignment(stmt *gorm.Statement, column string, value any) {
	var set clause.Set
	if c, ok := stmt.Clauses["SET"]; ok {
		set, _ = c.Expression.(clause.Set)
	} else {
		set = callbacks.ConvertToAssignments(stmt)
	}

	for i := range set {
		if set[i].Column.Name == column {
			set[i].Value = value
			stmt.AddClause(set)
			return
		}
	}
	stmt.AddClause(append(set, clause.Assignment{Column: clause.Column{Name: column}, Value: value}))
}

func (p *Plugin) lookupField(ctx context.Context, s *schema.Schema, pol *policy.Policy) *schema.Field {
	field := s.LookUpField(pol.Attribute())
	if field == nil || field.DBName == "" {
		p.log(ctx).Warn("uuid attribute not found on model",
			logging.StringAttr("table", s.Table),
			logging.StringAttr("attribute", pol.Attribute()))
		return nil
	}
	if field.IndirectFieldType.Kind() != reflect.String {
		p.log(ctx).Warn("uuid attribute is not a string field",
			logging.StringAttr("table", s.Table),
			logging.StringAttr("attribute", pol.Attribute()),
			logging.StringAttr("type", field.FieldType.String()))
		return nil
	}
	return field
}

// mapKeys lists the keys a map row may use for the attribute, preferred
// first. Without a model schema the attribute is taken as the column name.
func (p *Plugin) mapKeys(ctx context.Context, s *schema.Schema, pol *policy.Policy) []string {
	if s == nil {
		return []string{pol.Attribute()}
	}
	field := p.lookupField(ctx, s, pol)
	if field == nil {
		return nil
	}
	return []string{field.DBName, field.Name}
}

func pickKey(row map[string]any, keys []string) string {
	for _, k := range keys {
		if _, ok := row[k]; ok {
			return k
		}
	}
	return keys[0]
}

// mapRows returns the rows of a map destination; ok is false for any other
// destination.
func mapRows(dest any) (rows []map[string]any, ok bool) {
	switch d := dest.(type) {
	case map[string]any:
		return []map[string]any{d}, true
	case *map[string]any:
		if d == nil || *d == nil {
			return nil, true
		}
		return []map[string]any{*d}, true
	case []map[string]any:
		return d, true
	case *[]map[string]any:
		if d == nil {
			return nil, true
		}
		return *d, true
	}
	return nil, false
}

// recordRows returns the addressable struct values of a create destination.
func recordRows(rv reflect.Value) []reflect.Value {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		rows := make([]reflect.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			rows = append(rows, reflect.Indirect(rv.Index(i)))
		}
		return rows
	case reflect.Struct:
		return []reflect.Value{rv}
	default:
		return nil
	}
}

// readString returns the field value of row, empty for nil pointers.
func readString(ctx context.Context, field *schema.Field, row reflect.Value) string {
	if !row.IsValid() {
		return ""
	}
	v, _ := field.ValueOf(ctx, row)
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.String {
		return ""
	}
	return rv.String()
}

// stringValue reads a caller supplied value; ok is false for anything that
// is not a string, such as a raw expression.
func stringValue(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", true
		}
		return *v, true
	}
	return "", false
}

func hasPrimaryKey(stmt *gorm.Statement) bool {
	if len(stmt.Schema.PrimaryFields) == 0 {
		return false
	}
	for _, field := range stmt.Schema.PrimaryFields {
		if _, isZero := field.ValueOf(stmt.Context, stmt.ReflectValue); isZero {
			return false
		}
	}
	return true
}

func columnIndex(columns []clause.Column, name string) int {
	for i, c := range columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func appendColumn(columns []clause.Column, name string) []clause.Column {
	if columnIndex(columns, name) >= 0 {
		return columns
	}
	return append(columns, clause.Column{Name: name})
}
