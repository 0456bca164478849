package policy

// sqliteUUIDv4 assembles a v4 UUID from randomblob since SQLite has no
// built-in UUID function.
const sqliteUUIDv4 = "lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || " +
	"substr(lower(hex(randomblob(2))), 2) || '-' || substr('89ab', abs(random()) % 4 + 1, 1) || " +
	"substr(lower(hex(randomblob(2))), 2) || '-' || lower(hex(randomblob(6)))"

type expressionPair struct {
	dashed  string
	compact string
}

var deferredExpressions = map[Dialect]expressionPair{
	DialectMySQL: {
		dashed:  "UUID()",
		compact: "REPLACE(UUID(), '-', '')",
	},
	DialectPostgres: {
		dashed:  "gen_random_uuid()::text",
		compact: "replace(gen_random_uuid()::text, '-', '')",
	},
	DialectSQLite: {
		dashed:  "(" + sqliteUUIDv4 + ")",
		compact: "replace(" + sqliteUUIDv4 + ", '-', '')",
	},
	DialectSQLServer: {
		dashed:  "LOWER(CONVERT(VARCHAR(36), NEWID()))",
		compact: "LOWER(REPLACE(CONVERT(VARCHAR(36), NEWID()), '-', ''))",
	},
}

// DeferredExpression returns the raw SQL expression that makes the engine
// generate a UUID. The result must be written unquoted.
func DeferredExpression(d Dialect, keepDashes bool) (string, error) {
	dialect, err := parseDialect(d)
	if err != nil {
		return "", err
	}
	pair := deferredExpressions[dialect]
	if keepDashes {
		return pair.dashed, nil
	}
	return pair.compact, nil
}
