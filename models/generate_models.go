package models

import (
	"fmt"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Query generation and column drift report.

GENERATE_MODELS=true writes typed query helpers for every forum table into ./generated.
GENERATE_COLUMN_REPORT=true prints, per table, the database columns that no model field maps to.
Both run against the configured database and exit.
*/

// Forum returns every table owned by the forum, in migration order.
func Forum() []any {
	return []any{
		&User{},
		&Question{},
		&QuestionTag{},
		&Post{},
		&PostTag{},
		&PostLike{},
		&Comment{},
	}
}

func GenerateQueries(db *gorm.DB, outPath string) {
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)
	g.ApplyBasic(append(Forum(), &LegacyProfile{})...)
	g.Execute()
}

// ColumnDrift lists, for each forum table, the columns present in the database
// that have no matching model field. Tables that do not exist yet are skipped.
func ColumnDrift(db *gorm.DB) (map[string][]string, error) {
	drift := make(map[string][]string)

	for _, model := range Forum() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}

		if !db.Migrator().HasTable(model) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", stmt.Schema.Table, err)
		}

		if missing := unmappedColumns(stmt.Schema, columnTypes); len(missing) > 0 {
			drift[stmt.Schema.Table] = missing
		}
	}

	return drift, nil
}

func unmappedColumns(s *schema.Schema, columnTypes []gorm.ColumnType) []string {
	var missing []string
	for _, column := range columnTypes {
		if _, ok := s.FieldsByDBName[column.Name()]; !ok {
			missing = append(missing, column.Name())
		}
	}
	sort.Strings(missing)
	return missing
}
