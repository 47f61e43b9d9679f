// Package differ compares two database.Schema values and produces an
// ordered list of migration steps from the closed step set: enum
// lifecycle, table lifecycle, per-table alterations, index lifecycle,
// foreign key lifecycle, and SQLite's RedefineTable fallback.
//
// Unlike internal/schema's tree-shaped SchemaDiff, Steps are already in
// the total order a renderer can emit without further reasoning: drop
// stale foreign keys first, create enums and tables before anything
// that references them, and add foreign keys only once both endpoint
// tables exist.
package differ

import (
	"sort"

	"github.com/schemadrift/schemadrift/database"
)

// Kind identifies which of the closed set of migration operations a Step
// performs.
type Kind string

const (
	KindCreateEnum     Kind = "CreateEnum"
	KindDropEnum       Kind = "DropEnum"
	KindAlterEnum      Kind = "AlterEnum"
	KindCreateTable    Kind = "CreateTable"
	KindDropTable      Kind = "DropTable"
	KindRenameTable    Kind = "RenameTable"
	KindAlterTable     Kind = "AlterTable"
	KindCreateIndex    Kind = "CreateIndex"
	KindDropIndex      Kind = "DropIndex"
	KindAlterIndex     Kind = "AlterIndex"
	KindAddForeignKey  Kind = "AddForeignKey"
	KindDropForeignKey Kind = "DropForeignKey"
	KindRedefineTable  Kind = "RedefineTable"
)

// AlterOp identifies the sub-operation of an AlterTable step.
type AlterOp string

const (
	OpAddColumn      AlterOp = "AddColumn"
	OpDropColumn     AlterOp = "DropColumn"
	OpAlterColumn    AlterOp = "AlterColumn"
	OpAddPrimaryKey  AlterOp = "AddPrimaryKey"
	OpDropPrimaryKey AlterOp = "DropPrimaryKey"
)

// Step is one typed migration operation. Only the fields relevant to
// Kind (and, for AlterTable, AlterOp) are populated.
type Step struct {
	Kind Kind

	Table        string // CreateTable, DropTable, AlterTable, index/FK steps, RedefineTable
	OldTableName string // RenameTable
	NewTableName string // RenameTable

	AlterOp   AlterOp         // AlterTable only
	Column    database.Column // AddColumn, AlterColumn (new value), RedefineTable member
	OldColumn database.Column // AlterColumn, DropColumn

	Index database.Index

	ForeignKey database.ForeignKey

	Enum    database.Enum
	OldEnum database.Enum // AlterEnum

	// NewColumns is the full post-state column list for a RedefineTable
	// step, since SQLite rebuilds the whole table rather than altering it
	// in place.
	NewColumns []database.Column
}

// Diff compares before and after and returns the ordered steps needed to
// bring before's schema to after's. Diffing a schema against itself
// yields an empty slice.
func Diff(before, after *database.Schema) []Step {
	if before == nil {
		before = &database.Schema{}
	}
	if after == nil {
		after = &database.Schema{}
	}

	d := &differ{before: before, after: after}
	d.indexSchemas()

	var steps []Step
	steps = append(steps, d.dropStaleForeignKeys()...)
	steps = append(steps, d.enumSteps()...)
	steps = append(steps, d.createTableSteps()...)
	steps = append(steps, d.alterTableSteps()...)
	steps = append(steps, d.indexAndForeignKeySteps()...)
	steps = append(steps, d.dropTableSteps()...)
	return steps
}

type differ struct {
	before, after *database.Schema

	beforeTables map[string]*database.Table
	afterTables  map[string]*database.Table

	beforeEnums map[string]*database.Enum
	afterEnums  map[string]*database.Enum
}

func (d *differ) indexSchemas() {
	d.beforeTables = make(map[string]*database.Table, len(d.before.Tables))
	for i := range d.before.Tables {
		d.beforeTables[d.before.Tables[i].Name] = &d.before.Tables[i]
	}
	d.afterTables = make(map[string]*database.Table, len(d.after.Tables))
	for i := range d.after.Tables {
		d.afterTables[d.after.Tables[i].Name] = &d.after.Tables[i]
	}

	d.beforeEnums = make(map[string]*database.Enum, len(d.before.Enums))
	for i := range d.before.Enums {
		d.beforeEnums[d.before.Enums[i].Name] = &d.before.Enums[i]
	}
	d.afterEnums = make(map[string]*database.Enum, len(d.after.Enums))
	for i := range d.after.Enums {
		d.afterEnums[d.after.Enums[i].Name] = &d.after.Enums[i]
	}
}

// Rule 1: DropForeignKey for any FK whose endpoints will change or
// vanish - the FK no longer exists by name in the after-state table, or
// the after-state table itself is gone.
func (d *differ) dropStaleForeignKeys() []Step {
	var steps []Step
	for _, name := range sortedKeys(d.beforeTables) {
		beforeTable := d.beforeTables[name]
		afterTable, stillExists := d.afterTables[name]

		for _, fk := range beforeTable.ForeignKeys {
			if !stillExists || !fkStillPresent(fk, afterTable.ForeignKeys) {
				steps = append(steps, Step{Kind: KindDropForeignKey, Table: name, ForeignKey: fk})
			}
		}
	}
	return steps
}

func fkStillPresent(fk database.ForeignKey, afterFKs []database.ForeignKey) bool {
	for _, other := range afterFKs {
		if fk.Name == other.Name && sameForeignKeyShape(fk, other) {
			return true
		}
	}
	return false
}

func sameForeignKeyShape(a, b database.ForeignKey) bool {
	return sameStrings(a.Columns, b.Columns) &&
		a.ReferencedTable == b.ReferencedTable &&
		sameStrings(a.ReferencedColumns, b.ReferencedColumns)
}

// Rules 2-3: AlterEnum for enums whose member list changed in any way,
// DropEnum for enums that disappear entirely, then CreateEnum for wholly
// new enums.
func (d *differ) enumSteps() []Step {
	var steps []Step

	for _, name := range sortedEnumKeys(d.beforeEnums) {
		beforeEnum := d.beforeEnums[name]
		afterEnum, stillExists := d.afterEnums[name]
		if !stillExists {
			steps = append(steps, Step{Kind: KindDropEnum, Enum: *beforeEnum})
			continue
		}
		if !sameStrings(beforeEnum.Values, afterEnum.Values) {
			steps = append(steps, Step{Kind: KindAlterEnum, OldEnum: *beforeEnum, Enum: *afterEnum})
		}
	}

	for _, name := range sortedEnumKeys(d.afterEnums) {
		if _, existed := d.beforeEnums[name]; !existed {
			steps = append(steps, Step{Kind: KindCreateEnum, Enum: *d.afterEnums[name]})
		}
	}

	return steps
}

// Rule 4: CreateTable in topological order of FK dependencies - a table
// is created only after every table its foreign keys reference.
func (d *differ) createTableSteps() []Step {
	var newTables []string
	for _, name := range sortedKeys(d.afterTables) {
		if _, existed := d.beforeTables[name]; !existed {
			newTables = append(newTables, name)
		}
	}
	if len(newTables) == 0 {
		return nil
	}

	ordered := topoSortByForeignKeys(newTables, d.afterTables)

	steps := make([]Step, 0, len(ordered))
	for _, name := range ordered {
		steps = append(steps, Step{Kind: KindCreateTable, Table: name})
	}
	return steps
}

// topoSortByForeignKeys orders names so that a table referenced by
// another table's foreign keys precedes it. Ties (no dependency either
// way) are broken alphabetically for determinism. A cycle (only possible
// across two brand-new tables with mutual FKs) falls back to alphabetic
// order for the tied members; the foreign keys themselves are still
// added afterward in the FK step, after every table exists.
func topoSortByForeignKeys(names []string, tables map[string]*database.Table) []string {
	inSet := make(map[string]bool, len(names))
	for _, n := range names {
		inSet[n] = true
	}

	visited := make(map[string]int) // 0 unvisited, 1 in-progress, 2 done
	var order []string

	var visit func(name string)
	visit = func(name string) {
		if visited[name] == 2 || visited[name] == 1 {
			return
		}
		visited[name] = 1
		table := tables[name]
		deps := dependencyTargets(table, inSet)
		sort.Strings(deps)
		for _, dep := range deps {
			if dep != name {
				visit(dep)
			}
		}
		visited[name] = 2
		order = append(order, name)
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		visit(name)
	}
	return order
}

func dependencyTargets(table *database.Table, inSet map[string]bool) []string {
	var deps []string
	for _, fk := range table.ForeignKeys {
		if inSet[fk.ReferencedTable] {
			deps = append(deps, fk.ReferencedTable)
		}
	}
	return deps
}

// Rule 5: AlterTable steps per table, grouped; within a table drop, then
// alter, then add. SQLite tables needing a primary-key or column-type
// change get RedefineTable instead, since SQLite's ALTER TABLE cannot
// express either.
func (d *differ) alterTableSteps() []Step {
	var steps []Step

	for _, name := range sortedKeys(d.afterTables) {
		beforeTable, existed := d.beforeTables[name]
		afterTable := d.afterTables[name]
		if !existed {
			continue
		}

		drops, alters, adds, needsRedefine := diffColumns(beforeTable.Columns, afterTable.Columns)

		if needsRedefine && d.after.Dialect == database.DialectSQLite {
			steps = append(steps, Step{Kind: KindRedefineTable, Table: name, NewColumns: afterTable.Columns})
			continue
		}

		for _, c := range drops {
			steps = append(steps, Step{Kind: KindAlterTable, Table: name, AlterOp: OpDropColumn, OldColumn: c})
		}
		for _, pair := range alters {
			steps = append(steps, Step{Kind: KindAlterTable, Table: name, AlterOp: OpAlterColumn, OldColumn: pair[0], Column: pair[1]})
		}
		for _, c := range adds {
			steps = append(steps, Step{Kind: KindAlterTable, Table: name, AlterOp: OpAddColumn, Column: c})
		}
	}

	return steps
}

// diffColumns returns dropped, (old,new) altered pairs, and added
// columns between before and after column lists. needsRedefine reports
// whether any change is a primary-key flip or a type change, which
// SQLite cannot express as an in-place ALTER.
func diffColumns(before, after []database.Column) (drops []database.Column, alters [][2]database.Column, adds []database.Column, needsRedefine bool) {
	beforeByName := make(map[string]database.Column, len(before))
	for _, c := range before {
		beforeByName[c.Name] = c
	}
	afterByName := make(map[string]database.Column, len(after))
	for _, c := range after {
		afterByName[c.Name] = c
	}

	beforeNames := make([]string, 0, len(before))
	for _, c := range before {
		beforeNames = append(beforeNames, c.Name)
	}
	sort.Strings(beforeNames)
	afterNames := make([]string, 0, len(after))
	for _, c := range after {
		afterNames = append(afterNames, c.Name)
	}
	sort.Strings(afterNames)

	for _, name := range beforeNames {
		if _, exists := afterByName[name]; !exists {
			drops = append(drops, beforeByName[name])
		}
	}
	for _, name := range afterNames {
		beforeCol, existed := beforeByName[name]
		afterCol := afterByName[name]
		if !existed {
			adds = append(adds, afterCol)
			continue
		}
		if columnsEqual(beforeCol, afterCol) {
			continue
		}
		alters = append(alters, [2]database.Column{beforeCol, afterCol})
		if beforeCol.IsPrimaryKey != afterCol.IsPrimaryKey || beforeCol.LogicalType() != afterCol.LogicalType() {
			needsRedefine = true
		}
	}
	return drops, alters, adds, needsRedefine
}

func columnsEqual(a, b database.Column) bool {
	return len(ColumnChanges(a, b)) == 0
}

// ColumnChanges lists which of type/nullable/default/is_primary_key
// differ between old and new, in the order a database.ColumnDiff.Changes
// slice is conventionally built in. Exported so internal/migrate can
// build the database.ColumnDiff a driver's ModifyColumn expects without
// recomputing the comparison itself.
func ColumnChanges(old, new database.Column) []string {
	var changes []string
	if old.LogicalType() != new.LogicalType() {
		changes = append(changes, "type")
	}
	if old.Nullable != new.Nullable {
		changes = append(changes, "nullable")
	}
	if old.LogicalDefault() != new.LogicalDefault() {
		changes = append(changes, "default")
	}
	if old.IsPrimaryKey != new.IsPrimaryKey {
		changes = append(changes, "is_primary_key")
	}
	return changes
}

// Rule 6: CreateIndex (non-FK) before AddForeignKey; DropIndex mirrors
// the inverse. AddForeignKey comes last across the whole index/FK phase
// so every referenced table and column is already in place.
func (d *differ) indexAndForeignKeySteps() []Step {
	var indexSteps, fkSteps []Step

	for _, name := range sortedKeys(d.afterTables) {
		beforeTable, existed := d.beforeTables[name]
		afterTable := d.afterTables[name]

		var beforeIdx []database.Index
		var beforeFKs []database.ForeignKey
		if existed {
			beforeIdx = beforeTable.Indexes
			beforeFKs = beforeTable.ForeignKeys
		}

		dropIdx, addIdx := diffIndexes(beforeIdx, afterTable.Indexes)
		for _, idx := range dropIdx {
			indexSteps = append(indexSteps, Step{Kind: KindDropIndex, Table: name, Index: idx})
		}
		for _, idx := range addIdx {
			indexSteps = append(indexSteps, Step{Kind: KindCreateIndex, Table: name, Index: idx})
		}

		_, addFKs := diffForeignKeys(beforeFKs, afterTable.ForeignKeys)
		for _, fk := range addFKs {
			fkSteps = append(fkSteps, Step{Kind: KindAddForeignKey, Table: name, ForeignKey: fk})
		}
	}

	return append(indexSteps, fkSteps...)
}

func diffIndexes(before, after []database.Index) (drops, adds []database.Index) {
	beforeByName := make(map[string]database.Index, len(before))
	for _, idx := range before {
		beforeByName[idx.Name] = idx
	}
	afterByName := make(map[string]database.Index, len(after))
	for _, idx := range after {
		afterByName[idx.Name] = idx
	}

	for _, idx := range before {
		if _, exists := afterByName[idx.Name]; !exists {
			drops = append(drops, idx)
		}
	}
	for _, idx := range after {
		if old, exists := beforeByName[idx.Name]; !exists || !sameStrings(old.Columns, idx.Columns) || old.Unique != idx.Unique {
			if exists {
				drops = append(drops, old)
			}
			adds = append(adds, idx)
		}
	}
	return drops, adds
}

func diffForeignKeys(before, after []database.ForeignKey) (drops, adds []database.ForeignKey) {
	for _, fk := range after {
		if !fkStillPresent(fk, before) {
			adds = append(adds, fk)
		}
	}
	return nil, adds
}

// Rule 7: DropTable only after every FK referencing it has already been
// dropped (handled by dropStaleForeignKeys running first).
func (d *differ) dropTableSteps() []Step {
	var steps []Step
	for _, name := range sortedKeys(d.beforeTables) {
		if _, stillExists := d.afterTables[name]; !stillExists {
			steps = append(steps, Step{Kind: KindDropTable, Table: name})
		}
	}
	return steps
}

func sortedKeys(m map[string]*database.Table) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedEnumKeys(m map[string]*database.Enum) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
