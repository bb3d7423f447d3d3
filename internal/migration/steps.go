// Package migration defines the structural steps produced by the differ, the
// Migration that carries them together with both snapshots, and the ordering
// rule that turns an unordered set of steps into an executable sequence.
package migration

import "github.com/tordrt/schemaplan/internal/schema"

// StepKind identifies a step type. Declaration order is the step-kind priority
// used as a tie-break when two steps are independent.
type StepKind int

const (
	KindCreateNamespace StepKind = iota
	KindCreateEnum
	KindAlterEnum
	KindCreateSequence
	KindAlterSequence
	KindDropView
	KindDropForeignKey
	KindDropIndex
	KindCreateTable
	KindRenameColumn
	KindAddColumn
	KindAlterColumnType
	KindDropAndRecreateColumn
	KindAlterColumnNullability
	KindAlterColumnDefault
	KindDropColumn
	KindDropTable
	KindCreateIndex
	KindAddForeignKey
	KindCreateView
	KindDropEnum
	KindDropSequence
	KindDropNamespace
)

var kindNames = map[StepKind]string{
	KindCreateNamespace:        "CreateNamespace",
	KindCreateEnum:             "CreateEnum",
	KindAlterEnum:              "AlterEnum",
	KindCreateSequence:         "CreateSequence",
	KindAlterSequence:          "AlterSequence",
	KindDropView:               "DropView",
	KindDropForeignKey:         "DropForeignKey",
	KindDropIndex:              "DropIndex",
	KindCreateTable:            "CreateTable",
	KindRenameColumn:           "RenameColumn",
	KindAddColumn:              "AddColumn",
	KindAlterColumnType:        "AlterColumnType",
	KindDropAndRecreateColumn:  "DropAndRecreateColumn",
	KindAlterColumnNullability: "AlterColumnNullability",
	KindAlterColumnDefault:     "AlterColumnDefault",
	KindDropColumn:             "DropColumn",
	KindDropTable:              "DropTable",
	KindCreateIndex:            "CreateIndex",
	KindAddForeignKey:          "AddForeignKey",
	KindCreateView:             "CreateView",
	KindDropEnum:               "DropEnum",
	KindDropSequence:           "DropSequence",
	KindDropNamespace:          "DropNamespace",
}

func (k StepKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Step is one atomic structural change. Handles in Create/Add steps point into
// the next snapshot, handles in Drop steps into the previous one, and Pair
// handles into both.
type Step interface {
	Kind() StepKind
}

// Pair holds the previous and next version of the same entity.
type Pair[T any] struct {
	Previous T
	Next     T
}

type CreateNamespace struct{ Namespace schema.NamespaceID }
type DropNamespace struct{ Namespace schema.NamespaceID }

type CreateEnum struct{ Enum schema.EnumID }
type DropEnum struct{ Enum schema.EnumID }

// AlterEnum adds and removes enum variants.
type AlterEnum struct {
	Enums   Pair[schema.EnumID]
	Added   []string
	Dropped []string
}

type CreateSequence struct{ Sequence schema.SequenceID }
type DropSequence struct{ Sequence schema.SequenceID }

// SequenceChanges flags the properties of a sequence that differ.
type SequenceChanges uint8

const (
	SequenceStart SequenceChanges = 1 << iota
	SequenceMin
	SequenceMax
	SequenceIncrement
	SequenceCache
	SequenceCycle
)

// Has reports whether all flags in c are set.
func (s SequenceChanges) Has(c SequenceChanges) bool { return s&c == c }

type AlterSequence struct {
	Sequences Pair[schema.SequenceID]
	Changes   SequenceChanges
}

type CreateTable struct{ Table schema.TableID }
type DropTable struct{ Table schema.TableID }

type AddColumn struct{ Column schema.ColumnID }
type DropColumn struct{ Column schema.ColumnID }

// RenameColumn is only produced from an explicit previous-name mapping.
type RenameColumn struct{ Columns Pair[schema.ColumnID] }

// AlterColumnType changes the type of a column in place. Whether the dialect
// needs an actual drop and recreate to realize it is decided at render time.
type AlterColumnType struct{ Columns Pair[schema.ColumnID] }

// DropAndRecreateColumn replaces a column whose type change has no cast. It
// is never produced by the differ directly.
type DropAndRecreateColumn struct{ Columns Pair[schema.ColumnID] }

type AlterColumnNullability struct{ Columns Pair[schema.ColumnID] }

// AlterColumnDefault covers default and auto-increment changes.
type AlterColumnDefault struct{ Columns Pair[schema.ColumnID] }

type CreateIndex struct{ Index schema.IndexID }
type DropIndex struct{ Index schema.IndexID }

type AddForeignKey struct{ ForeignKey schema.ForeignKeyID }
type DropForeignKey struct{ ForeignKey schema.ForeignKeyID }

type CreateView struct{ View schema.ViewID }
type DropView struct{ View schema.ViewID }

func (CreateNamespace) Kind() StepKind        { return KindCreateNamespace }
func (DropNamespace) Kind() StepKind          { return KindDropNamespace }
func (CreateEnum) Kind() StepKind             { return KindCreateEnum }
func (DropEnum) Kind() StepKind               { return KindDropEnum }
func (AlterEnum) Kind() StepKind              { return KindAlterEnum }
func (CreateSequence) Kind() StepKind         { return KindCreateSequence }
func (DropSequence) Kind() StepKind           { return KindDropSequence }
func (AlterSequence) Kind() StepKind          { return KindAlterSequence }
func (CreateTable) Kind() StepKind            { return KindCreateTable }
func (DropTable) Kind() StepKind              { return KindDropTable }
func (AddColumn) Kind() StepKind              { return KindAddColumn }
func (DropColumn) Kind() StepKind             { return KindDropColumn }
func (RenameColumn) Kind() StepKind           { return KindRenameColumn }
func (AlterColumnType) Kind() StepKind        { return KindAlterColumnType }
func (DropAndRecreateColumn) Kind() StepKind  { return KindDropAndRecreateColumn }
func (AlterColumnNullability) Kind() StepKind { return KindAlterColumnNullability }
func (AlterColumnDefault) Kind() StepKind     { return KindAlterColumnDefault }
func (CreateIndex) Kind() StepKind            { return KindCreateIndex }
func (DropIndex) Kind() StepKind              { return KindDropIndex }
func (AddForeignKey) Kind() StepKind          { return KindAddForeignKey }
func (DropForeignKey) Kind() StepKind         { return KindDropForeignKey }
func (CreateView) Kind() StepKind             { return KindCreateView }
func (DropView) Kind() StepKind               { return KindDropView }
