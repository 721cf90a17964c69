package database

import (
	"github.com/huandu/go-sqlbuilder"
)

// Flavor is the sqlbuilder dialect used for every statement in this module.
var Flavor = sqlbuilder.SQLite

type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{
		Flavor.NewInsertBuilder(),
	}
}

type DeleteBuilder struct {
	*sqlbuilder.DeleteBuilder
}

func NewDeleteBuilder() *DeleteBuilder {
	return &DeleteBuilder{Flavor.NewDeleteBuilder()}
}

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{Flavor.NewSelectBuilder()}
}

// Chunk splits n rows into [start, end) windows of at most size rows, used to
// keep multi-row inserts below SQLite's bound parameter limit.
func Chunk(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var windows [][2]int
	for i := 0; i < n; i += size {
		end := i + size
		if end > n {
			end = n
		}
		windows = append(windows, [2]int{i, end})
	}
	return windows
}
