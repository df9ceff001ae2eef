package models

import "go.mongodb.org/mongo-driver/bson"

// Document is a schemaless record stored and returned verbatim for a caller.
type Document = bson.M

// Board column categories.
const (
	CategoryTodo       = "todo"
	CategoryInProgress = "inprogress"
	CategoryDone       = "done"
)

// Categories lists the board columns in display order.
var Categories = []string{CategoryTodo, CategoryInProgress, CategoryDone}

// unknownCategoryRank sorts any unexpected category after the board columns.
const unknownCategoryRank = 4

// CategoryRank returns the display rank of a category, starting at 1.
func CategoryRank(category string) int {
	for i, c := range Categories {
		if c == category {
			return i + 1
		}
	}
	return unknownCategoryRank
}

// ValidCategory reports whether the value is one of the board columns.
func ValidCategory(category string) bool {
	return CategoryRank(category) != unknownCategoryRank
}

// TaskGroup is one board column together with its tasks in display order.
type TaskGroup struct {
	Category string     `bson:"category" json:"category"`
	Tasks    []Document `bson:"tasks" json:"tasks"`
}
