package option

import "gorm.io/gorm"

// QueryOption customizes a repository query.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition applies a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(o.cond.Field+" "+string(o.cond.Operator)+" ?", o.cond.Value)
}

func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

type orderOption struct {
	expr string
}

func (o orderOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.expr)
}

// WithOrder appends an ORDER BY expression.
func WithOrder(expr string) QueryOption {
	return orderOption{expr: expr}
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(o.limit)
}

func WithLimit(limit int) QueryOption {
	return limitOption{limit: limit}
}
