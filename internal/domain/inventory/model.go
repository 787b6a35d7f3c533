package inventory

import "time"

type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

type Movement struct {
	ID        int64
	ProductID int64
	Kind      MoveType
	Qty       int64
	CreatedAt time.Time
	Note      string
}
