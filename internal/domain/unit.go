package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnitType string

const (
	UnitHome       UnitType = "HOME"
	UnitFlat       UnitType = "FLAT"
	UnitApartments UnitType = "APARTMENTS"
)

// Unit is a rentable entity. Immutable after creation as far as the booking
// core is concerned.
type Unit struct {
	ID            int64
	OwnerID       int64
	Title         string
	Description   string
	Type          UnitType
	CostPerDay    decimal.Decimal
	NumberOfRooms int
	Floor         int
	CreatedAt     time.Time
}

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// UnitFilter narrows a unit search. Nil fields are ignored. StartDate and
// EndDate restrict results to units available for that range.
type UnitFilter struct {
	Type          *UnitType
	MinCost       *decimal.Decimal
	MaxCost       *decimal.Decimal
	NumberOfRooms *int
	Floor         *int
	StartDate     time.Time
	EndDate       time.Time
	Page          int
	Size          int
}

type UnitPage struct {
	Items []Unit
	Total int64
	Page  int
	Size  int
}
