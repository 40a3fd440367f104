package entity

import (
	"strings"

	"github.com/google/uuid"
)

type PackageName string

const (
	PackageStandard  PackageName = "Standard"
	PackageSignature PackageName = "Signature"
	PackageExtended  PackageName = "Extended"
)

// Code is the lowercase counterpart used in URLs and requests.
func (n PackageName) Code() string {
	return strings.ToLower(string(n))
}

func (n PackageName) Valid() bool {
	switch n {
	case PackageStandard, PackageSignature, PackageExtended:
		return true
	}
	return false
}

type Package struct {
	Base
	HouseID       uuid.UUID   `db:"house_id"`
	Name          PackageName `db:"name"`
	Code          string      `db:"code"`
	PricePerNight float64     `db:"price_per_night"`
	MinNights     int         `db:"min_nights"`
	Perks         []string    `db:"perks"`
	IsPopular     bool        `db:"is_popular"`
}
