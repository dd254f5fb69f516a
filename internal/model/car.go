package model

import "time"

// ListingType says whether a car is offered for rent or for sale.
type ListingType string

const (
    ListingRent ListingType = "rent"
    ListingSale ListingType = "sale"
)

// Valid reports whether t is one of the known listing types.
func (t ListingType) Valid() bool {
    return t == ListingRent || t == ListingSale
}

// Car is a vehicle listed by an owner.  It corresponds to a row in the
// `cars` table.  Available starts true and is flipped to false only by
// the approval of a deal request; nothing sets it back.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – user who listed the car.
//  Title           – short headline shown in listings.
//  Description     – optional free text.
//  Price           – asking price in currency units, two decimals.
//  Brand           – manufacturer name.
//  EngineCapacity  – engine displacement.
//  CreatedAt       – set once when the row is inserted.
//  Color           – exterior colour.
//  YearManufacture – production year.
//  BodyType        – sedan, hatchback and so on.
//  Image           – object key in the image store (nullable).
//  Available       – eligible for listing and deal submission.
//  Type            – rent or sale.
type Car struct {
    ID              uint64        `gorm:"primaryKey"`
    OwnerID         uint64        `gorm:"not null;index"`
    Owner           *User         `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
    Title           string        `gorm:"size:500;not null"`
    Description     *string       `gorm:"type:text"`
    Price           float64       `gorm:"type:decimal(10,2);not null"`
    Brand           string        `gorm:"size:100;not null"`
    EngineCapacity  float64       `gorm:"not null"`
    CreatedAt       time.Time     `gorm:"autoCreateTime;index"`
    Color           string        `gorm:"size:100;not null"`
    YearManufacture uint16        `gorm:"not null"`
    BodyType        string        `gorm:"size:100;not null"`
    Image           *string       `gorm:"size:255"`
    Available       bool          `gorm:"not null;default:true;index"`
    Type            ListingType   `gorm:"size:20;not null"`
}
