package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the slice of a users document this service reads. Vouchers stays raw because
// older documents store it as an array of ids or an array of {voucherId, quantity}.
type User struct {
	ID       primitive.ObjectID `bson:"_id"`
	Vouchers bson.RawValue      `bson:"vouchers,omitempty"`
}

type Location struct {
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
}

// OrderTracking is one checkpoint in an order's delivery history.
type OrderTracking struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	OrderID   primitive.ObjectID `json:"orderId" bson:"orderId"`
	Location  Location           `json:"location" bson:"location"`
	Status    string             `json:"status" bson:"status"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateTrackingRequest struct {
	OrderID   string     `json:"orderId" binding:"required"`
	Lat       *float64   `json:"lat" binding:"required"`
	Lng       *float64   `json:"lng" binding:"required"`
	Address   string     `json:"address"`
	Status    string     `json:"status" binding:"required"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type UpdateTrackingRequest struct {
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
	Address string   `json:"address"`
	Status  string   `json:"status" binding:"required"`
}

type TrackingResponse struct {
	ID        string    `json:"_id"`
	OrderID   string    `json:"orderId"`
	Location  Location  `json:"location"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeleteTrackingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VoucherHoldingsResponse struct {
	UserID   string         `json:"userId"`
	Vouchers map[string]int `json:"vouchers"`
}
