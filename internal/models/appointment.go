package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      string             `bson:"userId" json:"userId"`
	DocID       string             `bson:"docId" json:"docId"`
	SlotDate    string             `bson:"slotDate" json:"slotDate"`
	SlotTime    string             `bson:"slotTime" json:"slotTime"`
	UserData    User               `bson:"userData" json:"userData"`
	DocData     Doctor             `bson:"docData" json:"docData"`
	Amount      float64            `bson:"amount" json:"amount"`
	Date        int64              `bson:"date" json:"date"`
	Cancelled   bool               `bson:"cancelled" json:"cancelled"`
	Payment     bool               `bson:"payment" json:"payment"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
	PaymentID   string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	OrderID     string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
}

type AppointmentFilter struct {
	UserID string
	DocID  string
}
