package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Doctor struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name        string              `bson:"name" json:"name"`
	Email       string              `bson:"email,omitempty" json:"email,omitempty"`
	Password    string              `bson:"password,omitempty" json:"-"`
	Image       string              `bson:"image" json:"image"`
	Speciality  string              `bson:"speciality" json:"speciality"`
	Degree      string              `bson:"degree" json:"degree"`
	Experience  string              `bson:"experience" json:"experience"`
	About       string              `bson:"about" json:"about"`
	Available   bool                `bson:"available" json:"available"`
	Fees        float64             `bson:"fees" json:"fees"`
	Address     Address             `bson:"address" json:"address"`
	Date        int64               `bson:"date" json:"date"`
	SlotsBooked map[string][]string `bson:"slots_booked,omitempty" json:"slots_booked,omitempty"`
}

// Snapshot is the copy embedded into an appointment at booking time. The
// slot map and credentials stay on the live document only.
func (d Doctor) Snapshot() Doctor {
	d.Password = ""
	d.SlotsBooked = nil
	return d
}

// Public strips what patients must not see.
func (d Doctor) Public() Doctor {
	d.Password = ""
	d.Email = ""
	return d
}

type DoctorProfileUpdate struct {
	Fees      *float64
	Address   *Address
	Available *bool
	About     *string
}
