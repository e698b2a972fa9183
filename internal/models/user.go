package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	DefaultPhone  = "0000000000"
	DefaultNotSet = "Not Selected"
	DefaultAvatar = ""

	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

type Address struct {
	Line1 string `bson:"line1" json:"line1"`
	Line2 string `bson:"line2" json:"line2"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"` // Hide from JSON responses
	Image    string             `bson:"image" json:"image"`
	Phone    string             `bson:"phone" json:"phone"`
	Address  Address            `bson:"address" json:"address"`
	Gender   string             `bson:"gender" json:"gender"`
	Dob      string             `bson:"dob" json:"dob"`
}

// NewUser fills the profile defaults a freshly registered account starts with.
func NewUser(name, email, passwordHash string) User {
	return User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Email:    email,
		Password: passwordHash,
		Image:    DefaultAvatar,
		Phone:    DefaultPhone,
		Gender:   DefaultNotSet,
		Dob:      DefaultNotSet,
	}
}

// Snapshot is the copy embedded into an appointment at booking time.
func (u User) Snapshot() User {
	u.Password = ""
	return u
}

type UserProfileUpdate struct {
	Name    string
	Phone   string
	Address Address
	Dob     string
	Gender  string
	Image   string // empty keeps the current image
}
