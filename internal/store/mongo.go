package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/docbook-api/internal/models"
)

const (
	usersCollection        = "users"
	doctorsCollection      = "doctors"
	appointmentsCollection = "appointments"
)

type Mongo struct {
	db           *mongo.Database
	users        *mongo.Collection
	doctors      *mongo.Collection
	appointments *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:           db,
		users:        db.Collection(usersCollection),
		doctors:      db.Collection(doctorsCollection),
		appointments: db.Collection(appointmentsCollection),
	}
}

func (s *Mongo) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the unique email indexes and the appointment lookup
// indexes. It is idempotent.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := s.doctors.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}); err != nil {
		return fmt.Errorf("doctors email index: %w", err)
	}
	_, err := s.appointments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "docId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("appointments indexes: %w", err)
	}
	return nil
}

// --- users ---

func (s *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Mongo) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Mongo) UpdateUserProfile(ctx context.Context, id string, upd models.UserProfileUpdate) error {
	set := bson.M{
		"name":    upd.Name,
		"phone":   upd.Phone,
		"address": upd.Address,
		"dob":     upd.Dob,
		"gender":  upd.Gender,
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}
	return s.updateByID(ctx, s.users, id, bson.M{"$set": set})
}

func (s *Mongo) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{})
}

// --- doctors ---

func (s *Mongo) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := s.doctors.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Mongo) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var d models.Doctor
	if err := s.doctors.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Mongo) GetDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.doctors.FindOne(ctx, bson.M{"email": email}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Mongo) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	cursor, err := s.doctors.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	doctors := make([]models.Doctor, 0)
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *Mongo) CountDoctors(ctx context.Context) (int64, error) {
	return s.doctors.CountDocuments(ctx, bson.M{})
}

func (s *Mongo) SetAvailability(ctx context.Context, id string, available bool) error {
	return s.updateByID(ctx, s.doctors, id, bson.M{"$set": bson.M{"available": available}})
}

func (s *Mongo) UpdateDoctorProfile(ctx context.Context, id string, upd models.DoctorProfileUpdate) error {
	set := bson.M{}
	if upd.Fees != nil {
		set["fees"] = *upd.Fees
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Available != nil {
		set["available"] = *upd.Available
	}
	if upd.About != nil {
		set["about"] = *upd.About
	}
	if len(set) == 0 {
		_, err := s.GetDoctor(ctx, id)
		return err
	}
	return s.updateByID(ctx, s.doctors, id, bson.M{"$set": set})
}

func (s *Mongo) ReserveSlot(ctx context.Context, id, date, tm string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	field := "slots_booked." + date

	// The filter only matches while the slot is still free, so two racing
	// bookings cannot both push the same time.
	res, err := s.doctors.UpdateOne(ctx,
		bson.M{"_id": oid, "available": true, field: bson.M{"$ne": tm}},
		bson.M{"$push": bson.M{field: tm}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	d, err := s.GetDoctor(ctx, id)
	if err != nil {
		return err
	}
	if !d.Available {
		return ErrDoctorUnavailable
	}
	return ErrSlotTaken
}

func (s *Mongo) ReleaseSlot(ctx context.Context, id, date, tm string) error {
	return s.updateByID(ctx, s.doctors, id, bson.M{"$pull": bson.M{"slots_booked." + date: tm}})
}

// --- appointments ---

func (s *Mongo) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := s.appointments.InsertOne(ctx, a)
	return err
}

func (s *Mongo) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var a models.Appointment
	if err := s.appointments.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Mongo) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.DocID != "" {
		filter["docId"] = f.DocID
	}

	cursor, err := s.appointments.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *Mongo) CountAppointments(ctx context.Context) (int64, error) {
	return s.appointments.CountDocuments(ctx, bson.M{})
}

func (s *Mongo) MarkCancelled(ctx context.Context, id string) error {
	return s.updateByID(ctx, s.appointments, id, bson.M{"$set": bson.M{"cancelled": true}})
}

func (s *Mongo) MarkCompleted(ctx context.Context, id string) error {
	return s.updateByID(ctx, s.appointments, id, bson.M{"$set": bson.M{"isCompleted": true}})
}

func (s *Mongo) SetOrderID(ctx context.Context, id, orderID string) error {
	return s.updateByID(ctx, s.appointments, id, bson.M{"$set": bson.M{"orderId": orderID}})
}

func (s *Mongo) MarkPaid(ctx context.Context, id, paymentID string) error {
	return s.updateByID(ctx, s.appointments, id, bson.M{"$set": bson.M{"payment": true, "paymentId": paymentID}})
}

func (s *Mongo) updateByID(ctx context.Context, coll *mongo.Collection, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*Mongo)(nil)
