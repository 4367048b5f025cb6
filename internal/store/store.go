package store

import (
	"fmt"
	"os"

	"github.com/akshalkotian/doctorappointment/internal/models"
)

const (
	CollectionUsers        = "users"
	CollectionDoctors      = "doctors"
	CollectionHospitals    = "hospitals"
	CollectionCities       = "cities"
	CollectionAppointments = "appointments"
)

// Store groups the application's collections under one data directory.
type Store struct {
	Dir          string
	Users        *Collection[models.User]
	Doctors      *Collection[models.Doctor]
	Hospitals    *Collection[models.Hospital]
	Cities       *Collection[models.City]
	Appointments *Collection[models.Appointment]
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &Store{
		Dir:          dir,
		Users:        NewCollection[models.User](dir, CollectionUsers),
		Doctors:      NewCollection[models.Doctor](dir, CollectionDoctors),
		Hospitals:    NewCollection[models.Hospital](dir, CollectionHospitals),
		Cities:       NewCollection[models.City](dir, CollectionCities),
		Appointments: NewCollection[models.Appointment](dir, CollectionAppointments),
	}, nil
}
