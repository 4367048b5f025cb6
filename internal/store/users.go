package store

import (
	"errors"
	"sync"

	"github.com/akshalkotian/doctorappointment/internal/models"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// Users serializes writes to the users collection. Reads go straight to the
// file.
type Users struct {
	mu         sync.Mutex
	collection *Collection[models.User]
}

func NewUsers(c *Collection[models.User]) *Users {
	return &Users{collection: c}
}

func (u *Users) ByEmail(email string) (models.User, bool) {
	return u.collection.FindByField("email", email)
}

func (u *Users) ByID(id string) (models.User, bool) {
	return u.collection.FindByField("id", id)
}

func (u *Users) All() []models.User {
	return u.collection.Load()
}

// Create appends user unless its email is already registered. Emails compare
// exactly as stored.
func (u *Users) Create(user models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	users := u.collection.Load()
	for _, existing := range users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	return u.collection.Save(append(users, user))
}

func (u *Users) UpdateProfile(id, name, phone string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	users := u.collection.Load()
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if name != "" {
			users[i].Name = name
		}
		if phone != "" {
			users[i].Phone = phone
		}
		if err := u.collection.Save(users); err != nil {
			return models.User{}, err
		}
		return users[i], nil
	}
	return models.User{}, ErrUserNotFound
}
