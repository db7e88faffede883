package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByName(name string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	Register(name, email, password, avatarURL string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
}

// UserService provides registration, credential checks and user lookups.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	return s.getUserBy("id", id)
}

// GetUserByName retrieves a single user by their unique display name.
func (s *UserService) GetUserByName(name string) (models.User, error) {
	return s.getUserBy("name", name)
}

// GetUserByEmail retrieves a single user by their email.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	return s.getUserBy("email", email)
}

// getUserBy runs an exact-match query against one of the unique user columns.
func (s *UserService) getUserBy(column, value string) (models.User, error) {
	var user models.User
	query := fmt.Sprintf(
		"SELECT id, name, email, password_hash, avatar_url, created_at FROM users WHERE %s = ?", column)
	row := s.db.QueryRow(query, value)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user with %s %q not found", column, value)
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new user, hashing their password before it is stored.
func (s *UserService) Register(name, email, password, avatarURL string) (models.User, error) {
	if _, err := s.GetUserByEmail(email); err == nil {
		return models.User{}, fmt.Errorf("email %s is already registered", email)
	}
	if _, err := s.GetUserByName(name); err == nil {
		return models.User{}, fmt.Errorf("name %s is already taken", name)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AvatarURL:    avatarURL,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, password_hash, avatar_url) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Name, user.Email, user.PasswordHash, user.AvatarURL); err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials by display name. The error is
// the same whether the user is unknown or the password is wrong.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	user, err := s.GetUserByName(username)
	if err != nil {
		return models.User{}, auth.ErrInvalidCredentials
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, auth.ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
