package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"task-tracker/internal/model"
	"task-tracker/internal/ports"
)

var (
	ErrValidation = errors.New("некорректные данные")

	// ErrCurrentPasswordMismatch : при смене пароля текущий пароль указан неверно.
	// Отличается от security.ErrInvalidCredentials: access-токен при этом валиден.
	ErrCurrentPasswordMismatch = errors.New("текущий пароль указан неверно")
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 256
)

type UserService struct {
	userRepository ports.UserRepository
	hasher         ports.PasswordHasher
	cipher         ports.FieldCipher
	sessions       ports.SessionRepository
}

func NewUserService(
	userRepository ports.UserRepository,
	hasher ports.PasswordHasher,
	cipher ports.FieldCipher,
	sessions ports.SessionRepository,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		hasher:         hasher,
		cipher:         cipher,
		sessions:       sessions,
	}
}

// CreateUser создаёт пользователя: пароль хэшируется,
// email и телефон шифруются до записи в БД.
func (s *UserService) CreateUser(ctx context.Context, username, password, email, phone string, scopes []string) (*model.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("[UserService] %w: %w", ErrValidation, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w: %w", ErrValidation, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}
	encryptedEmail, err := s.encryptOptional(email)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось зашифровать email: %w", err)
	}
	encryptedPhone, err := s.encryptOptional(phone)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось зашифровать телефон: %w", err)
	}

	created, err := s.userRepository.CreateUser(ctx, &model.NewUser{
		Username:     username,
		PasswordHash: hash,
		Email:        encryptedEmail,
		Phone:        encryptedPhone,
		Scopes:       scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	created.Email = email
	created.Phone = phone
	return created, nil
}

// GetUser возвращает пользователя с расшифрованными email и телефоном
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	if user.Email, err = s.decryptOptional(user.Email); err != nil {
		return nil, fmt.Errorf("[UserService] email пользователя %d: %w", id, err)
	}
	if user.Phone, err = s.decryptOptional(user.Phone); err != nil {
		return nil, fmt.Errorf("[UserService] телефон пользователя %d: %w", id, err)
	}
	return user, nil
}

// UpdatePassword меняет пароль и завершает все сессии пользователя.
// Возвращает количество завершённых сессий.
func (s *UserService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (int, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("[UserService] %w", err)
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return 0, ErrCurrentPasswordMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return 0, fmt.Errorf("[UserService] %w: %w", ErrValidation, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return 0, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}
	if err := s.userRepository.UpdatePassword(ctx, userID, hash); err != nil {
		return 0, fmt.Errorf("[UserService] не удалось обновить пароль: %w", err)
	}

	revoked, err := s.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return revoked, fmt.Errorf("[UserService] пароль изменён, но сессии не завершены: %w", err)
	}
	return revoked, nil
}

func (s *UserService) encryptOptional(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return s.cipher.Encrypt(value)
}

func (s *UserService) decryptOptional(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return s.cipher.Decrypt(value)
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return fmt.Errorf("логин должен быть от %d до %d символов", minUsernameLength, maxUsernameLength)
	}
	for _, c := range username {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '.' && c != '-' {
			return fmt.Errorf("логин может содержать только буквы, цифры и символы _ . -")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("пароль должен содержать минимум %d символов", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("пароль должен быть не длиннее %d символов", maxPasswordLength)
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}
