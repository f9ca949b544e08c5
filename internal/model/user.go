package model

import "time"

// User : запись пользователя. Email и Phone хранятся в БД в зашифрованном виде,
// PasswordHash содержит argon2id-хэш (или bcrypt для старых записей).
type User struct {
	ID           int64     `db:"id" json:"id"`
	UUID         string    `db:"uuid" json:"uuid"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewUser : данные для создания пользователя вместе с его правами
type NewUser struct {
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	Scopes       []string
}
