package repository

import "errors"

var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrUserExists   = errors.New("пользователь уже существует")
	ErrUnknownScope = errors.New("право не найдено")
)
