package api

import (
	"errors"
	"fmt"
)

// NetworkError сервер недоступен или соединение оборвалось
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RejectionError сервер отклонил запрос. Message передается пользователю как есть.
type RejectionError struct {
	Message string
	Status  int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

// IsNetworkError проверяет, вызвана ли ошибка недоступностью сервера
func IsNetworkError(err error) bool {
	var nErr *NetworkError
	return errors.As(err, &nErr)
}

// RejectionMessage возвращает сообщение сервера, если ошибка является отказом
func RejectionMessage(err error) (string, bool) {
	var rErr *RejectionError
	if errors.As(err, &rErr) {
		return rErr.Message, true
	}
	return "", false
}
