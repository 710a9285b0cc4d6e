package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerでステータスに変換するエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 上流の失敗はまとめて502
func upstreamError(message string) error {
	return NewHTTPError(http.StatusBadGateway, message)
}
