package models

import (
	"errors"
	"fmt"
)

// Классы ошибок диспетчера. Клиенту они не видны: различаются только текстом сообщения.
var (
	ErrConfigurationFault = errors.New("configuration fault")
	ErrPayloadFault       = errors.New("payload fault")
	ErrLookupFault        = errors.New("lookup fault")
	ErrDeliveryFault      = errors.New("delivery fault")
)

var (
	// ErrProviderNotInitialized возвращается, если клиент FCM не удалось создать при старте.
	ErrProviderNotInitialized = errors.New("messaging client not initialized")
	// ErrMultipleOrNoRows - выборка одной строки вернула 0 или больше одной строки.
	ErrMultipleOrNoRows = errors.New("JSON object requested, multiple (or no) rows returned")
)

// Fault связывает ошибку с ее классом. Error() отдает текст исходной ошибки без изменений.
type Fault struct {
	Kind error
	Err  error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return f.Kind.Error()
	}
	return f.Err.Error()
}

func (f *Fault) Unwrap() []error {
	return []error{f.Kind, f.Err}
}

// NewFault оборачивает err в класс kind. Уже классифицированные ошибки не перекладываются.
func NewFault(kind, err error) error {
	var existing *Fault
	if errors.As(err, &existing) {
		return err
	}
	return &Fault{Kind: kind, Err: err}
}

// ConfigurationFaultf - ошибка конфигурации с форматированным сообщением.
func ConfigurationFaultf(format string, args ...any) error {
	return &Fault{Kind: ErrConfigurationFault, Err: fmt.Errorf(format, args...)}
}

// PayloadFaultf - ошибка разбора тела запроса.
func PayloadFaultf(format string, args ...any) error {
	return &Fault{Kind: ErrPayloadFault, Err: fmt.Errorf(format, args...)}
}

// FaultKind возвращает класс ошибки или nil, если ошибка не классифицирована.
func FaultKind(err error) error {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return nil
}
