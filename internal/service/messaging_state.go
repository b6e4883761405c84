package service

import (
	"parcel-notifier/internal/models"
)

// MessagingState хранит результат однократной инициализации клиента провайдера.
// Неизменяем после создания и безопасен для конкурентного чтения.
type MessagingState struct {
	sender  NotificationSender
	initErr error
}

// NewMessagingState фиксирует итог инициализации. При initErr != nil или sender == nil
// процесс работает в деградированном режиме.
func NewMessagingState(sender NotificationSender, initErr error) *MessagingState {
	if sender == nil && initErr == nil {
		initErr = models.ErrProviderNotInitialized
	}
	if initErr != nil {
		sender = nil
	}
	return &MessagingState{sender: sender, initErr: initErr}
}

// Ready сообщает, можно ли отправлять уведомления.
func (s *MessagingState) Ready() bool {
	return s != nil && s.sender != nil
}

// InitError возвращает ошибку инициализации (nil, если клиент готов).
func (s *MessagingState) InitError() error {
	if s == nil {
		return models.ErrProviderNotInitialized
	}
	return s.initErr
}

// Sender возвращает отправителя или ConfigurationFault, если клиент не инициализирован.
func (s *MessagingState) Sender() (NotificationSender, error) {
	if !s.Ready() {
		return nil, models.NewFault(models.ErrConfigurationFault, models.ErrProviderNotInitialized)
	}
	return s.sender, nil
}
