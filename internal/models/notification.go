package models

import "fmt"

const (
	// ParcelArrivedTitle - заголовок уведомления о прибытии посылки.
	ParcelArrivedTitle = "Your Parcel Has Arrived! 📦"
	parcelArrivedBody  = "Your parcel is ready for collection at Locker %s."
)

// PushNotification содержит видимые части push-сообщения.
type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NotificationMessage - сообщение для отправки одному устройству.
type NotificationMessage struct {
	Notification PushNotification  `json:"notification"`
	Token        string            `json:"token"`
	Data         map[string]string `json:"data,omitempty"`
}

// NewParcelArrivedMessage собирает уведомление для записи о посылке.
func NewParcelArrivedMessage(record ParcelRecord, token string) *NotificationMessage {
	return &NotificationMessage{
		Notification: PushNotification{
			Title: ParcelArrivedTitle,
			Body:  fmt.Sprintf(parcelArrivedBody, record.LockerNumber),
		},
		Token: token,
		Data: map[string]string{
			"parcel_id":     record.ID.String(),
			"locker_number": record.LockerNumber.String(),
		},
	}
}

// DispatchResult - тело ответа вебхуку.
type DispatchResult struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewSuccessResult оборачивает ответ провайдера (message id).
func NewSuccessResult(providerResponse string) DispatchResult {
	return DispatchResult{Success: true, Response: providerResponse}
}

// NewFailureResult возвращает результат с текстом ошибки без внутренних деталей.
func NewFailureResult(err error) DispatchResult {
	return DispatchResult{Success: false, Error: err.Error()}
}
