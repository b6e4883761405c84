package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcel-notifier/internal/logger"
	"parcel-notifier/internal/models"
	"parcel-notifier/internal/repository"

	"go.uber.org/zap"
)

// Dispatcher обрабатывает одно событие вставки посылки:
// разбор тела -> поиск токена -> отправка уведомления.
// Повторов нет, повторная доставка одного события приводит к повторному уведомлению.
type Dispatcher struct {
	profiles  repository.ProfileRepositoryFactory
	messaging *MessagingState
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDispatcher создает диспетчер. timeout ограничивает каждый сетевой вызов отдельно.
func NewDispatcher(profiles repository.ProfileRepositoryFactory, messaging *MessagingState, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if !messaging.Ready() {
		log.Warn("Диспетчер запущен без клиента FCM, все запросы будут завершаться ошибкой",
			zap.Error(messaging.InitError()))
	}
	return &Dispatcher{
		profiles:  profiles,
		messaging: messaging,
		timeout:   timeout,
		logger:    log.Named("dispatcher"),
	}
}

// Dispatch обрабатывает тело вебхука и возвращает id сообщения провайдера.
// Любая ошибка - *models.Fault, текст которого можно отдавать клиенту.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (string, error) {
	messageID, err := d.dispatch(ctx, body)
	dispatchTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		d.logger.Error("Ошибка обработки события посылки",
			zap.Error(err),
			zap.String("outcome", outcomeLabel(err)),
		)
		return "", err
	}
	return messageID, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, body []byte) (string, error) {
	profiles, err := d.profiles.NewProfileRepository()
	if err != nil {
		return "", models.NewFault(models.ErrConfigurationFault, err)
	}

	record, err := ParseParcelEvent(body)
	if err != nil {
		return "", err
	}
	log := d.logger.With(
		zap.String("parcel_id", record.ID.String()),
		zap.String("student_id", record.StudentID.String()),
	)
	log.Info("Получена новая посылка", zap.String("locker_number", record.LockerNumber.String()))

	// Проверяем клиента до похода в БД: без него запрос все равно не выполнить
	sender, err := d.messaging.Sender()
	if err != nil {
		return "", err
	}

	token, err := d.lookupToken(ctx, profiles, record.StudentID.String())
	if err != nil {
		return "", err
	}
	log.Info("Найден токен устройства", zap.String("token", logger.TokenPrefix(token)))

	msg := models.NewParcelArrivedMessage(*record, token)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	start := time.Now()
	messageID, err := sender.Send(sendCtx, msg)
	sendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", models.NewFault(models.ErrDeliveryFault, d.timeoutError("notification send", err))
	}

	log.Info("Уведомление успешно отправлено", zap.String("message_id", messageID))
	return messageID, nil
}

func (d *Dispatcher) lookupToken(ctx context.Context, profiles repository.ProfileRepository, studentID string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	profile, err := profiles.GetProfileByID(lookupCtx, studentID)
	lookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", models.NewFault(models.ErrLookupFault, d.timeoutError("profile lookup", err))
	}
	if profile.Token() == "" {
		return "", models.NewFault(models.ErrLookupFault, fmt.Errorf("No FCM token found for student %s", studentID))
	}
	return profile.Token(), nil
}

// timeoutError заменяет голый context.DeadlineExceeded на понятное сообщение.
// Остальные ошибки возвращаются как есть.
func (d *Dispatcher) timeoutError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s: %w", op, d.timeout, err)
	}
	return err
}

// ParseParcelEvent извлекает запись посылки из тела вебхука.
func ParseParcelEvent(body []byte) (*models.ParcelRecord, error) {
	var event models.InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, models.PayloadFaultf("bad payload: invalid JSON: %v", err)
	}
	raw := bytes.TrimSpace(event.Record)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, models.PayloadFaultf("bad payload: missing record")
	}

	var record models.ParcelRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, models.PayloadFaultf("bad payload: invalid record: %v", err)
	}
	if record.StudentID == "" {
		return nil, models.PayloadFaultf("bad payload: record.studentId is missing")
	}
	if record.LockerNumber == "" {
		return nil, models.PayloadFaultf("bad payload: record.lockerNumber is missing")
	}
	return &record, nil
}
