package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"parcel-notifier/internal/config"
	"parcel-notifier/internal/logger"
	"parcel-notifier/internal/models"

	firebase "firebase.google.com/go/v4"
	fcm "firebase.google.com/go/v4/messaging"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const googleTokenURI = "https://oauth2.googleapis.com/token"

// NotificationSender отправляет одно push-уведомление и возвращает id сообщения провайдера.
type NotificationSender interface {
	Send(ctx context.Context, msg *models.NotificationMessage) (string, error)
}

// fcmClient - часть *messaging.Client, которая нужна отправителю.
type fcmClient interface {
	Send(ctx context.Context, message *fcm.Message) (string, error)
	SendDryRun(ctx context.Context, message *fcm.Message) (string, error)
}

type fcmSender struct {
	client fcmClient
	dryRun bool
	logger *zap.Logger
}

// NormalizePrivateKey превращает экранированные "\n" из переменной окружения обратно в переводы строк.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// serviceAccountJSON собирает JSON ключа сервис-аккаунта из трех значений конфигурации.
func serviceAccountJSON(cfg config.FCMConfig) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"private_key":  NormalizePrivateKey(cfg.PrivateKey),
		"client_email": cfg.ClientEmail,
		"token_uri":    googleTokenURI,
	})
}

// NewFCMSender создает отправитель FCM из учетных данных сервис-аккаунта.
func NewFCMSender(ctx context.Context, cfg config.FCMConfig, log *zap.Logger) (NotificationSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Firebase разбирает ключ только при первом запросе токена, поэтому проверяем его здесь
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(NormalizePrivateKey(cfg.PrivateKey))); err != nil {
		return nil, fmt.Errorf("ошибка разбора FIREBASE_PRIVATE_KEY: %w", err)
	}
	credentials, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки учетных данных Firebase: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения FCM Messaging client: %w", err)
	}

	log.Info("FCM Sender успешно инициализирован",
		zap.String("project_id", cfg.ProjectID),
		zap.String("client_email", cfg.ClientEmail),
		zap.Bool("dry_run", cfg.DryRun),
	)
	return newFCMSenderWithClient(client, cfg.DryRun, log), nil
}

func newFCMSenderWithClient(client fcmClient, dryRun bool, log *zap.Logger) *fcmSender {
	return &fcmSender{
		client: client,
		dryRun: dryRun,
		logger: log.Named("fcm_sender"),
	}
}

func (s *fcmSender) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	message := &fcm.Message{
		Token: msg.Token,
		Notification: &fcm.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Data: msg.Data,
		Android: &fcm.AndroidConfig{
			Priority: "high",
		},
	}

	log := s.logger.With(zap.String("token", logger.TokenPrefix(msg.Token)), zap.Bool("dry_run", s.dryRun))
	var (
		messageID string
		err       error
	)
	if s.dryRun {
		messageID, err = s.client.SendDryRun(ctx, message)
	} else {
		messageID, err = s.client.Send(ctx, message)
	}
	if err != nil {
		// Классификацию ошибок FCM только логируем: клиенту уходит общий ответ
		log.Error("Ошибка отправки FCM",
			zap.Error(err),
			zap.Bool("unregistered", fcm.IsUnregistered(err)),
			zap.Bool("invalid_argument", fcm.IsInvalidArgument(err)),
			zap.Bool("quota_exceeded", fcm.IsQuotaExceeded(err)),
		)
		return "", err
	}

	log.Info("FCM сообщение отправлено", zap.String("message_id", messageID))
	return messageID, nil
}
