package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parcel-notifier/internal/config"
	"parcel-notifier/internal/models"

	"go.uber.org/zap"
)

// Заголовок Accept, при котором PostgREST возвращает один объект
// и отвечает 406, если строк не ровно одна.
const pgrstSingleObject = "application/vnd.pgrst.object+json"

// HTTPClient интерфейс для *http.Client для мокирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PostgRESTError - тело ошибки PostgREST.
type PostgRESTError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *PostgRESTError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("profile store returned status %d", e.StatusCode)
}

type postgrestFactory struct {
	cfg    config.SupabaseConfig
	table  string
	client HTTPClient
	logger *zap.Logger
}

// NewPostgRESTFactory создает фабрику клиентов PostgREST (Supabase REST API).
// Конфигурация проверяется при каждом вызове NewProfileRepository, а не здесь.
func NewPostgRESTFactory(cfg config.SupabaseConfig, table string, client HTTPClient, logger *zap.Logger) ProfileRepositoryFactory {
	if cfg.Missing() != "" {
		logger.Warn("Конфигурация Supabase неполная, запросы будут завершаться ошибкой конфигурации",
			zap.String("missing", cfg.Missing()))
	}
	return &postgrestFactory{
		cfg:    cfg,
		table:  table,
		client: client,
		logger: logger.Named("postgrest_profiles"),
	}
}

func (f *postgrestFactory) NewProfileRepository() (ProfileRepository, error) {
	if missing := f.cfg.Missing(); missing != "" {
		return nil, models.ConfigurationFaultf("configuration error: required environment variable %s is not set", missing)
	}
	base, err := url.Parse(strings.TrimRight(f.cfg.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, models.ConfigurationFaultf("configuration error: SUPABASE_URL is not a valid URL")
	}
	return &postgrestProfileRepository{
		endpoint: base.JoinPath("rest", "v1", f.table),
		apiKey:   f.cfg.ServiceRoleKey,
		client:   f.client,
		logger:   f.logger,
	}, nil
}

type postgrestProfileRepository struct {
	endpoint *url.URL
	apiKey   string
	client   HTTPClient
	logger   *zap.Logger
}

func (r *postgrestProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	log := r.logger.With(zap.String("profile_id", id))

	target := *r.endpoint
	target.RawQuery = url.Values{
		"select": {"fcm_token"},
		"id":     {"eq." + id},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", pgrstSingleObject)

	start := time.Now()
	resp, err := r.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Error("Ошибка запроса к PostgREST", zap.Error(err), zap.Duration("duration", duration))
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}
	log.Debug("Ответ PostgREST получен", zap.Int("status_code", resp.StatusCode), zap.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pgErr := &PostgRESTError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, pgErr); jsonErr != nil {
			log.Warn("Тело ошибки PostgREST не JSON", zap.Error(jsonErr))
		}
		log.Warn("PostgREST вернул ошибку",
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", pgErr.Code),
			zap.String("message", pgErr.Message),
		)
		return nil, pgErr
	}

	var profile *models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	return profile, nil
}
