package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InboundEvent - тело вебхука, которое присылает платформа БД при вставке строки.
// Нас интересует только record, остальные поля (type, table, schema, old_record) игнорируются.
type InboundEvent struct {
	Type   string          `json:"type,omitempty"`
	Table  string          `json:"table,omitempty"`
	Record json.RawMessage `json:"record"`
}

// ParcelRecord - вставленная запись о посылке.
type ParcelRecord struct {
	ID           FlexString `json:"id"`
	StudentID    FlexString `json:"studentId"`
	LockerNumber FlexString `json:"lockerNumber"`
}

// FlexString принимает из JSON как строку, так и число (id в таблицах бывают int8 и uuid).
type FlexString string

// UnmarshalJSON реализует json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Profile - результат поиска профиля студента. FCMToken == nil, если токен не сохранен.
type Profile struct {
	FCMToken *string `json:"fcm_token"`
}

// Token возвращает токен устройства или пустую строку.
func (p *Profile) Token() string {
	if p == nil || p.FCMToken == nil {
		return ""
	}
	return *p.FCMToken
}
