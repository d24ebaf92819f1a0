package labels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-extensions/internal/mixin"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// Setting keys, before the mixin group prefix is applied.
const (
	KeyAlias     = "alias"
	KeyRoom      = "room"
	KeyFavourite = "favourite"
)

// maxLabelLength bounds alias and room values.
const maxLabelLength = 64

var (
	// ErrUnknownSetting is returned for keys the labels mixin does not own.
	ErrUnknownSetting = errors.New("labels: unknown setting")

	// ErrInvalidValue is returned when a value has the wrong type or shape.
	ErrInvalidValue = errors.New("labels: invalid value")
)

// Labels adds a friendly alias, a room and a favourite flag to any device.
// Values live in the device's storage bucket.
type Labels struct {
	store sdk.Storage
}

var _ mixin.MixinSettings = (*Labels)(nil)

// New creates the labels mixin over store.
func New(store sdk.Storage) *Labels {
	return &Labels{store: store}
}

// GetMixinSettings returns alias, room and favourite in that order.
func (l *Labels) GetMixinSettings(ctx context.Context) ([]sdk.Setting, error) {
	alias, err := l.get(ctx, KeyAlias)
	if err != nil {
		return nil, err
	}
	room, err := l.get(ctx, KeyRoom)
	if err != nil {
		return nil, err
	}
	favourite, err := l.get(ctx, KeyFavourite)
	if err != nil {
		return nil, err
	}

	return []sdk.Setting{
		{
			Key:         KeyAlias,
			Title:       "Alias",
			Description: "Name shown in place of the device name.",
			Type:        sdk.SettingTypeString,
			Value:       alias,
			Placeholder: "Reading Lamp",
		},
		{
			Key:         KeyRoom,
			Title:       "Room",
			Description: "Room the device is shown under.",
			Type:        sdk.SettingTypeString,
			Value:       room,
			Placeholder: "Living Room",
		},
		{
			Key:   KeyFavourite,
			Title: "Favourite",
			Type:  sdk.SettingTypeBoolean,
			Value: favourite == "true",
		},
	}, nil
}

// PutMixinSetting validates and stores one value. An empty alias or room
// clears it.
func (l *Labels) PutMixinSetting(ctx context.Context, key string, value any) error {
	switch key {
	case KeyAlias, KeyRoom:
		s, err := labelValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if s == "" {
			return l.store.Remove(ctx, key)
		}
		return l.store.Set(ctx, key, s)

	case KeyFavourite:
		b, err := boolValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if !b {
			return l.store.Remove(ctx, key)
		}
		return l.store.Set(ctx, key, "true")

	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
}

func (l *Labels) get(ctx context.Context, key string) (string, error) {
	v, _, err := l.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

func labelValue(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: want string, got %T", ErrInvalidValue, value)
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLabelLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidValue, maxLabelLength)
	}
	return s, nil
}

func boolValue(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: want boolean, got %v", ErrInvalidValue, value)
}
