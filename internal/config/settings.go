// Package config resolves httpbench run parameters from flags and config files.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// settings is one section of a config file. Keys are folded so that
// connectTimeout, connect_timeout and connect-timeout name the same option.
type settings map[string]interface{}

func foldKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "", "-", "").Replace(key)
}

func newSettings(raw interface{}) (settings, error) {
	s := settings{}
	switch m := raw.(type) {
	case nil:
	case map[string]interface{}:
		for k, v := range m {
			s[foldKey(k)] = v
		}
	case map[interface{}]interface{}:
		for k, v := range m {
			s[foldKey(fmt.Sprint(k))] = v
		}
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", raw)
	}
	return s, nil
}

// value returns the first present key and the name it was found under.
func (s settings) value(keys ...string) (interface{}, string, bool) {
	for _, key := range keys {
		if v, ok := s[foldKey(key)]; ok {
			return v, key, true
		}
	}
	return nil, "", false
}

// The setters below leave dst untouched when none of the keys is present.

func (s settings) text(dst *string, keys ...string) error {
	v, _, ok := s.value(keys...)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(toText(v))
	return nil
}

func (s settings) integer(dst *int, keys ...string) error {
	v, key, ok := s.value(keys...)
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func (s settings) boolean(dst *bool, keys ...string) error {
	v, key, ok := s.value(keys...)
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case bool:
		*dst = b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = parsed
	default:
		return fmt.Errorf("%s: expected true or false, got %T", key, v)
	}
	return nil
}

func (s settings) ratio(dst *float64, keys ...string) error {
	v, key, ok := s.value(keys...)
	if !ok {
		return nil
	}
	switch f := v.(type) {
	case float64:
		*dst = f
	case int:
		*dst = float64(f)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = parsed
	default:
		return fmt.Errorf("%s: expected a number, got %T", key, v)
	}
	return nil
}

// millis reads a timeout. Bare numbers are milliseconds like the matching
// flags; strings may carry a unit ("2s", "150ms").
func (s settings) millis(dst *time.Duration, keys ...string) error {
	v, key, ok := s.value(keys...)
	if !ok {
		return nil
	}
	if str, isString := v.(string); isString {
		str = strings.TrimSpace(str)
		if _, err := strconv.Atoi(str); err != nil {
			d, err := time.ParseDuration(str)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
			return nil
		}
	}
	ms, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

// urls appends non-blank entries from a list or a single string.
func (s settings) urls(dst *[]string, keys ...string) error {
	v, key, ok := s.value(keys...)
	if !ok {
		return nil
	}
	var items []interface{}
	switch list := v.(type) {
	case []interface{}:
		items = list
	case []string:
		for _, item := range list {
			items = append(items, item)
		}
	case string:
		items = []interface{}{list}
	default:
		return fmt.Errorf("%s: expected a list of URLs, got %T", key, v)
	}
	for _, item := range items {
		if u := strings.TrimSpace(toText(item)); u != "" {
			*dst = append(*dst, u)
		}
	}
	return nil
}

func (s settings) section(key string) (settings, error) {
	v, _, ok := s.value(key)
	if !ok {
		return settings{}, nil
	}
	sub, err := newSettings(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return sub, nil
}

func toText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

var errFraction = errors.New("must be a whole number")

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errFraction
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
