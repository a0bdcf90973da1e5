package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// applyEnv overrides every Config field carrying an env tag whose variable is
// set. All malformed variables are reported together.
func applyEnv(cfg *Config) error {
	var errs []error
	walkEnv(reflect.ValueOf(cfg).Elem(), &errs)
	return errors.Join(errs...)
}

func walkEnv(section reflect.Value, errs *[]error) {
	for i := 0; i < section.NumField(); i++ {
		field := section.Field(i)
		if field.Kind() == reflect.Struct {
			walkEnv(field, errs)
			continue
		}

		name := section.Type().Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := assignEnv(field, raw); err != nil {
			*errs = append(*errs, fmt.Errorf("environment variable %s=%q: %w", name, raw, err))
		}
	}
}

// assignEnv parses raw into field. Lists are comma separated and blank
// entries are dropped, e.g. SERVER_CORS_ORIGINS=http://a,http://b
func assignEnv(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.New("expected an integer")
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return errors.New("expected true or false")
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("list of %s is not supported", field.Type().Elem())
		}
		items := []string{}
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("%s settings cannot be read from the environment", field.Kind())
	}
	return nil
}
