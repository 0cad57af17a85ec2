package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// EnvError reports an environment variable that could not be applied
type EnvError struct {
	Key  string // environment variable name
	Path string // dotted yaml path of the overridden setting
	Err  error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("env %s (%s): %v", e.Key, e.Path, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

// applyEnvOverrides sets every field tagged `env:"KEY"` whose variable is set.
// All bad values are reported together.
func applyEnvOverrides(target interface{}) error {
	val := reflect.ValueOf(target)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	var errs []error
	walkEnvFields(val, "", &errs)
	return errors.Join(errs...)
}

func walkEnvFields(val reflect.Value, prefix string, errs *[]error) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		meta := typ.Field(i)
		path := settingPath(prefix, meta)

		if field.Kind() == reflect.Struct {
			walkEnvFields(field, path, errs)
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		if err := assignFromEnv(field, strings.TrimSpace(raw)); err != nil {
			*errs = append(*errs, &EnvError{Key: key, Path: path, Err: err})
		}
	}
}

func settingPath(prefix string, meta reflect.StructField) string {
	name := strings.Split(meta.Tag.Get("yaml"), ",")[0]
	if name == "" || name == "-" {
		name = strings.ToLower(meta.Name)
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// assignFromEnv parses value into the field's kind
func assignFromEnv(field reflect.Value, value string) error {
	if !field.CanSet() {
		return errors.New("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected a boolean, got %q", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported setting type %s", field.Kind())
	}

	return nil
}
