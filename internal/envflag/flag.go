// Package envflag parses comma-separated name=value settings, as found in
// environment variables such as COMP_DEBUG, into the fields of a struct.
package envflag

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Init uses Parse with the contents of the given environment variable as input.
func Init[T any](flags *T, envVar string) error {
	if err := Parse(flags, os.Getenv(envVar)); err != nil {
		return fmt.Errorf("cannot parse %s: %w", envVar, err)
	}
	return nil
}

// Parse initializes the fields in flags from the attached struct field tags as
// well as the contents of the given string.
//
// The struct field tag may contain a default value other than the zero value,
// such as `envflag:"default:true"` to set a boolean field to true by default.
//
// The string holds a comma-separated list of name=value pairs. For boolean
// fields the value may be omitted, in which case it is assumed to be true.
// Empty elements are ignored.
//
// Names are the lower-cased field names. Booleans are parsed with
// [strconv.ParseBool], integers with [strconv.Atoi], fields whose pointer
// implements [encoding.TextUnmarshaler] with UnmarshalText, and strings are
// accepted as-is.
func Parse[T any](flags *T, env string) error {
	fv := reflect.ValueOf(flags).Elem()
	fields, err := fieldsOf(fv)
	if err != nil {
		return err
	}

	var errs []error
	for _, elem := range strings.Split(env, ",") {
		if elem == "" {
			continue
		}
		name, str, hasValue := strings.Cut(elem, "=")
		name = strings.ToLower(name)

		index, ok := fields[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown flag %q (valid flags: %s)", elem, strings.Join(Names[T](), ", ")))
			continue
		}
		field := fv.Field(index)
		if !hasValue {
			// "name" is short for "name=true", as with Go's -flag.
			if field.Kind() != reflect.Bool {
				errs = append(errs, fmt.Errorf("value needed for %s flag %q", field.Kind(), name))
				continue
			}
			str = "true"
		}
		if err := setValue(field, name, str); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Names returns the names of the flags defined by T, sorted.
func Names[T any]() []string {
	var names []string
	t := reflect.TypeOf((*T)(nil)).Elem()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			names = append(names, strings.ToLower(t.Field(i).Name))
		}
	}
	slices.Sort(names)
	return names
}

// fieldsOf sets the default values of the fields of v and returns the
// index of each field by flag name.
func fieldsOf(v reflect.Value) (map[string]int, error) {
	fields := map[string]int{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.ToLower(f.Name)
		fields[name] = i

		tag, ok := f.Tag.Lookup("envflag")
		if !ok {
			continue
		}
		key, def, _ := strings.Cut(tag, ":")
		if key != "default" {
			return nil, fmt.Errorf("unknown envflag tag %q", tag)
		}
		if err := setValue(v.Field(i), name, def); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func setValue(field reflect.Value, name, str string) error {
	if field.Addr().Type().Implements(textUnmarshaler) {
		u := field.Addr().Interface().(encoding.TextUnmarshaler)
		if err := u.UnmarshalText([]byte(str)); err != nil {
			return errInvalid{fmt.Errorf("invalid value for %s: %v", name, err)}
		}
		return nil
	}

	var (
		val any
		err error
	)
	switch field.Kind() {
	case reflect.Bool:
		val, err = strconv.ParseBool(str)
	case reflect.Int:
		val, err = strconv.Atoi(str)
	case reflect.String:
		val = str
	default:
		return errInvalid{fmt.Errorf("unsupported kind %s", field.Kind())}
	}
	if err != nil {
		return errInvalid{fmt.Errorf("invalid %s value for %s: %v", field.Kind(), name, err)}
	}
	field.Set(reflect.ValueOf(val))
	return nil
}

// An ErrInvalid indicates a malformed input string.
var ErrInvalid = errors.New("invalid value")

type errInvalid struct{ error }

func (errInvalid) Is(err error) bool {
	return err == ErrInvalid
}
