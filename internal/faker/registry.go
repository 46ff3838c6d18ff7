package faker

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// GeneratorFunc produces one JSON-compatible value. Arguments arrive already
// parsed by ParseMacro: numbers as float64, objects as map[string]interface{},
// dates as time.Time.
type GeneratorFunc func(args []interface{}) (interface{}, error)

// Registry maps dotted generator paths like "internet.email" to functions.
// It is built and validated once at startup; templates address it through
// macro strings.
type Registry struct {
	funcs      map[string]GeneratorFunc
	namespaces map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:      make(map[string]GeneratorFunc),
		namespaces: make(map[string]struct{}),
	}
}

// Register adds a generator under a dotted path. Registration fails on
// malformed or duplicate paths so a bad registry is caught at startup, not
// at request time.
func (r *Registry) Register(path string, fn GeneratorFunc) error {
	segments := strings.Split(path, ".")
	if len(segments) < 2 || fn == nil {
		return fmt.Errorf("invalid generator registration: %q", path)
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("invalid generator registration: %q", path)
		}
	}
	if _, exists := r.funcs[path]; exists {
		return fmt.Errorf("duplicate generator registration: %q", path)
	}

	r.funcs[path] = fn
	for i := 1; i < len(segments); i++ {
		r.namespaces[strings.Join(segments[:i], ".")] = struct{}{}
	}
	return nil
}

// mustRegister is used while building the default registry.
func (r *Registry) mustRegister(path string, fn GeneratorFunc) {
	if err := r.Register(path, fn); err != nil {
		panic(err)
	}
}

// Lookup resolves a parsed macro path. Segments before the last select
// namespaces; the final segment selects the generator itself. The two error
// shapes mirror what template authors need to see: a bad namespace prefix or
// a bad terminal method.
func (r *Registry) Lookup(path []string) (GeneratorFunc, error) {
	for i := 1; i < len(path); i++ {
		prefix := strings.Join(path[:i], ".")
		if _, ok := r.namespaces[prefix]; !ok {
			return nil, fmt.Errorf("invalid generator path: %s", prefix)
		}
	}

	fn, ok := r.funcs[strings.Join(path, ".")]
	if !ok {
		return nil, fmt.Errorf("invalid generator method: %s", strings.Join(path, "."))
	}
	return fn, nil
}

// Default builds the generator surface exposed to template authors, backed
// by gofakeit.
func Default() *Registry {
	r := NewRegistry()

	r.mustRegister("internet.userName", noArgs(func() interface{} { return gofakeit.Username() }))
	r.mustRegister("internet.email", noArgs(func() interface{} { return gofakeit.Email() }))
	r.mustRegister("internet.password", func(args []interface{}) (interface{}, error) {
		length, err := intArg(args, 0, 12)
		if err != nil {
			return nil, err
		}
		return gofakeit.Password(true, true, true, true, false, length), nil
	})
	r.mustRegister("internet.url", noArgs(func() interface{} { return gofakeit.URL() }))
	r.mustRegister("internet.ip", noArgs(func() interface{} { return gofakeit.IPv4Address() }))
	r.mustRegister("internet.avatar", noArgs(func() interface{} {
		return fmt.Sprintf("https://i.pravatar.cc/150?u=%d", gofakeit.Number(1, 1000000))
	}))

	r.mustRegister("name.firstName", noArgs(func() interface{} { return gofakeit.FirstName() }))
	r.mustRegister("name.lastName", noArgs(func() interface{} { return gofakeit.LastName() }))
	r.mustRegister("name.fullName", noArgs(func() interface{} { return gofakeit.Name() }))
	r.mustRegister("name.jobTitle", noArgs(func() interface{} { return gofakeit.JobTitle() }))

	r.mustRegister("phone.number", noArgs(func() interface{} { return gofakeit.Phone() }))
	r.mustRegister("phone.imei", noArgs(func() interface{} { return gofakeit.Numerify("##-######-######-#") }))

	r.mustRegister("address.streetAddress", noArgs(func() interface{} { return gofakeit.Street() }))
	r.mustRegister("address.city", noArgs(func() interface{} { return gofakeit.City() }))
	r.mustRegister("address.state", noArgs(func() interface{} { return gofakeit.State() }))
	r.mustRegister("address.country", noArgs(func() interface{} { return gofakeit.Country() }))
	r.mustRegister("address.zipCode", noArgs(func() interface{} { return gofakeit.Zip() }))

	r.mustRegister("company.name", noArgs(func() interface{} { return gofakeit.Company() }))
	r.mustRegister("company.catchPhrase", noArgs(func() interface{} { return gofakeit.Slogan() }))
	r.mustRegister("company.bs", noArgs(func() interface{} { return gofakeit.BS() }))

	r.mustRegister("lorem.word", noArgs(func() interface{} { return gofakeit.Word() }))
	r.mustRegister("lorem.words", func(args []interface{}) (interface{}, error) {
		count, err := intArg(args, 0, 3)
		if err != nil {
			return nil, err
		}
		words := make([]string, count)
		for i := range words {
			words[i] = gofakeit.Word()
		}
		return strings.Join(words, " "), nil
	})
	r.mustRegister("lorem.sentence", func(args []interface{}) (interface{}, error) {
		count, err := intArg(args, 0, 10)
		if err != nil {
			return nil, err
		}
		return gofakeit.Sentence(count), nil
	})
	r.mustRegister("lorem.paragraph", func(args []interface{}) (interface{}, error) {
		sentences, err := intArg(args, 0, 3)
		if err != nil {
			return nil, err
		}
		return gofakeit.Paragraph(1, sentences, 10, " "), nil
	})

	r.mustRegister("date.past", func(args []interface{}) (interface{}, error) {
		years, err := intArg(args, 0, 1)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		return gofakeit.DateRange(now.AddDate(-years, 0, 0), now), nil
	})
	r.mustRegister("date.future", func(args []interface{}) (interface{}, error) {
		years, err := intArg(args, 0, 1)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		return gofakeit.DateRange(now, now.AddDate(years, 0, 0)), nil
	})
	r.mustRegister("date.recent", func(args []interface{}) (interface{}, error) {
		days, err := intArg(args, 0, 7)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		return gofakeit.DateRange(now.AddDate(0, 0, -days), now), nil
	})

	r.mustRegister("number.int", func(args []interface{}) (interface{}, error) {
		min, max, err := rangeArgs(args, 0, 1000000)
		if err != nil {
			return nil, err
		}
		return gofakeit.Number(int(min), int(max)), nil
	})
	r.mustRegister("number.float", func(args []interface{}) (interface{}, error) {
		min, max, err := rangeArgs(args, 0, 1000)
		if err != nil {
			return nil, err
		}
		return gofakeit.Float64Range(min, max), nil
	})

	return r
}

func noArgs(fn func() interface{}) GeneratorFunc {
	return func([]interface{}) (interface{}, error) {
		return fn(), nil
	}
}

// intArg reads an optional integer at position idx.
func intArg(args []interface{}, idx, fallback int) (int, error) {
	if len(args) <= idx {
		return fallback, nil
	}
	f, err := asFloat(args[idx])
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// rangeArgs reads a (min, max) pair given either positionally, as a single
// {min, max} object, or as a single max value.
func rangeArgs(args []interface{}, defMin, defMax float64) (float64, float64, error) {
	min, max := defMin, defMax

	switch len(args) {
	case 0:
	case 1:
		if obj, ok := args[0].(map[string]interface{}); ok {
			if v, ok := obj["min"]; ok {
				f, err := asFloat(v)
				if err != nil {
					return 0, 0, err
				}
				min = f
			}
			if v, ok := obj["max"]; ok {
				f, err := asFloat(v)
				if err != nil {
					return 0, 0, err
				}
				max = f
			}
		} else {
			f, err := asFloat(args[0])
			if err != nil {
				return 0, 0, err
			}
			max = f
		}
	default:
		f, err := asFloat(args[0])
		if err != nil {
			return 0, 0, err
		}
		min = f
		f, err = asFloat(args[1])
		if err != nil {
			return 0, 0, err
		}
		max = f
	}

	if max < min {
		min, max = max, min
	}
	return min, max, nil
}

func asFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected numeric argument, got %T", v)
	}
}
